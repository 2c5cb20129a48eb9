package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Transfer tuning. Files at or above the threshold go through the transfer
// manager's multipart path; smaller ones use a single PutObject. The
// resulting object is identical either way.
const (
	multipartThreshold   = 25 * 1024 * 1024
	multipartPartSize    = 25 * 1024 * 1024
	multipartConcurrency = 10
)

// UploadTask describes one confirmed upload. It is consumed exactly once.
type UploadTask struct {
	LocalPath string
	Key       string
	Size      int64
}

// NewUploadTask validates the local file and computes the destination key.
func NewUploadTask(localPath string, folder Folder, filename string) (UploadTask, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return UploadTask{}, fmt.Errorf("cannot read '%s': %w", localPath, err)
	}
	if !info.Mode().IsRegular() {
		return UploadTask{}, fmt.Errorf("'%s' is not a regular file", localPath)
	}

	key, err := ObjectKey(folder, filename)
	if err != nil {
		return UploadTask{}, err
	}

	return UploadTask{
		LocalPath: localPath,
		Key:       key,
		Size:      info.Size(),
	}, nil
}

// ProgressFunc receives transfer progress. transferred never decreases
// between calls for the same task and equals total once the upload
// succeeds.
type ProgressFunc func(transferred, total int64)

// progressReader counts bytes as the SDK drains the file and forwards the
// running total to the callback. The counter is atomic so part buffering
// by the transfer manager still yields one non-decreasing stream.
type progressReader struct {
	reader      io.Reader
	total       int64
	transferred atomic.Int64
	onProgress  ProgressFunc
}

func newProgressReader(r io.Reader, total int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{
		reader:     r,
		total:      total,
		onProgress: onProgress,
	}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		transferred := pr.transferred.Add(int64(n))
		if pr.onProgress != nil {
			pr.onProgress(transferred, pr.total)
		}
	}
	return n, err
}

// Upload transfers one local file to the task's key, reporting progress
// along the way. An existing object at the same key is overwritten.
// Cancellation via ctx aborts any in-progress multipart session, so no
// partial object remains visible.
func (c *S3Client) Upload(ctx context.Context, task UploadTask, onProgress ProgressFunc) error {
	file, err := os.Open(task.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open '%s': %w", task.LocalPath, err)
	}
	defer file.Close()

	// Wrapping hides the file's Seek/ReadAt, keeping the manager on its
	// sequential read path so progress stays monotonic.
	body := newProgressReader(file, task.Size, onProgress)

	if task.Size < multipartThreshold {
		_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(task.Key),
			Body:          body,
			ContentLength: aws.Int64(task.Size),
		})
	} else {
		_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(task.Key),
			Body:   body,
		})
	}

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("upload of '%s': %w", task.Key, ErrCancelled)
		}
		return fmt.Errorf("failed to upload '%s': %w", task.Key, classifyError(err))
	}

	// Zero-byte files never hit the reader, so emit the final event here.
	if onProgress != nil {
		onProgress(task.Size, task.Size)
	}

	return nil
}
