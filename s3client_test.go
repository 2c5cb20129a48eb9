package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubS3 implements s3API in memory and records every call.
type stubS3 struct {
	mu            sync.Mutex
	putCalls      int
	createCalls   int
	partCalls     int
	completeCalls int
	abortCalls    int
	headCalls     int
	listCalls     int

	lastPut  *s3.PutObjectInput
	lastList *s3.ListObjectsV2Input

	putErr     error
	listErr    error
	listOutput *s3.ListObjectsV2Output
}

func (s *stubS3) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putCalls + s.createCalls + s.partCalls + s.completeCalls + s.abortCalls + s.headCalls + s.listCalls
}

func (s *stubS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.mu.Lock()
	s.putCalls++
	s.lastPut = params
	s.mu.Unlock()

	if s.putErr != nil {
		return nil, s.putErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.Body != nil {
		if _, err := io.Copy(io.Discard, params.Body); err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) CreateMultipartUpload(ctx context.Context, _ *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	s.mu.Lock()
	s.createCalls++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
}

func (s *stubS3) UploadPart(ctx context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	s.mu.Lock()
	s.partCalls++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.Body != nil {
		if _, err := io.Copy(io.Discard, params.Body); err != nil {
			return nil, err
		}
	}
	return &s3.UploadPartOutput{
		ETag: aws.String(fmt.Sprintf("etag-%d", aws.ToInt32(params.PartNumber))),
	}, nil
}

func (s *stubS3) CompleteMultipartUpload(ctx context.Context, _ *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	s.mu.Lock()
	s.completeCalls++
	s.mu.Unlock()
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (s *stubS3) AbortMultipartUpload(ctx context.Context, _ *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	s.mu.Lock()
	s.abortCalls++
	s.mu.Unlock()
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (s *stubS3) HeadBucket(ctx context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	s.mu.Lock()
	s.headCalls++
	s.mu.Unlock()
	return &s3.HeadBucketOutput{}, nil
}

func (s *stubS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	s.mu.Lock()
	s.listCalls++
	s.lastList = params
	s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.listOutput != nil {
		return s.listOutput, nil
	}
	return &s3.ListObjectsV2Output{}, nil
}

func TestListForwardsPrefixAndCap(t *testing.T) {
	stub := &stubS3{
		listOutput: &s3.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("vpms-vrt-emea-exp/logo/a.png"), Size: aws.Int64(123)},
				{Key: aws.String("vpms-vrt-emea-exp/logo/b.png"), Size: aws.Int64(456)},
			},
		},
	}
	client := newS3Client(stub, "media-bucket")

	entries, err := client.List(context.Background(), "vpms-vrt-emea-exp/logo/")
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, ListingEntry{Key: "vpms-vrt-emea-exp/logo/a.png", Size: 123}, entries[0])
	assert.Equal(t, ListingEntry{Key: "vpms-vrt-emea-exp/logo/b.png", Size: 456}, entries[1])

	require.NotNil(t, stub.lastList)
	assert.Equal(t, "vpms-vrt-emea-exp/logo/", aws.ToString(stub.lastList.Prefix))
	assert.Equal(t, int32(MaxListKeys), aws.ToInt32(stub.lastList.MaxKeys))
	assert.Equal(t, "media-bucket", aws.ToString(stub.lastList.Bucket))
}

func TestListEmptyBucket(t *testing.T) {
	stub := &stubS3{}
	client := newS3Client(stub, "media-bucket")

	entries, err := client.List(context.Background(), RootPrefix+"/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListBucketNotFound(t *testing.T) {
	stub := &stubS3{
		listErr: &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "gone"},
	}
	client := newS3Client(stub, "media-bucket")

	_, err := client.List(context.Background(), RootPrefix+"/")
	require.ErrorIs(t, err, ErrBucketNotFound)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such bucket", &smithy.GenericAPIError{Code: "NoSuchBucket"}, ErrBucketNotFound},
		{"head not found", &smithy.GenericAPIError{Code: "NotFound"}, ErrBucketNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, ErrAccessDenied},
		{"bad key id", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, ErrAccessDenied},
		{"context cancelled", context.Canceled, ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tt.err), tt.want)
		})
	}
}

func TestClassifyErrorPassthrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, classifyError(plain))
	assert.NoError(t, classifyError(nil))
}
