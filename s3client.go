package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// MaxListKeys caps how many objects a single listing returns.
const MaxListKeys = 100

// Typed failures surfaced to the menu loop. Everything else stays a plain
// wrapped error.
var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrAccessDenied   = errors.New("access denied")
	ErrCancelled      = errors.New("operation cancelled")
)

// s3API is the slice of the S3 surface the application touches. Tests
// substitute a stub for it.
type s3API interface {
	manager.UploadAPIClient
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Client wraps the AWS S3 client for a single fixed bucket.
type S3Client struct {
	api      s3API
	uploader *manager.Uploader
	bucket   string
}

// ListingEntry is one object returned by List.
type ListingEntry struct {
	Key  string
	Size int64
}

// NewS3Client creates an S3 client from the resolved configuration. Static
// credentials are used only when both keys are present; otherwise the
// default AWS credential chain applies.
func NewS3Client(cfg *Config) (*S3Client, error) {
	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.HasStaticCredentials() {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(), loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)

	return newS3Client(client, cfg.Bucket), nil
}

// newS3Client wires the transfer manager around an API implementation.
// Split out so tests can inject a stub.
func newS3Client(api s3API, bucket string) *S3Client {
	uploader := manager.NewUploader(api, func(u *manager.Uploader) {
		u.PartSize = multipartPartSize
		u.Concurrency = multipartConcurrency
	})

	return &S3Client{
		api:      api,
		uploader: uploader,
		bucket:   bucket,
	}
}

// HeadBucket checks that the configured bucket exists and is accessible.
func (c *S3Client) HeadBucket(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket '%s': %w", c.bucket, classifyError(err))
	}

	return nil
}

// List returns up to MaxListKeys objects whose key starts with prefix. An
// empty bucket yields an empty slice, not an error.
func (c *S3Client) List(ctx context.Context, prefix string) ([]ListingEntry, error) {
	result, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(MaxListKeys),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under '%s': %w", prefix, classifyError(err))
	}

	entries := make([]ListingEntry, 0, len(result.Contents))
	for _, obj := range result.Contents {
		entries = append(entries, ListingEntry{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}

	return entries, nil
}

// classifyError maps provider errors onto the typed failures the menu loop
// understands. Unrecognized errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %s", ErrBucketNotFound, apiErr.ErrorMessage())
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return fmt.Errorf("%w: %s", ErrAccessDenied, apiErr.ErrorMessage())
		case "RequestCanceled":
			return ErrCancelled
		}
	}

	return err
}
