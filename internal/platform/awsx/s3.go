package awsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cgvega/taskvault/internal/platform/logger"
	"github.com/cgvega/taskvault/internal/storage"
)

// s3API is the subset of the S3 client used by the object store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3ObjectStore implements storage.ObjectStore against a single S3 bucket.
// It performs no retries; backend failures map to
// storage.ErrStorageUnavailable.
type S3ObjectStore struct {
	client s3API
	bucket string
	region string
}

// NewS3ObjectStore creates an object store bound to the given bucket.
func NewS3ObjectStore(client *s3.Client, bucket, region string) *S3ObjectStore {
	return &S3ObjectStore{client: client, bucket: bucket, region: region}
}

// Ensure S3ObjectStore implements storage.ObjectStore
var _ storage.ObjectStore = (*S3ObjectStore)(nil)

// PutObject implements storage.ObjectStore.PutObject
func (s *S3ObjectStore) PutObject(ctx context.Context, name string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("%w: put object %q: %v", storage.ErrStorageUnavailable, name, err)
	}
	return nil
}

// GetObject implements storage.ObjectStore.GetObject
func (s *S3ObjectStore) GetObject(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: get object %q: %v", storage.ErrStorageUnavailable, name, err)
	}
	return out.Body, nil
}

// ObjectExists implements storage.ObjectStore.ObjectExists
func (s *S3ObjectStore) ObjectExists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: head object %q: %v", storage.ErrStorageUnavailable, name, err)
	}
	return true, nil
}

// DeleteObject implements storage.ObjectStore.DeleteObject
// S3 DeleteObject succeeds for absent keys, which gives us idempotency for
// free.
func (s *S3ObjectStore) DeleteObject(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("%w: delete object %q: %v", storage.ErrStorageUnavailable, name, err)
	}
	return nil
}

// EnsureBucket verifies the configured bucket exists, creating it when it
// does not. Called once at startup.
func (s *S3ObjectStore) EnsureBucket(ctx context.Context) error {
	log := logger.FromContext(ctx)

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("%w: head bucket %q: %v", storage.ErrStorageUnavailable, s.bucket, err)
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("%w: create bucket %q: %v", storage.ErrStorageUnavailable, s.bucket, err)
	}

	log.Info("bucket created",
		slog.String("bucket", s.bucket),
		slog.String("region", s.region))
	return nil
}
