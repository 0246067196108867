package images

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// minioAPI is the part of *minio.Client the sink uses; tests swap in a fake.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

var _ Sink = (*MinioSink)(nil)

// MinioSink stores images in a MinIO bucket under prefix.
type MinioSink struct {
	api    minioAPI
	bucket string
	prefix string
}

// NewMinioSink creates the sink and makes sure the bucket exists.
func NewMinioSink(ctx context.Context, client *minio.Client, bucket, prefix string) (*MinioSink, error) {
	return newMinioSink(ctx, client, bucket, prefix)
}

func newMinioSink(ctx context.Context, api minioAPI, bucket, prefix string) (*MinioSink, error) {
	s := &MinioSink{api: api, bucket: bucket, prefix: prefix}

	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return s, nil
}

func (s *MinioSink) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *MinioSink) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := path.Join(s.prefix, path.Base(NormalizePath(name)))

	_, err := s.api.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}

func (s *MinioSink) Remove(ctx context.Context, p string) error {
	key, ok := keyUnder(s.prefix, p)
	if !ok {
		return fmt.Errorf("image key %q is outside %q", p, s.prefix)
	}

	if err := s.api.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
