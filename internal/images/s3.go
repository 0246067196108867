package images

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of *s3.Client the sink uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ Sink = (*S3Sink)(nil)

// S3Sink stores images in an S3-compatible bucket (AWS, R2) under prefix.
type S3Sink struct {
	api    s3API
	bucket string
	prefix string
}

func NewS3Sink(client *s3.Client, bucket, prefix string) *S3Sink {
	return newS3Sink(client, bucket, prefix)
}

func newS3Sink(api s3API, bucket, prefix string) *S3Sink {
	return &S3Sink{api: api, bucket: bucket, prefix: prefix}
}

func (s *S3Sink) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := path.Join(s.prefix, path.Base(NormalizePath(name)))

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to bucket: %w", err)
	}

	return key, nil
}

func (s *S3Sink) Remove(ctx context.Context, p string) error {
	key, ok := keyUnder(s.prefix, p)
	if !ok {
		return fmt.Errorf("image key %q is outside %q", p, s.prefix)
	}

	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from bucket: %w", err)
	}
	return nil
}
