package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3BlobStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3BlobStore stores resumes in a bucket that is publicly readable under PublicBase.
type S3BlobStore struct {
	Client     S3API
	Bucket     string
	PublicBase string
}

// NewS3BlobStore builds the store. An empty publicBase falls back to the
// virtual-hosted bucket URL, or to <endpoint>/<bucket> when an endpoint
// override (localstack) is in use.
func NewS3BlobStore(client S3API, bucket, region, endpoint, publicBase string) *S3BlobStore {
	if publicBase == "" {
		if endpoint != "" {
			publicBase = fmt.Sprintf("%s/%s", endpoint, bucket)
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}
	return &S3BlobStore{Client: client, Bucket: bucket, PublicBase: publicBase}
}

func (s *S3BlobStore) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return newError(KindUnavailable, "upload "+key, err)
	}
	return nil
}

func (s *S3BlobStore) PublicURL(key string) string {
	return publicURL(s.PublicBase, key)
}

func (s *S3BlobStore) KeyFromURL(url string) (string, bool) {
	return keyFromPublicURL(s.PublicBase, s.Bucket, url)
}

func (s *S3BlobStore) Remove(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return newError(KindUnavailable, "remove "+key, err)
	}
	return nil
}
