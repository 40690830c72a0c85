package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	puts      map[string]*s3.PutObjectInput
	deleted   []string
	deleteErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.puts == nil {
		f.puts = make(map[string]*s3.PutObjectInput)
	}
	f.puts[aws.ToString(in.Key)] = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3BlobStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{}
	s := NewS3BlobStore(client, "resumes", "eu-west-1", "", "")

	const key = "Big_Corp_20240105_110000000_my cv.pdf"
	if err := s.Upload(ctx, key, []byte("%PDF-1.4"), "application/pdf"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	put := client.puts[key]
	if put == nil || aws.ToString(put.Bucket) != "resumes" || aws.ToString(put.ContentType) != "application/pdf" {
		t.Fatalf("unexpected put: %+v", put)
	}

	url := s.PublicURL(key)
	if url != "https://resumes.s3.eu-west-1.amazonaws.com/Big_Corp_20240105_110000000_my%20cv.pdf" {
		t.Errorf("url = %s", url)
	}
	got, ok := s.KeyFromURL(url)
	if !ok || got != key {
		t.Fatalf("KeyFromURL = %q, %v", got, ok)
	}
	if err := s.Remove(ctx, got); err != nil || len(client.deleted) != 1 || client.deleted[0] != key {
		t.Errorf("remove = %v, deleted %v", err, client.deleted)
	}

	client.deleteErr = errors.New("access denied")
	if err := s.Remove(ctx, key); KindOf(err) != KindUnavailable {
		t.Errorf("remove failure: %v", err)
	}
}

func TestS3BlobStoreEndpointBase(t *testing.T) {
	s := NewS3BlobStore(&fakeS3{}, "resumes", "us-east-1", "http://localhost:4566", "")
	if got := s.PublicURL("a.pdf"); got != "http://localhost:4566/resumes/a.pdf" {
		t.Errorf("url = %s", got)
	}
	s = NewS3BlobStore(&fakeS3{}, "resumes", "us-east-1", "http://localhost:4566", "https://cdn.example.com")
	if got := s.PublicURL("a.pdf"); got != "https://cdn.example.com/a.pdf" {
		t.Errorf("url = %s", got)
	}
}
