package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockPutObject struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (m *mockPutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = params
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	client := &mockPutObject{}
	store := newS3Store(client, S3Config{Bucket: "avatars", Region: "eu-west-1", PublicURL: "https://cdn.example.com/"})

	url, err := store.Put(context.Background(), "avatars/u-1/abc.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if url != "https://cdn.example.com/avatars/u-1/abc.png" {
		t.Errorf("Put() url = %s, want cdn url", url)
	}
	if aws.ToString(client.input.Bucket) != "avatars" {
		t.Errorf("Bucket = %s, want avatars", aws.ToString(client.input.Bucket))
	}
	if aws.ToString(client.input.ContentType) != "image/png" {
		t.Errorf("ContentType = %s, want image/png", aws.ToString(client.input.ContentType))
	}
	if aws.ToInt64(client.input.ContentLength) != int64(len("png-bytes")) {
		t.Errorf("ContentLength = %d, want %d", aws.ToInt64(client.input.ContentLength), len("png-bytes"))
	}
	if string(client.body) != "png-bytes" {
		t.Errorf("uploaded body = %q, want png-bytes", client.body)
	}
}

func TestS3Store_PutError(t *testing.T) {
	client := &mockPutObject{err: errors.New("access denied")}
	store := newS3Store(client, S3Config{Bucket: "avatars", Region: "us-east-1"})

	if _, err := store.Put(context.Background(), "k", "image/png", []byte("x")); err == nil {
		t.Error("Put() should fail when the upload fails")
	}
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"explicit public url", S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com"},
		{"custom endpoint", S3Config{Bucket: "b", Endpoint: "http://minio:9000/"}, "http://minio:9000/b"},
		{"aws default", S3Config{Bucket: "b", Region: "eu-central-1"}, "https://b.s3.eu-central-1.amazonaws.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := publicBaseURL(tt.cfg); got != tt.want {
				t.Errorf("publicBaseURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), S3Config{}); err == nil {
		t.Error("NewS3Store() should fail without a bucket")
	}
}
