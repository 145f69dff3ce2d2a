// Package blob talks to the object storage that holds uploaded bytes.
// Drivers never proxy payloads for the signed URL flow, they only hand out
// time limited URLs that clients use directly.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrBucketUnavailable means the storage area can't accept the operation,
	// for example because it does not exist or a policy rejected it.
	ErrBucketUnavailable = errors.New("bucket unavailable")
	ErrObjectNotFound    = errors.New("object not found")
)

type Object struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

type Store interface {
	// SignUpload returns a URL that accepts a single PUT of the object bytes.
	SignUpload(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error)
	// SignRead returns a URL for reading an existing object. It fails with
	// ErrObjectNotFound when the key is absent.
	SignRead(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	Stat(ctx context.Context, bucket, key string) (*Object, error)
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
	Delete(ctx context.Context, bucket string, keys []string) error
}
