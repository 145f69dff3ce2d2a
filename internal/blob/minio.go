package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioClient is the subset of *minio.Client used by the driver.
type minioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PresignedPutObject(ctx context.Context, bucketName, objectName string, expires time.Duration) (*url.URL, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

// Minio is a Store for self hosted MinIO deployments.
type Minio struct {
	c minioClient
}

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func NewMinio(o MinioOptions) (*Minio, error) {
	c, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client, %w", err)
	}

	return &Minio{c: c}, nil
}

func (m *Minio) SignUpload(ctx context.Context, bucket, key, _ string, ttl time.Duration) (string, error) {
	ok, err := m.c.BucketExists(ctx, bucket)
	if err != nil {
		return "", fmt.Errorf("%w: %s, %w", ErrBucketUnavailable, bucket, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s does not exist", ErrBucketUnavailable, bucket)
	}

	u, err := m.c.PresignedPutObject(ctx, bucket, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload, %w", err)
	}

	return u.String(), nil
}

func (m *Minio) SignRead(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if _, err := m.Stat(ctx, bucket, key); err != nil {
		return "", err
	}

	u, err := m.c.PresignedGetObject(ctx, bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign read, %w", err)
	}

	return u.String(), nil
}

func (m *Minio) Stat(ctx context.Context, bucket, key string) (*Object, error) {
	info, err := m.c.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
		}

		return nil, fmt.Errorf("failed to stat object, %w", err)
	}

	return &Object{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

func (m *Minio) Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	_, err := m.c.PutObject(ctx, bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return fmt.Errorf("%w: %s, %w", ErrBucketUnavailable, bucket, err)
		}

		return fmt.Errorf("failed to put object, %w", err)
	}

	return nil
}

func (m *Minio) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var objects []Object

	for o := range m.c.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if o.Err != nil {
			return nil, fmt.Errorf("failed to list objects, %w", o.Err)
		}

		objects = append(objects, Object{
			Key:          o.Key,
			Size:         o.Size,
			ContentType:  o.ContentType,
			LastModified: o.LastModified,
		})
	}

	return objects, nil
}

func (m *Minio) Delete(ctx context.Context, bucket string, keys []string) error {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)

	for rErr := range m.c.RemoveObjects(ctx, bucket, ch, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil {
			return fmt.Errorf("failed to delete %s, %w", rErr.ObjectName, rErr.Err)
		}
	}

	return nil
}
