package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	buckets map[string]bool
	objects map[string]minio.ObjectInfo
	removed []string
}

func newFakeMinio() *fakeMinio {
	return &fakeMinio{
		buckets: map[string]bool{"project-files": true},
		objects: map[string]minio.ObjectInfo{},
	}
}

func (f *fakeMinio) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeMinio) PresignedPutObject(_ context.Context, bucket, key string, _ time.Duration) (*url.URL, error) {
	return url.Parse("http://minio.test/" + bucket + "/" + key + "?X-Amz-Signature=put")
}

func (f *fakeMinio) PresignedGetObject(_ context.Context, bucket, key string, _ time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("http://minio.test/" + bucket + "/" + key + "?X-Amz-Signature=get")
}

func (f *fakeMinio) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if !f.buckets[bucket] {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchBucket"}
	}

	o, ok := f.objects[bucket+"/"+key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}

	return o, nil
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if !f.buckets[bucket] {
		return minio.UploadInfo{}, minio.ErrorResponse{Code: "NoSuchBucket"}
	}

	if _, err := io.Copy(io.Discard, r); err != nil {
		return minio.UploadInfo{}, err
	}

	f.objects[bucket+"/"+key] = minio.ObjectInfo{Key: key, Size: size, ContentType: opts.ContentType, LastModified: time.Now()}
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeMinio) ListObjects(_ context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for k, o := range f.objects {
		if strings.HasPrefix(k, bucket+"/"+opts.Prefix) {
			ch <- o
		}
	}
	close(ch)

	return ch
}

func (f *fakeMinio) RemoveObjects(_ context.Context, bucket string, objects <-chan minio.ObjectInfo, _ minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	for o := range objects {
		delete(f.objects, bucket+"/"+o.Key)
		f.removed = append(f.removed, o.Key)
	}

	ch := make(chan minio.RemoveObjectError)
	close(ch)

	return ch
}

func TestMinio(t *testing.T) {
	f := newFakeMinio()
	m := &Minio{c: f}
	ctx := context.Background()

	u, err := m.SignUpload(ctx, "project-files", "p/c/id.png", "image/png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://minio.test/project-files/p/c/id.png?X-Amz-Signature=put", u)

	_, err = m.SignUpload(ctx, "avatars", "p/c/id.png", "image/png", time.Hour)
	assert.ErrorIs(t, err, ErrBucketUnavailable)

	_, err = m.SignRead(ctx, "project-files", "p/c/id.png", time.Hour)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, m.Put(ctx, "project-files", "p/c/id.png", strings.NewReader("data"), 4, "image/png"))
	assert.ErrorIs(t, m.Put(ctx, "avatars", "p/c/id.png", strings.NewReader("data"), 4, "image/png"), ErrBucketUnavailable)

	obj, err := m.Stat(ctx, "project-files", "p/c/id.png")
	require.NoError(t, err)
	assert.EqualValues(t, 4, obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)

	u, err = m.SignRead(ctx, "project-files", "p/c/id.png", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, u, "get")

	objects, err := m.List(ctx, "project-files", "p/")
	require.NoError(t, err)
	assert.Len(t, objects, 1)

	require.NoError(t, m.Delete(ctx, "project-files", []string{"p/c/id.png"}))
	assert.Equal(t, []string{"p/c/id.png"}, f.removed)

	_, err = m.Stat(ctx, "project-files", "p/c/id.png")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}
