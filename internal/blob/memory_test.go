package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServedMemory(t *testing.T, buckets ...string) (*Memory, *httptest.Server) {
	t.Helper()

	m := NewMemory("", buckets...)
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)
	m.BaseURL = srv.URL

	return m, srv
}

func put(t *testing.T, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/png")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestMemorySignedUploadAndRead(t *testing.T) {
	m, _ := newServedMemory(t, "project-files")
	ctx := context.Background()

	u, err := m.SignUpload(ctx, "project-files", "p1/shots/a.png", "image/png", time.Hour)
	require.NoError(t, err)

	resp := put(t, u, "pixels")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	obj, err := m.Stat(ctx, "project-files", "p1/shots/a.png")
	require.NoError(t, err)
	assert.EqualValues(t, 6, obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)

	readURL, err := m.SignRead(ctx, "project-files", "p1/shots/a.png", time.Hour)
	require.NoError(t, err)

	got, err := http.Get(readURL)
	require.NoError(t, err)
	defer got.Body.Close()

	data, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestMemoryUploadGrantIsSingleUse(t *testing.T) {
	m, _ := newServedMemory(t, "project-files")

	u, err := m.SignUpload(context.Background(), "project-files", "k.png", "", time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, put(t, u, "one").StatusCode)
	assert.Equal(t, http.StatusForbidden, put(t, u, "two").StatusCode)
}

func TestMemoryExpiredGrant(t *testing.T) {
	m, _ := newServedMemory(t, "project-files")

	now := time.Now()
	m.Now = func() time.Time { return now }

	u, err := m.SignUpload(context.Background(), "project-files", "k.png", "", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusForbidden, put(t, u, "late").StatusCode)

	_, err = m.Stat(context.Background(), "project-files", "k.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemoryGrantBoundToKey(t *testing.T) {
	m, srv := newServedMemory(t, "project-files")

	u, err := m.SignUpload(context.Background(), "project-files", "k.png", "", time.Hour)
	require.NoError(t, err)

	token := u[strings.Index(u, "?"):]
	assert.Equal(t, http.StatusForbidden, put(t, srv.URL+"/project-files/other.png"+token, "x").StatusCode)
}

func TestMemoryUnavailableBucket(t *testing.T) {
	m := NewMemory("http://blob.local", "project-files", "avatars")
	ctx := context.Background()

	m.SetUnavailable("project-files", true)

	_, err := m.SignUpload(ctx, "project-files", "k", "", time.Hour)
	assert.ErrorIs(t, err, ErrBucketUnavailable)

	_, err = m.SignUpload(ctx, "missing", "k", "", time.Hour)
	assert.ErrorIs(t, err, ErrBucketUnavailable)

	u, err := m.SignUpload(ctx, "avatars", "uploads/k", "", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://blob.local/avatars/uploads/k?token="))

	assert.Equal(t, 1, m.Calls(OpSignUpload, "project-files"))
	assert.Equal(t, 1, m.Calls(OpSignUpload, "avatars"))
	assert.Equal(t, 0, m.Calls(OpPut, "avatars"))
}

func TestMemoryListAndDelete(t *testing.T) {
	m := NewMemory("", "project-files")
	ctx := context.Background()

	for _, k := range []string{"p1/b", "p1/a", "p2/c"} {
		require.NoError(t, m.Put(ctx, "project-files", k, bytes.NewReader([]byte(k)), int64(len(k)), ""))
	}

	objs, err := m.List(ctx, "project-files", "p1/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "p1/a", objs[0].Key)
	assert.Equal(t, "p1/b", objs[1].Key)

	require.NoError(t, m.Delete(ctx, "project-files", []string{"p1/a", "p2/c"}))

	objs, err = m.List(ctx, "project-files", "")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "p1/b", objs[0].Key)
}

func TestMemorySignReadMissingObject(t *testing.T) {
	m := NewMemory("", "project-files")

	_, err := m.SignRead(context.Background(), "project-files", "nope", time.Hour)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemoryPrunesExpiredGrants(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	m := NewMemory("http://asset.test", "b")
	m.Now = func() time.Time { return now }
	require.NoError(t, m.Put(ctx, "b", "k", strings.NewReader("x"), 1, ""))

	for range 10 {
		_, err := m.SignRead(ctx, "b", "k", time.Minute)
		require.NoError(t, err)
	}
	assert.Len(t, m.grants, 10)

	now = now.Add(2 * time.Minute)

	_, err := m.SignRead(ctx, "b", "k", time.Minute)
	require.NoError(t, err)
	assert.Len(t, m.grants, 1)
}
