package service

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg writes a script that behaves like ffmpeg for the arguments the
// thumbnailer passes: the output path is the second to last argument.
func fakeFFmpeg(t *testing.T, exitCode int) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	script := `#!/bin/sh
for a; do out=$prev; prev=$a; done
echo "frame" > "$out"
echo "boom" >&2
exit ` + string(rune('0'+exitCode)) + "\n"

	p := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(p, []byte(script), 0o755))

	return p
}

func TestThumbnailPath(t *testing.T) {
	assert.Equal(t, "p/c/id.thumb.jpg", ThumbnailPath("p/c/id.mp4"))
	assert.Equal(t, "p/c/id.thumb.jpg", ThumbnailPath("p/c/id"))
}

func TestFFmpegThumbnailer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	path := "p/c/id.mp4"
	require.NoError(t, e.store.Put(ctx, "project-files", path, strings.NewReader("video"), 5, "video/mp4"))

	f := &model.File{FileName: "id.mp4", FilePath: path, ThumbnailURL: path, MimeType: "video/mp4", Type: model.FileTypeVideo, OwnerID: owner}
	require.NoError(t, e.db.Create(f).Error)

	th := NewFFmpegThumbnailer(e.db, e.store, testTargets, e.linker)
	th.Binary = fakeFFmpeg(t, 0)

	require.NoError(t, th.Thumbnail(ctx, f))

	obj, err := e.store.Stat(ctx, "project-files", "p/c/id.thumb.jpg")
	require.NoError(t, err)
	assert.Positive(t, obj.Size)

	var got model.File
	require.NoError(t, e.db.First(&got, "id = ?", f.ID).Error)
	assert.Equal(t, "p/c/id.thumb.jpg", got.ThumbnailURL)

	// The refreshed view now uses the thumbnail
	v := e.refresher.FileView(ctx, &got)
	assert.Contains(t, v.Image, "id.thumb.jpg")
}

func TestFFmpegThumbnailerFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f := &model.File{FileName: "id.mp4", FilePath: "p/c/missing.mp4", MimeType: "video/mp4", Type: model.FileTypeVideo, OwnerID: owner}
	require.NoError(t, e.db.Create(f).Error)

	th := NewFFmpegThumbnailer(e.db, e.store, testTargets, e.linker)
	th.Binary = fakeFFmpeg(t, 1)

	// Nothing to read
	assert.Error(t, th.Thumbnail(ctx, f))

	require.NoError(t, e.store.Put(ctx, "project-files", f.FilePath, strings.NewReader("video"), 5, "video/mp4"))

	err := th.Thumbnail(ctx, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	th.Binary = fakeFFmpeg(t, 0)
	e.store.SetUnavailable("project-files", true)
	e.store.SetUnavailable("avatars", true)

	// Source is unreadable again once the buckets are down
	assert.Error(t, th.Thumbnail(ctx, f))
	assert.Zero(t, e.store.Calls(blob.OpPut, "avatars"))
}
