package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshSeesNewUploads(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	e.collection(t, p, "New Nike Graphic")
	ctx := context.Background()

	before, err := e.refresher.Collection(ctx, owner, p.ID, "new nike graphic")
	require.NoError(t, err)
	assert.Equal(t, 0, before.FileCount)

	req := BeginRequest{FileName: "photo.png", FileType: "image/png", FileSize: 8, ProjectName: "Nike Space", CollectionName: "New Nike Graphic"}
	first := e.upload(t, req)
	second := e.upload(t, req)

	after, err := e.refresher.Collection(ctx, owner, p.ID, "New Nike Graphic")
	require.NoError(t, err)

	assert.Equal(t, before.FileCount+2, after.FileCount)
	require.Len(t, after.Files, 2)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{after.Files[0].ID, after.Files[1].ID})
	assert.Equal(t, "Just now", after.LastUpdated)

	for _, f := range after.Files {
		assert.True(t, strings.HasPrefix(f.Image, "http://blob.test/project-files/"), f.Image)
		assert.Equal(t, model.FileTypeImage, f.Type)
		assert.Equal(t, "image/png", f.MimeType)
	}
}

func TestRefreshUsesFallbackThenPlaceholder(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	e.collection(t, p, "Shots")
	ctx := context.Background()

	e.store.SetUnavailable("project-files", true)
	e.upload(t, BeginRequest{FileName: "a.png", FileType: "image/png", FileSize: 1, ProjectName: "Nike Space", CollectionName: "Shots"})
	e.store.SetUnavailable("project-files", false)

	v, err := e.refresher.Collection(ctx, owner, p.ID, "Shots")
	require.NoError(t, err)
	require.Len(t, v.Files, 1)
	assert.True(t, strings.HasPrefix(v.Files[0].Image, "http://blob.test/avatars/uploads/"), v.Files[0].Image)

	e.store.SetUnavailable("avatars", true)

	v, err = e.refresher.Collection(ctx, owner, p.ID, "Shots")
	require.NoError(t, err)
	assert.Equal(t, "/placeholder.svg", v.Files[0].Image)
}

func TestRefreshHidesDeletedFiles(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	e.collection(t, p, "Shots")

	req := BeginRequest{FileName: "a.png", FileType: "image/png", FileSize: 1, ProjectName: "Nike Space", CollectionName: "Shots"}
	f := e.upload(t, req)
	e.upload(t, req)

	_, err := model.SoftDelete(e.db, &model.File{}, "id = ?", f.ID)
	require.NoError(t, err)

	v, err := e.refresher.Collection(context.Background(), owner, p.ID, "Shots")
	require.NoError(t, err)
	assert.Equal(t, 1, v.FileCount)
}

func TestRefreshProject(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	older := e.collection(t, p, "Older")
	require.NoError(t, e.db.Model(older).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	newer := e.collection(t, p, "Newer")

	views, err := e.refresher.Project(context.Background(), owner, p.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, newer.ID, views[0].ID)
	assert.Equal(t, older.ID, views[1].ID)
	assert.NotNil(t, views[0].Files)

	_, err = e.refresher.Project(context.Background(), stranger, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRefreshByID(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	c := e.collection(t, p, "Shots")

	v, err := e.refresher.ByID(context.Background(), owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shots", v.Title)

	_, err = e.refresher.ByID(context.Background(), stranger, c.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = e.refresher.ByID(context.Background(), owner, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRefreshMissingCollection(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")

	_, err := e.refresher.Collection(context.Background(), owner, p.ID, "Nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLinkerTriesTargetsInOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.store.Put(ctx, "avatars", "uploads/p/c/f.png", strings.NewReader("x"), 1, "image/png"))

	u := e.linker.ReadURL(ctx, "p/c/f.png")
	assert.True(t, strings.HasPrefix(u, "http://blob.test/avatars/uploads/p/c/f.png?token="), u)
	assert.Equal(t, 1, e.store.Calls(blob.OpSignRead, "project-files"))
	assert.Equal(t, 1, e.store.Calls(blob.OpSignRead, "avatars"))

	assert.Equal(t, "/placeholder.svg", e.linker.ReadURL(ctx, "p/c/missing.png"))
	assert.Equal(t, "/placeholder.svg", e.linker.ReadURL(ctx, ""))
}

func TestPreviewPath(t *testing.T) {
	video := &model.File{Type: model.FileTypeVideo, FilePath: "v.mp4", PreviewURL: "v.mp4", ThumbnailURL: "v.webp"}
	assert.Equal(t, "v.webp", previewPath(video))

	video.ThumbnailURL = "v.mp4"
	assert.Equal(t, "v.mp4", previewPath(video))

	assert.Equal(t, "f.png", previewPath(&model.File{FilePath: "f.png"}))
	assert.Equal(t, "t.png", previewPath(&model.File{FilePath: "f.png", ThumbnailURL: "t.png"}))
}

func TestFormatLastUpdated(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{time.Minute, "1 mins ago"},
		{59 * time.Minute, "59 mins ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLastUpdated(now.Add(-tt.ago), now))
		})
	}
}
