package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingThumbnailer struct {
	done chan string
	err  error
}

func (r *recordingThumbnailer) Thumbnail(_ context.Context, f *model.File) error {
	r.done <- f.ID
	return r.err
}

func TestRecordDefaults(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	c := e.collection(t, p, "Shots")

	f, err := e.recorder.Record(context.Background(), Record{
		FileID:         "11111111-1111-1111-1111-111111111111",
		Path:           p.ID + "/shots/11111111-1111-1111-1111-111111111111.png",
		OwnerID:        owner,
		CollectionID:   &c.ID,
		CollectionName: "Shots",
		FileName:       "photo.png",
		Size:           2048,
		MimeType:       "image/png",
	})
	require.NoError(t, err)

	var got model.File
	require.NoError(t, e.db.First(&got, "id = ?", f.ID).Error)

	assert.Equal(t, model.FileTypeImage, got.Type)
	assert.Equal(t, model.OrientationLandscape, got.Orientation)
	assert.Equal(t, got.FilePath, got.PreviewURL)
	assert.Equal(t, got.FilePath, got.ThumbnailURL)
	assert.Equal(t, "photo.png", got.Title)
	assert.Equal(t, "Uploaded to Shots", got.Description)
	assert.EqualValues(t, 2048, got.FileSize)
	require.NotNil(t, got.CollectionID)
	assert.Equal(t, c.ID, *got.CollectionID)
}

func TestRecordNormalizesMime(t *testing.T) {
	e := newEnv(t)

	for _, mime := range []string{"video/quicktime", "video/x-msvideo"} {
		f, err := e.recorder.Record(context.Background(), Record{
			FileID:   mime,
			Path:     "p/c/" + mime,
			OwnerID:  owner,
			FileName: "clip",
			MimeType: mime,
		})
		require.NoError(t, err)

		assert.Equal(t, NormalizeMime(mime), f.MimeType)
		assert.Equal(t, model.FileTypeVideo, f.Type)
	}
}

func TestRecordUnknownMime(t *testing.T) {
	e := newEnv(t)

	f, err := e.recorder.Record(context.Background(), Record{FileID: "f", Path: "p", OwnerID: owner, FileName: "x"})
	require.NoError(t, err)

	assert.Equal(t, "unknown", f.MimeType)
	assert.Equal(t, model.FileTypeDesign, f.Type)
}

func TestRecordNullCollection(t *testing.T) {
	e := newEnv(t)

	f, err := e.recorder.Record(context.Background(), Record{FileID: "f", Path: "p", OwnerID: owner, FileName: "x", MimeType: "image/png"})
	require.NoError(t, err)
	assert.Nil(t, f.CollectionID)
}

func TestRecordDuplicateID(t *testing.T) {
	e := newEnv(t)
	rec := Record{FileID: "dup", Path: "p/c/dup.png", OwnerID: owner, FileName: "a.png", MimeType: "image/png"}

	_, err := e.recorder.Record(context.Background(), rec)
	require.NoError(t, err)

	_, err = e.recorder.Record(context.Background(), rec)
	require.ErrorIs(t, err, errs.ErrMetadataWriteFailed)
	assert.Equal(t, "Failed to create file record", errs.Message(err))
	assert.EqualValues(t, 1, e.fileCount(t))
}

func TestRecordMissingFields(t *testing.T) {
	e := newEnv(t)

	_, err := e.recorder.Record(context.Background(), Record{Path: "p", OwnerID: owner, FileName: "x"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = e.recorder.Record(context.Background(), Record{FileID: "f", Path: "p", FileName: "x"})
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	assert.EqualValues(t, 0, e.fileCount(t))
}

func TestRecordTouchesCollection(t *testing.T) {
	e := newEnv(t)
	p := e.project(t, owner, "Nike Space")
	c := e.collection(t, p, "Shots")

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, e.db.Model(c).UpdateColumn("updated_at", old).Error)

	_, err := e.recorder.Record(context.Background(), Record{FileID: "f", Path: "p", OwnerID: owner, FileName: "x", CollectionID: &c.ID})
	require.NoError(t, err)

	var got model.Collection
	require.NoError(t, e.db.First(&got, "id = ?", c.ID).Error)
	assert.True(t, got.UpdatedAt.After(old.Add(time.Hour)))
}

func TestRecordVideoRunsThumbnailerInBackground(t *testing.T) {
	e := newEnv(t)
	thumbs := &recordingThumbnailer{done: make(chan string, 1), err: errors.New("no encoder")}
	e.recorder.Thumbnailer = thumbs

	f, err := e.recorder.Record(context.Background(), Record{FileID: "vid", Path: "p/c/vid.mp4", OwnerID: owner, FileName: "vid.mp4", MimeType: "video/mp4"})
	require.NoError(t, err, "thumbnail failures must not fail the record")

	select {
	case id := <-thumbs.done:
		assert.Equal(t, f.ID, id)
	case <-time.After(time.Second):
		t.Fatal("thumbnailer was not called")
	}
}

func TestRecordImageSkipsThumbnailer(t *testing.T) {
	e := newEnv(t)
	thumbs := &recordingThumbnailer{done: make(chan string, 1)}
	e.recorder.Thumbnailer = thumbs

	_, err := e.recorder.Record(context.Background(), Record{FileID: "img", Path: "p/c/img.png", OwnerID: owner, FileName: "img.png", MimeType: "image/png"})
	require.NoError(t, err)

	select {
	case <-thumbs.done:
		t.Fatal("thumbnailer called for an image")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNoopThumbnailer(t *testing.T) {
	assert.NoError(t, NoopThumbnailer{}.Thumbnail(context.Background(), &model.File{}))
}
