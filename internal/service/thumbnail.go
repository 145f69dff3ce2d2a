package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Thumbnailer produces a preview asset for a recorded file.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, f *model.File) error
}

// NoopThumbnailer reports success without producing anything. Files keep
// their own path as thumbnail.
type NoopThumbnailer struct{}

func (NoopThumbnailer) Thumbnail(context.Context, *model.File) error {
	return nil
}

const thumbnailTimeout = time.Minute

// runThumbnail runs t in the background. Failures are logged and otherwise
// ignored, the caller never waits for it.
func runThumbnail(t Thumbnailer, f model.File) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), thumbnailTimeout)
		defer cancel()

		zap.L().Debug("Creating thumbnail for video", zap.String("fileID", f.ID))

		if err := t.Thumbnail(ctx, &f); err != nil {
			zap.L().Warn("Failed to create thumbnail", zap.String("fileID", f.ID), zap.Error(err))
		}
	}()
}

// FFmpegThumbnailer grabs the first frame of a video through a signed read
// URL and stores it next to the video.
type FFmpegThumbnailer struct {
	DB      *gorm.DB
	Blobs   blob.Store
	Targets []Target
	Linker  *Linker
	// Binary defaults to "ffmpeg" from PATH
	Binary string
}

func NewFFmpegThumbnailer(db *gorm.DB, s blob.Store, targets []Target, l *Linker) *FFmpegThumbnailer {
	return &FFmpegThumbnailer{DB: db, Blobs: s, Targets: targets, Linker: l, Binary: "ffmpeg"}
}

// ThumbnailPath is the key a video's thumbnail is stored under.
func ThumbnailPath(path string) string {
	if ext := Extension(path); ext != "" {
		path = strings.TrimSuffix(path, "."+ext)
	}

	return path + ".thumb.jpg"
}

func (t *FFmpegThumbnailer) Thumbnail(ctx context.Context, f *model.File) error {
	src := t.Linker.ReadURL(ctx, f.FilePath)
	if src == t.Linker.Placeholder {
		return fmt.Errorf("video %s is not readable", f.FilePath)
	}

	tmp, err := os.CreateTemp("", "thumb-*.jpg")
	if err != nil {
		return fmt.Errorf("failed to create temp file, %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	now := time.Now()

	// -ss before the input seeks to the first millisecond before the file opens
	// (uses key-frame seeking so that it's faster)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Binary, "-loglevel", "error", "-ss", "0", "-i", src, "-frames:v", "1", "-q:v", "2", "-vf", "scale=-1:320", tmp.Name(), "-y")
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to create thumbnail for video, %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	zap.L().Debug("Finished creating thumbnail", zap.String("fileID", f.ID), zap.Duration("took", time.Since(now)))

	out, err := os.Open(tmp.Name())
	if err != nil {
		return err
	}
	defer out.Close()

	info, err := out.Stat()
	if err != nil {
		return err
	}

	key := ThumbnailPath(f.FilePath)

	var stored bool
	for _, target := range t.Targets {
		if _, err := out.Seek(0, io.SeekStart); err != nil {
			return err
		}

		err := t.Blobs.Put(ctx, target.Bucket, target.ReadKey(key), out, info.Size(), "image/jpeg")
		if err != nil {
			zap.L().Warn("Failed to store thumbnail", zap.String("bucket", target.Bucket), zap.Error(err))
			continue
		}

		stored = true
		break
	}

	if !stored {
		return errs.New(errs.ErrStorageUnavailable, "no storage target accepted the thumbnail")
	}

	return t.DB.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", f.ID).
		Update("thumbnail_url", key).
		Error
}
