package service

import (
	"context"
	"time"

	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/metrics"
	"spacetwo/asset-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Record is everything known about an upload once its bytes are stored.
type Record struct {
	FileID         string
	Path           string
	OwnerID        string
	CollectionID   *string
	CollectionName string
	FileName       string
	Size           int64
	MimeType       string
}

type Recorder struct {
	DB          *gorm.DB
	Thumbnailer Thumbnailer
	Observer    metrics.Observer
}

func NewRecorder(db *gorm.DB, t Thumbnailer, o metrics.Observer) *Recorder {
	if t == nil {
		t = NoopThumbnailer{}
	}
	if o == nil {
		o = metrics.Nop()
	}

	return &Recorder{DB: db, Thumbnailer: t, Observer: o}
}

// Record inserts the file row and touches the parent collection so its last
// updated time moves. Any store rejection is reported as
// errs.ErrMetadataWriteFailed.
func (r *Recorder) Record(ctx context.Context, rec Record) (*model.File, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	mime := NormalizeMime(rec.MimeType)
	if mime == "" {
		mime = "unknown"
	}

	f := model.File{
		ID:           rec.FileID,
		Title:        rec.FileName,
		Description:  "Uploaded to " + rec.CollectionName,
		FileName:     rec.FileName,
		FilePath:     rec.Path,
		FileSize:     rec.Size,
		MimeType:     mime,
		Type:         Classify(mime),
		Orientation:  model.OrientationLandscape,
		PreviewURL:   rec.Path,
		ThumbnailURL: rec.Path,
		CollectionID: rec.CollectionID,
		OwnerID:      rec.OwnerID,
	}

	if f.CollectionID == nil {
		zap.L().Warn("Recording file without a collection", zap.String("fileID", f.ID), zap.String("collection", rec.CollectionName))
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&f).Error; err != nil {
			return err
		}

		if f.CollectionID == nil {
			return nil
		}

		return tx.
			Model(&model.Collection{}).
			Where("id = ?", *f.CollectionID).
			Update("updated_at", time.Now()).
			Error
	})
	r.Observer.RecordStage("record", time.Since(start), err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMetadataWriteFailed, err, "failed to create file record")
	}

	if f.Type == model.FileTypeVideo {
		runThumbnail(r.Thumbnailer, f)
	}

	return &f, nil
}

// Validate checks that rec can be recorded at all, before any work is done.
func (rec Record) Validate() error {
	switch {
	case rec.FileID == "":
		return errs.New(errs.ErrValidation, "missing file id")
	case rec.Path == "":
		return errs.New(errs.ErrValidation, "missing storage path")
	case rec.OwnerID == "":
		return errs.New(errs.ErrNotAuthenticated, "user not authenticated")
	case rec.FileName == "":
		return errs.New(errs.ErrValidation, "missing file name")
	case rec.Size < 0:
		return errs.New(errs.ErrValidation, "invalid file size %d", rec.Size)
	}

	return nil
}
