package service

import (
	"context"
	"fmt"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Object stores delete at most 1000 keys per request
	sweepDeleteBatch = 1000
	// Three columns per key stay below the bind variable limit of sqlite
	sweepLookupBatch = 300
)

// Sweeper deletes stored objects that no file row points to. These are left
// behind by uploads that were negotiated but never completed, or whose
// record could not be written.
type Sweeper struct {
	DB      *gorm.DB
	Blobs   blob.Store
	Targets []Target
	// Objects younger than Grace are kept, their upload may still complete
	Grace time.Duration
	Now   func() time.Time
}

func NewSweeper(db *gorm.DB, s blob.Store, targets []Target, grace time.Duration) *Sweeper {
	return &Sweeper{
		DB:      db,
		Blobs:   s,
		Targets: targets,
		Grace:   grace,
		Now:     time.Now,
	}
}

// Start runs Sweep every t until ctx is done.
func (s *Sweeper) Start(ctx context.Context, t time.Duration) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Orphan sweep attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					zap.L().Error("Orphan sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// Sweep removes orphaned objects from every target and returns how many
// were deleted.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	var deleted int

	for _, t := range s.Targets {
		n, err := s.sweepTarget(ctx, t)
		deleted += n
		if err != nil {
			return deleted, fmt.Errorf("failed to sweep bucket %s, %w", t.Bucket, err)
		}
	}

	zap.L().Debug("Orphan sweep finished", zap.Int("deleted", deleted))
	return deleted, nil
}

func (s *Sweeper) sweepTarget(ctx context.Context, t Target) (int, error) {
	prefix := ""
	if t.Prefix != "" {
		prefix = t.Prefix + "/"
	}

	objects, err := s.Blobs.List(ctx, t.Bucket, prefix)
	if err != nil {
		return 0, err
	}

	cutoff := s.Now().Add(-s.Grace)

	var candidates []string
	for _, o := range objects {
		if o.LastModified.Before(cutoff) {
			candidates = append(candidates, o.Key)
		}
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	known, err := s.knownPaths(ctx, candidates)
	if err != nil {
		return 0, err
	}

	var orphans []string
	for _, k := range candidates {
		if !known[k] {
			orphans = append(orphans, k)
		}
	}

	var deleted int
	for start := 0; start < len(orphans); start += sweepDeleteBatch {
		end := min(start+sweepDeleteBatch, len(orphans))

		if err := s.Blobs.Delete(ctx, t.Bucket, orphans[start:end]); err != nil {
			return deleted, err
		}

		deleted += end - start
	}

	if deleted > 0 {
		zap.L().Info("Deleted orphaned objects", zap.String("bucket", t.Bucket), zap.Int("count", deleted))
	}

	return deleted, nil
}

// knownPaths reports which keys are referenced by a file row, either as the
// file itself or as its preview or thumbnail. Soft deleted rows count as well
// since they still own their bytes.
func (s *Sweeper) knownPaths(ctx context.Context, keys []string) (map[string]bool, error) {
	known := make(map[string]bool, len(keys))

	for start := 0; start < len(keys); start += sweepLookupBatch {
		batch := keys[start:min(start+sweepLookupBatch, len(keys))]

		var rows []struct {
			FilePath     string
			PreviewURL   string
			ThumbnailURL string
		}
		err := s.DB.WithContext(ctx).
			Model(&model.File{}).
			Select("file_path", "preview_url", "thumbnail_url").
			Where("file_path IN ? OR preview_url IN ? OR thumbnail_url IN ?", batch, batch, batch).
			Find(&rows).
			Error
		if err != nil {
			return nil, fmt.Errorf("failed to query file paths, %w", err)
		}

		for _, r := range rows {
			known[r.FilePath] = true
			known[r.PreviewURL] = true
			known[r.ThumbnailURL] = true
		}
	}

	return known, nil
}
