package service

import (
	"context"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/metrics"

	"go.uber.org/zap"
)

// Linker turns stored paths into short lived read URLs. It walks the same
// targets as the Negotiator so fallback uploads stay readable.
type Linker struct {
	Blobs       blob.Store
	Targets     []Target
	TTL         time.Duration
	Placeholder string
	Observer    metrics.Observer
}

func NewLinker(s blob.Store, targets []Target, ttl time.Duration, placeholder string, o metrics.Observer) *Linker {
	if o == nil {
		o = metrics.Nop()
	}

	return &Linker{
		Blobs:       s,
		Targets:     targets,
		TTL:         ttl,
		Placeholder: placeholder,
		Observer:    o,
	}
}

// ReadURL returns a signed URL for path from the first target holding it,
// or the placeholder when none does.
func (l *Linker) ReadURL(ctx context.Context, path string) string {
	if path == "" {
		return l.Placeholder
	}

	for i, t := range l.Targets {
		key := t.ReadKey(path)

		start := time.Now()
		u, err := l.Blobs.SignRead(ctx, t.Bucket, key, l.TTL)
		l.Observer.RecordAttempt(blob.OpSignRead, t.Bucket, time.Since(start), err)

		if err != nil {
			zap.L().Debug("Read URL not available", zap.String("bucket", t.Bucket), zap.String("key", key), zap.Error(err))
			continue
		}

		if i > 0 {
			l.Observer.RecordFallback(blob.OpSignRead)
		}

		return u
	}

	zap.L().Warn("No storage target holds file, using placeholder", zap.String("path", path))
	return l.Placeholder
}
