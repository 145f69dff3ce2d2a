// Package internal wires the services handed to HTTP handlers
package internal

import (
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/metrics"
	"spacetwo/asset-api/internal/service"
	"spacetwo/asset-api/pkg/middleware"

	"gorm.io/gorm"
)

// Deps holds every dependency a handler may need. It is built once at
// startup and passed explicitly, there are no package level clients.
type Deps struct {
	DB       *gorm.DB
	Blobs    blob.Store
	Verifier middleware.Verifier
	Observer metrics.Observer

	Resolver   *service.Resolver
	Negotiator *service.Negotiator
	Recorder   *service.Recorder
	Linker     *service.Linker
	Refresher  *service.Refresher
	Uploads    *service.Uploads
	Sweeper    *service.Sweeper
}

// Options configure NewDeps.
type Options struct {
	Targets     []service.Target
	UploadTTL   time.Duration
	ReadTTL     time.Duration
	Placeholder string
	SweepGrace  time.Duration
	Thumbnailer service.Thumbnailer
	// Zero accepts uploads of any size on completion
	MaxUploadSize int64
	// Replaces Thumbnailer with an ffmpeg based one
	FFmpegThumbnails bool
}

// NewDeps builds the service graph on top of a record store and blob store.
func NewDeps(db *gorm.DB, blobs blob.Store, verifier middleware.Verifier, o metrics.Observer, opts Options) *Deps {
	if o == nil {
		o = metrics.Nop()
	}

	d := &Deps{
		DB:       db,
		Blobs:    blobs,
		Verifier: verifier,
		Observer: o,
	}

	d.Resolver = service.NewResolver(db)
	d.Negotiator = service.NewNegotiator(blobs, opts.Targets, opts.UploadTTL, o)
	d.Linker = service.NewLinker(blobs, opts.Targets, opts.ReadTTL, opts.Placeholder, o)

	thumbnailer := opts.Thumbnailer
	if opts.FFmpegThumbnails {
		thumbnailer = service.NewFFmpegThumbnailer(db, blobs, opts.Targets, d.Linker)
	}

	d.Recorder = service.NewRecorder(db, thumbnailer, o)
	d.Refresher = service.NewRefresher(db, d.Resolver, d.Linker)
	d.Uploads = service.NewUploads(d.Resolver, d.Negotiator, d.Recorder, o)
	d.Uploads.MaxSize = opts.MaxUploadSize
	d.Sweeper = service.NewSweeper(db, blobs, opts.Targets, opts.SweepGrace)

	return d
}
