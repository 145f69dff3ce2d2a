package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Target is one storage area files can be written to. Keys written to a
// target with a prefix are stored as {prefix}/{path}.
type Target struct {
	Bucket string
	Prefix string
}

// Key returns the object key used for path inside this target.
func (t Target) Key(path string) string {
	if t.Prefix == "" {
		return path
	}

	return t.Prefix + "/" + path
}

// ReadKey is like Key but accepts paths that were recorded with the prefix
// already applied.
func (t Target) ReadKey(path string) string {
	if t.Prefix == "" || strings.HasPrefix(path, t.Prefix+"/") {
		return path
	}

	return t.Key(path)
}

// UploadRequest carries what is needed to derive an object key.
type UploadRequest struct {
	ProjectID      string
	CollectionName string
	FileName       string
	MimeType       string
}

// Descriptor is the outcome of a successful negotiation. Path is the key the
// bytes live under in Bucket, including any target prefix.
type Descriptor struct {
	UploadURL string `json:"uploadUrl,omitempty"`
	FileID    string `json:"fileId"`
	Path      string `json:"path"`
	Bucket    string `json:"-"`
	MimeType  string `json:"-"`
}

// Negotiator hands out upload locations, walking the targets in order until
// one accepts.
type Negotiator struct {
	Blobs    blob.Store
	Targets  []Target
	TTL      time.Duration
	Observer metrics.Observer
	// NewFileID can be replaced in tests
	NewFileID func() string
}

func NewNegotiator(s blob.Store, targets []Target, ttl time.Duration, o metrics.Observer) *Negotiator {
	if o == nil {
		o = metrics.Nop()
	}

	return &Negotiator{
		Blobs:     s,
		Targets:   targets,
		TTL:       ttl,
		Observer:  o,
		NewFileID: uuid.NewString,
	}
}

// Negotiate returns a signed upload URL for a fresh object key. When every
// target rejects the request the error is an *errs.AllFailedError and no
// descriptor is issued.
func (n *Negotiator) Negotiate(ctx context.Context, req UploadRequest) (*Descriptor, error) {
	d := n.newDescriptor(req)
	base := ObjectPath(req.ProjectID, req.CollectionName, d.FileID, req.FileName)

	err := n.each(ctx, blob.OpSignUpload, base, d, func(t Target, key string) error {
		u, err := n.Blobs.SignUpload(ctx, t.Bucket, key, d.MimeType, n.TTL)
		if err != nil {
			return err
		}

		d.UploadURL = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Store writes body through the same target chain as Negotiate. It is used
// when the server receives the bytes itself.
func (n *Negotiator) Store(ctx context.Context, req UploadRequest, body io.ReadSeeker, size int64) (*Descriptor, error) {
	d := n.newDescriptor(req)
	base := ObjectPath(req.ProjectID, req.CollectionName, d.FileID, req.FileName)

	err := n.each(ctx, blob.OpPut, base, d, func(t Target, key string) error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind body, %w", err)
		}

		return n.Blobs.Put(ctx, t.Bucket, key, body, size, d.MimeType)
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (n *Negotiator) newDescriptor(req UploadRequest) *Descriptor {
	return &Descriptor{
		FileID:   n.NewFileID(),
		MimeType: NormalizeMime(req.MimeType),
	}
}

// each tries fn once per target in order and fills in the location of the
// first target that succeeds.
func (n *Negotiator) each(ctx context.Context, op, base string, d *Descriptor, fn func(t Target, key string) error) error {
	failed := &errs.AllFailedError{}

	for i, t := range n.Targets {
		key := t.Key(base)

		start := time.Now()
		err := fn(t, key)
		n.Observer.RecordAttempt(op, t.Bucket, time.Since(start), err)

		if err != nil {
			zap.L().Warn("Storage target rejected request",
				zap.String("op", op),
				zap.String("bucket", t.Bucket),
				zap.String("key", key),
				zap.Error(err),
			)

			failed.Attempts = append(failed.Attempts, errs.Attempt{Bucket: t.Bucket, Key: key, Err: err})
			continue
		}

		if i > 0 {
			n.Observer.RecordFallback(op)
			zap.L().Warn("Using fallback storage target", zap.String("op", op), zap.String("bucket", t.Bucket))
		}

		d.Bucket = t.Bucket
		d.Path = key
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return failed
}
