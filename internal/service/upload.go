package service

import (
	"context"
	"errors"
	"io"
	"time"

	"spacetwo/asset-api/internal/blob"
	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/metrics"
	"spacetwo/asset-api/internal/model"

	"go.uber.org/zap"
)

// Uploads runs the upload workflow: resolve, negotiate, and after the client
// stored the bytes, record.
type Uploads struct {
	Resolver   *Resolver
	Negotiator *Negotiator
	Recorder   *Recorder
	Observer   metrics.Observer
	// Largest object Complete accepts, zero disables the check. Signed upload
	// URLs do not bound the size of the PUT.
	MaxSize int64
}

func NewUploads(r *Resolver, n *Negotiator, rec *Recorder, o metrics.Observer) *Uploads {
	if o == nil {
		o = metrics.Nop()
	}

	return &Uploads{Resolver: r, Negotiator: n, Recorder: rec, Observer: o}
}

type BeginRequest struct {
	FileName       string `json:"fileName"`
	FileType       string `json:"fileType"`
	FileSize       int64  `json:"fileSize"`
	ProjectName    string `json:"projectName"`
	CollectionName string `json:"collectionName"`
}

type CompleteRequest struct {
	FileID         string `json:"fileId"`
	Path           string `json:"path"`
	FileName       string `json:"fileName"`
	FileType       string `json:"fileType"`
	FileSize       int64  `json:"fileSize"`
	ProjectName    string `json:"projectName"`
	CollectionName string `json:"collectionName"`
}

type DirectRequest struct {
	FileName       string
	MimeType       string
	Size           int64
	ProjectName    string
	CollectionName string
	Body           io.ReadSeeker
}

func requireFields(fileName, projectName, collectionName string) error {
	if fileName == "" || projectName == "" || collectionName == "" {
		return errs.New(errs.ErrValidation, "missing required fields: fileName, projectName, collectionName")
	}

	return nil
}

// Begin resolves the target project and negotiates an upload URL. Nothing
// is written to the record store.
func (u *Uploads) Begin(ctx context.Context, owner string, req BeginRequest) (*Descriptor, error) {
	if err := requireFields(req.FileName, req.ProjectName, req.CollectionName); err != nil {
		return nil, err
	}

	res, err := u.resolve(ctx, owner, req.ProjectName, req.CollectionName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	d, err := u.Negotiator.Negotiate(ctx, UploadRequest{
		ProjectID:      res.Project.ID,
		CollectionName: req.CollectionName,
		FileName:       req.FileName,
		MimeType:       req.FileType,
	})
	u.Observer.RecordStage("negotiate", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Complete records an upload negotiated by Begin once the object is present
// in storage. The path must be the one Begin derived for this project,
// collection and file id.
func (u *Uploads) Complete(ctx context.Context, owner string, req CompleteRequest) (*model.File, error) {
	if err := requireFields(req.FileName, req.ProjectName, req.CollectionName); err != nil {
		return nil, err
	}
	if req.FileID == "" || req.Path == "" {
		return nil, errs.New(errs.ErrValidation, "missing required fields: fileId, path")
	}

	res, err := u.resolve(ctx, owner, req.ProjectName, req.CollectionName)
	if err != nil {
		return nil, err
	}

	base := ObjectPath(res.Project.ID, req.CollectionName, req.FileID, req.FileName)

	var target *Target
	for _, t := range u.Negotiator.Targets {
		if t.Key(base) == req.Path {
			target = &t
			break
		}
	}
	if target == nil {
		return nil, errs.New(errs.ErrValidation, "path does not belong to this upload")
	}

	obj, err := u.Negotiator.Blobs.Stat(ctx, target.Bucket, req.Path)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return nil, errs.New(errs.ErrValidation, "upload not found in storage")
		}

		return nil, errs.Wrap(errs.ErrStorageUnavailable, err, "storage is not available")
	}

	if u.MaxSize > 0 && obj.Size > u.MaxSize {
		if err := u.Negotiator.Blobs.Delete(ctx, target.Bucket, []string{req.Path}); err != nil {
			zap.L().Warn("Failed to delete oversized upload", zap.String("path", req.Path), zap.Error(err))
		}

		return nil, errs.New(errs.ErrValidation, "file too large")
	}

	size := req.FileSize
	if obj.Size > 0 {
		size = obj.Size
	}

	// The stored content type is what readers get served
	mimeType := req.FileType
	if obj.ContentType != "" && !isGenericContentType(obj.ContentType) {
		mimeType = obj.ContentType
	}

	return u.Recorder.Record(ctx, Record{
		FileID:         req.FileID,
		Path:           req.Path,
		OwnerID:        owner,
		CollectionID:   res.CollectionID(),
		CollectionName: req.CollectionName,
		FileName:       req.FileName,
		Size:           size,
		MimeType:       mimeType,
	})
}

func isGenericContentType(ct string) bool {
	switch ct {
	case "application/octet-stream", "binary/octet-stream":
		return true
	}

	return false
}

// Direct stores bytes received by the server and records them in one go.
func (u *Uploads) Direct(ctx context.Context, owner string, req DirectRequest) (*model.File, error) {
	if err := requireFields(req.FileName, req.ProjectName, req.CollectionName); err != nil {
		return nil, err
	}

	res, err := u.resolve(ctx, owner, req.ProjectName, req.CollectionName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	d, err := u.Negotiator.Store(ctx, UploadRequest{
		ProjectID:      res.Project.ID,
		CollectionName: req.CollectionName,
		FileName:       req.FileName,
		MimeType:       req.MimeType,
	}, req.Body, req.Size)
	u.Observer.RecordStage("store", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	f, err := u.Recorder.Record(ctx, Record{
		FileID:         d.FileID,
		Path:           d.Path,
		OwnerID:        owner,
		CollectionID:   res.CollectionID(),
		CollectionName: req.CollectionName,
		FileName:       req.FileName,
		Size:           req.Size,
		MimeType:       req.MimeType,
	})
	if err != nil {
		// The object stays behind, the sweep removes it once it is old enough
		zap.L().Warn("Stored object has no record", zap.String("bucket", d.Bucket), zap.String("key", d.Path))
		return nil, err
	}

	return f, nil
}

func (u *Uploads) resolve(ctx context.Context, owner, projectName, collectionName string) (*Resolution, error) {
	if owner == "" {
		return nil, errs.New(errs.ErrNotAuthenticated, "user not authenticated")
	}

	start := time.Now()
	res, err := u.Resolver.Resolve(ctx, owner, projectName, collectionName)
	u.Observer.RecordStage("resolve", time.Since(start), err)

	return res, err
}
