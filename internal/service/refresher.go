package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"

	"gorm.io/gorm"
)

type FileView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Image       string            `json:"image"`
	Type        model.FileType    `json:"type"`
	Orientation model.Orientation `json:"orientation"`
	MimeType    string            `json:"mime_type"`
}

type CollectionView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ProjectID   string     `json:"projectId"`
	FileCount   int        `json:"fileCount"`
	LastUpdated string     `json:"lastUpdated"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	IsLive      bool       `json:"isLive"`
	Files       []FileView `json:"files"`
}

// Refresher reads collections back with fresh read URLs for every file.
// Nothing it returns is persisted.
type Refresher struct {
	DB       *gorm.DB
	Resolver *Resolver
	Linker   *Linker
	Now      func() time.Time
}

func NewRefresher(db *gorm.DB, r *Resolver, l *Linker) *Refresher {
	return &Refresher{DB: db, Resolver: r, Linker: l, Now: time.Now}
}

func activeFiles(db *gorm.DB) *gorm.DB {
	return db.Scopes(model.Active).Order("created_at asc")
}

// Collection returns the collection called collectionName (case insensitive)
// inside one of owner's projects.
func (r *Refresher) Collection(ctx context.Context, owner, projectID, collectionName string) (*CollectionView, error) {
	if _, err := r.Resolver.Project(ctx, owner, projectID); err != nil {
		return nil, err
	}

	var c model.Collection
	err := r.DB.WithContext(ctx).
		Scopes(model.Active).
		Preload("Files", activeFiles).
		Where("project_id = ? AND LOWER(title) = LOWER(?)", projectID, collectionName).
		First(&c).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "collection not found")
		}

		return nil, err
	}

	v := r.view(ctx, &c)
	return &v, nil
}

// Project returns every collection of the project, newest first.
func (r *Refresher) Project(ctx context.Context, owner, projectID string) ([]CollectionView, error) {
	if _, err := r.Resolver.Project(ctx, owner, projectID); err != nil {
		return nil, err
	}

	var collections []model.Collection
	err := r.DB.WithContext(ctx).
		Scopes(model.Active).
		Preload("Files", activeFiles).
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&collections).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections, %w", err)
	}

	views := make([]CollectionView, 0, len(collections))
	for i := range collections {
		views = append(views, r.view(ctx, &collections[i]))
	}

	return views, nil
}

// ByID returns a single collection if its project belongs to owner.
func (r *Refresher) ByID(ctx context.Context, owner, collectionID string) (*CollectionView, error) {
	var c model.Collection
	err := r.DB.WithContext(ctx).
		Scopes(model.Active).
		Preload("Files", activeFiles).
		Where("id = ?", collectionID).
		First(&c).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "collection not found")
		}

		return nil, err
	}

	if _, err := r.Resolver.Project(ctx, owner, c.ProjectID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "collection not found")
		}

		return nil, err
	}

	v := r.view(ctx, &c)
	return &v, nil
}

func (r *Refresher) view(ctx context.Context, c *model.Collection) CollectionView {
	files := make([]FileView, 0, len(c.Files))
	for _, f := range c.Files {
		files = append(files, r.FileView(ctx, &f))
	}

	return CollectionView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ProjectID:   c.ProjectID,
		FileCount:   len(files),
		LastUpdated: FormatLastUpdated(c.UpdatedAt, r.Now()),
		UpdatedAt:   c.UpdatedAt,
		IsLive:      c.IsLive,
		Files:       files,
	}
}

// FileView resolves the image shown for f.
func (r *Refresher) FileView(ctx context.Context, f *model.File) FileView {
	title := f.Title
	if title == "" {
		title = "File " + f.ID
	}

	return FileView{
		ID:          f.ID,
		Title:       title,
		Image:       r.Linker.ReadURL(ctx, previewPath(f)),
		Type:        f.Type,
		Orientation: f.Orientation,
		MimeType:    f.MimeType,
	}
}

// previewPath picks the stored path best suited as a preview. Videos use a
// thumbnail once one exists apart from the video itself.
func previewPath(f *model.File) string {
	if f.Type == model.FileTypeVideo && f.ThumbnailURL != "" && f.ThumbnailURL != f.FilePath {
		return f.ThumbnailURL
	}

	switch {
	case f.PreviewURL != "":
		return f.PreviewURL
	case f.ThumbnailURL != "":
		return f.ThumbnailURL
	default:
		return f.FilePath
	}
}

// FormatLastUpdated renders the age of t relative to now.
func FormatLastUpdated(t, now time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)
	if minutes < 1 {
		return "Just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d mins ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	}

	days := hours / 24
	return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
}

func plural(n int, word string) string {
	if n > 1 {
		return word + "s"
	}

	return word
}
