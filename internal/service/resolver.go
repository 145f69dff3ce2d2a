package service

import (
	"context"
	"errors"

	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"
	"spacetwo/asset-api/pkg/slug"

	"gorm.io/gorm"
)

// Resolution is the project an upload targets and, when it exists, the
// collection inside it.
type Resolution struct {
	Project    model.Project
	Collection *model.Collection
}

// CollectionID returns the id of the resolved collection or nil.
func (r *Resolution) CollectionID() *string {
	if r.Collection == nil {
		return nil
	}

	id := r.Collection.ID
	return &id
}

type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

// Resolve finds the owner's project by exact name and the collection by case
// insensitive title. A missing project is an error, a missing collection is
// not.
func (r *Resolver) Resolve(ctx context.Context, owner, projectName, collectionName string) (*Resolution, error) {
	var res Resolution

	err := r.DB.WithContext(ctx).
		Scopes(model.Active, model.OwnedBy(owner)).
		Where("name = ?", projectName).
		First(&res.Project).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "project not found or access denied")
		}

		return nil, err
	}

	c, err := r.collection(ctx, owner, res.Project.ID, collectionName)
	if err != nil {
		return nil, err
	}

	res.Collection = c
	return &res, nil
}

// Project loads an active project owned by owner.
func (r *Resolver) Project(ctx context.Context, owner, projectID string) (*model.Project, error) {
	var p model.Project

	err := r.DB.WithContext(ctx).
		Scopes(model.Active, model.OwnedBy(owner)).
		Where("id = ?", projectID).
		First(&p).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "project not found or access denied")
		}

		return nil, err
	}

	return &p, nil
}

func (r *Resolver) collection(ctx context.Context, owner, projectID, title string) (*model.Collection, error) {
	if title == "" {
		return nil, nil
	}

	var c model.Collection

	err := r.DB.WithContext(ctx).
		Scopes(model.Active, model.OwnedBy(owner)).
		Where("project_id = ? AND LOWER(title) = LOWER(?)", projectID, title).
		First(&c).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &c, nil
}

// SlugResolution names the records behind a /{user}/{project}/{collection}
// URL.
type SlugResolution struct {
	UserID          string  `json:"userId"`
	Username        string  `json:"username"`
	ProjectID       string  `json:"projectId"`
	ProjectName     string  `json:"projectName"`
	CollectionID    *string `json:"collectionId"`
	CollectionTitle *string `json:"collectionTitle"`
}

// ResolveSlugs maps URL slugs back to stored records. The collection slug is
// optional.
func (r *Resolver) ResolveSlugs(ctx context.Context, username, projectSlug, collectionSlug string) (*SlugResolution, error) {
	var u model.User

	err := r.DB.WithContext(ctx).
		Scopes(model.Active).
		Where("username = ?", username).
		First(&u).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.ErrNotFound, "user not found")
		}

		return nil, err
	}

	var projects []model.Project
	err = r.DB.WithContext(ctx).
		Scopes(model.Active, model.OwnedBy(u.ID)).
		Order("created_at asc").
		Find(&projects).
		Error
	if err != nil {
		return nil, err
	}

	res := &SlugResolution{UserID: u.ID, Username: username}

	want := slug.Of(projectSlug)
	for _, p := range projects {
		if slug.Of(p.Name) == want {
			res.ProjectID = p.ID
			res.ProjectName = p.Name
			break
		}
	}

	if res.ProjectID == "" {
		return nil, errs.New(errs.ErrNotFound, "project not found")
	}

	if collectionSlug == "" {
		return res, nil
	}

	var collections []model.Collection
	err = r.DB.WithContext(ctx).
		Scopes(model.Active).
		Where("project_id = ?", res.ProjectID).
		Order("created_at asc").
		Find(&collections).
		Error
	if err != nil {
		return nil, err
	}

	want = slug.Of(collectionSlug)
	for _, c := range collections {
		if slug.Of(c.Title) == want {
			res.CollectionID = &c.ID
			res.CollectionTitle = &c.Title
			return res, nil
		}
	}

	return nil, errs.New(errs.ErrNotFound, "collection not found")
}
