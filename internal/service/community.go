package service

import (
	"context"
	"fmt"

	"spacetwo/asset-api/internal/model"
)

const (
	CommunityMaxLimit = 50
	communityPreviews = 4
)

type CommunityOwner struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
}

// CommunityItem is a live collection as shown on the public feed.
type CommunityItem struct {
	CollectionView
	ProjectName string         `json:"projectName"`
	Owner       CommunityOwner `json:"owner"`
}

// Community lists live collections of every user, newest first. Each item
// carries at most four preview files. The second return value reports whether
// another page exists.
func (r *Refresher) Community(ctx context.Context, page, limit int) ([]CommunityItem, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > CommunityMaxLimit {
		limit = CommunityMaxLimit
	}

	var collections []model.Collection
	err := r.DB.WithContext(ctx).
		Joins("JOIN projects ON projects.id = collections.project_id").
		Scopes(model.ActiveIn("collections"), model.ActiveIn("projects")).
		Where("collections.is_live = ?", true).
		Preload("Files", activeFiles).
		Order("collections.created_at desc").
		Offset((page - 1) * limit).
		Limit(limit + 1).
		Find(&collections).
		Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch community collections, %w", err)
	}

	more := len(collections) > limit
	if more {
		collections = collections[:limit]
	}

	if len(collections) == 0 {
		return []CommunityItem{}, false, nil
	}

	projectIDs := make([]string, 0, len(collections))
	ownerIDs := make([]string, 0, len(collections))
	for _, c := range collections {
		projectIDs = append(projectIDs, c.ProjectID)
		ownerIDs = append(ownerIDs, c.OwnerID)
	}

	var projects []model.Project
	err = r.DB.WithContext(ctx).
		Where("id IN ?", projectIDs).
		Find(&projects).
		Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch projects, %w", err)
	}

	var users []model.User
	err = r.DB.WithContext(ctx).
		Scopes(model.Active).
		Where("id IN ?", ownerIDs).
		Find(&users).
		Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch owners, %w", err)
	}

	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	owners := make(map[string]model.User, len(users))
	for _, u := range users {
		owners[u.ID] = u
	}

	items := make([]CommunityItem, 0, len(collections))
	for i := range collections {
		c := &collections[i]

		total := len(c.Files)
		c.Files = c.Files[:min(total, communityPreviews)]

		v := r.view(ctx, c)
		v.FileCount = total

		u := owners[c.OwnerID]
		items = append(items, CommunityItem{
			CollectionView: v,
			ProjectName:    projectNames[c.ProjectID],
			Owner: CommunityOwner{
				ID:       c.OwnerID,
				Username: u.Username,
				Name:     u.Name,
				Avatar:   u.Avatar,
			},
		})
	}

	return items, more, nil
}
