package validators

import (
	"strings"

	"spacetwo/asset-api/internal/errs"
)

// Collection is the body of a create collection request.
type Collection struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ProjectID   string  `json:"project_id"`
	IsLive      bool    `json:"is_live"`
}

func CollectionValidator(c *Collection) error {
	if strings.TrimSpace(c.Title) == "" {
		return errs.New(errs.ErrValidation, "collection title is required")
	}

	if c.ProjectID == "" {
		return errs.New(errs.ErrValidation, "project ID is required")
	}

	return nil
}
