package validators

import (
	"strings"
	"unicode/utf8"

	"spacetwo/asset-api/internal/errs"
	"spacetwo/asset-api/internal/model"
)

const maxLabelLength = 4

// Project is the writable part of a project.
type Project struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Icon        *string `json:"icon"`
	Label       *string `json:"label"`
	Bg          string  `json:"bg"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
}

func ProjectValidator(p *Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return errs.New(errs.ErrValidation, "project name is required")
	}

	if err := projectTypeValidator(p.Type, p.Icon, p.Label); err != nil {
		return err
	}

	if p.Bg == "" || p.Color == "" {
		return errs.New(errs.ErrValidation, "background and text colors are required")
	}

	return labelValidator(p.Label)
}

// ProjectUpdate holds the fields of a partial update. Nil fields are left
// untouched.
type ProjectUpdate struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Icon        *string `json:"icon"`
	Label       *string `json:"label"`
	Bg          *string `json:"bg"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

func ProjectUpdateValidator(p *ProjectUpdate) error {
	if p.ID == "" {
		return errs.New(errs.ErrValidation, "project ID is required for update")
	}

	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return errs.New(errs.ErrValidation, "project name cannot be empty")
	}

	if p.Type != nil {
		if err := projectTypeValidator(*p.Type, p.Icon, p.Label); err != nil {
			return err
		}
	}

	return labelValidator(p.Label)
}

func projectTypeValidator(typ string, icon, label *string) error {
	switch model.ProjectType(typ) {
	case model.ProjectTypeIcon:
		if icon == nil || *icon == "" {
			return errs.New(errs.ErrValidation, "icon is required for icon-type projects")
		}
	case model.ProjectTypeText:
		if label == nil || strings.TrimSpace(*label) == "" {
			return errs.New(errs.ErrValidation, "label is required for text-type projects")
		}
	default:
		return errs.New(errs.ErrValidation, `project type must be either "icon" or "text"`)
	}

	return nil
}

func labelValidator(label *string) error {
	if label != nil && utf8.RuneCountInString(strings.TrimSpace(*label)) > maxLabelLength {
		return errs.New(errs.ErrValidation, "project label cannot exceed 4 characters")
	}

	return nil
}
