package project

import (
	"errors"
	"net/http"
	"strings"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"
	"spacetwo/asset-api/pkg/util"
	"spacetwo/asset-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var req validators.Project
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if err := validators.ProjectValidator(&req); err != nil {
		respond.Error(c, err, "Invalid project")
		return
	}

	p := model.Project{
		Name:        strings.TrimSpace(req.Name),
		Type:        model.ProjectType(req.Type),
		Bg:          req.Bg,
		Color:       req.Color,
		Description: req.Description,
		OwnerID:     userID,
	}

	// Only the field matching the type is kept
	if p.Type == model.ProjectTypeIcon {
		p.Icon = req.Icon
	} else {
		label := strings.TrimSpace(*req.Label)
		p.Label = &label
	}

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID); err != nil {
			return err
		}

		return tx.Create(&p).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "A project with this name already exists",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to create project",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create project", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"data":    p,
	})
}

// ensureUser creates a profile row for identities that never saved one.
func ensureUser(tx *gorm.DB, userID string) error {
	username := "user_" + strings.ToLower(util.RandStr(8))

	return tx.
		Where(model.User{ID: userID}).
		Attrs(model.User{Username: &username}).
		FirstOrCreate(&model.User{}).
		Error
}
