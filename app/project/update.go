package project

import (
	"errors"
	"net/http"
	"strings"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"
	"spacetwo/asset-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Update applies a partial update to a project of the caller.
func Update(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var req validators.ProjectUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if err := validators.ProjectUpdateValidator(&req); err != nil {
		respond.Error(c, err, "Invalid project")
		return
	}

	p, err := d.Resolver.Project(c.Request.Context(), userID, req.ID)
	if err != nil {
		respond.Error(c, err, "Failed to fetch project")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		updates["type"] = *req.Type
		if model.ProjectType(*req.Type) == model.ProjectTypeIcon {
			updates["label"] = nil
		} else {
			updates["icon"] = nil
		}
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Label != nil {
		updates["label"] = strings.TrimSpace(*req.Label)
	}
	if req.Bg != nil {
		updates["bg"] = *req.Bg
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "Project updated successfully",
			"data":    p,
		})
		return
	}

	err = d.DB.
		WithContext(c.Request.Context()).
		Model(p).
		Updates(updates).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "A project with this name already exists",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to update project",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update project", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	// Reload so the response carries the stored values
	p, err = d.Resolver.Project(c.Request.Context(), userID, req.ID)
	if err != nil {
		respond.Error(c, err, "Failed to fetch project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"data":    p,
	})
}
