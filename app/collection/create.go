package collection

import (
	"errors"
	"net/http"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"
	"spacetwo/asset-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var req validators.Collection
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if err := validators.CollectionValidator(&req); err != nil {
		respond.Error(c, err, "Invalid collection")
		return
	}

	project, err := d.Resolver.Project(c.Request.Context(), userID, req.ProjectID)
	if err != nil {
		respond.Error(c, err, "Failed to look up project")
		return
	}

	col := model.Collection{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   project.ID,
		OwnerID:     userID,
		IsLive:      req.IsLive,
	}

	err = d.DB.
		WithContext(c.Request.Context()).
		Create(&col).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "A collection with this title already exists in this project",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to create collection",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create collection", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Collection created successfully",
		"data":    col,
	})
}
