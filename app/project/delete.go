package project

import (
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Delete soft deletes a project with all of its collections and files.
func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Project ID is required",
			"requestID": requestID,
		})
		return
	}

	var n int64
	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error

		n, err = model.SoftDelete(tx, &model.Project{}, "id = ? AND owner_id = ?", id, userID)
		if err != nil || n == 0 {
			return err
		}

		collections := tx.
			Model(&model.Collection{}).
			Select("id").
			Where("project_id = ?", id)

		if _, err = model.SoftDelete(tx, &model.File{}, "collection_id IN (?)", collections); err != nil {
			return err
		}

		_, err = model.SoftDelete(tx, &model.Collection{}, "project_id = ?", id)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete project", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Project not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
