// Package file holds the handlers for single files
package file

import (
	"errors"
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"
	"spacetwo/asset-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileFetch returns a file of the caller along with a signed read URL.
func FileFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if err := validators.IDValidator(fileID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid file ID format",
			"requestID": requestID,
		})
		return
	}

	var f model.File

	err := d.DB.
		WithContext(c.Request.Context()).
		Scopes(model.Active, model.OwnedBy(userID)).
		Where("id = ?", fileID).
		First(&f).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": f,
		"url":  d.Linker.ReadURL(c.Request.Context(), f.FilePath),
		"view": d.Refresher.FileView(c.Request.Context(), &f),
	})
}
