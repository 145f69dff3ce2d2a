package file

import (
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileDelete soft deletes a file. The object itself is kept.
func FileDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "ID is missing",
			"requestID": requestID,
		})
		return
	}

	n, err := model.SoftDelete(
		d.DB.WithContext(c.Request.Context()),
		&model.File{},
		"id = ? AND owner_id = ?", fileID, userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete file", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "File not found. It either doesn't exist or you don't own it",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
