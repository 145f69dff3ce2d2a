package file

import (
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileOwns(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID := c.Param("id")
	if fileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	var n int64
	err := d.DB.
		WithContext(c.Request.Context()).
		Model(&model.File{}).
		Scopes(model.Active, model.OwnedBy(userID)).
		Where("id = ?", fileID).
		Count(&n).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user owns a file", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	if n > 0 {
		c.JSON(http.StatusOK, gin.H{"owns": true})
		return
	}

	c.JSON(http.StatusForbidden, gin.H{"owns": false})
}
