package collection

import (
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Delete soft deletes a collection together with its files. The bytes stay
// in storage since deleted rows still own their keys.
func Delete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Collection ID is required",
			"requestID": requestID,
		})
		return
	}

	var n int64
	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error

		n, err = model.SoftDelete(tx, &model.Collection{}, "id = ? AND owner_id = ?", id, userID)
		if err != nil || n == 0 {
			return err
		}

		_, err = model.SoftDelete(tx, &model.File{}, "collection_id = ?", id)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete collection", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Collection not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}
