package user

import (
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserDelete soft deletes the caller's profile. Callers can only delete
// themselves, ?id is accepted as long as it names the caller.
func UserDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if id := c.Query("id"); id != "" && id != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You can only delete your own account",
			"requestID": requestID,
		})
		return
	}

	n, err := model.SoftDelete(
		d.DB.WithContext(c.Request.Context()),
		&model.User{},
		"id = ?", userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete user", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
