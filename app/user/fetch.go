package user

import (
	"errors"
	"net/http"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type publicProfile struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
	Projects int64   `json:"projects"`
}

// UserFetch returns the public profile behind a username.
func UserFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var u model.User

	err := d.DB.
		WithContext(c.Request.Context()).
		Scopes(model.Active).
		Where("username = ?", c.Param("username")).
		First(&u).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	var projects int64
	err = d.DB.
		WithContext(c.Request.Context()).
		Model(&model.Project{}).
		Scopes(model.Active, model.OwnedBy(u.ID)).
		Count(&projects).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count user projects", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, publicProfile{
		Username: *u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Projects: projects,
	})
}
