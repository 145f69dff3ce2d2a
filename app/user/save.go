// Package user holds the profile handlers. Identities are issued elsewhere,
// this only stores what the profile page shows.
package user

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9_-]{3,32}$`)

type saveBody struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

// UserSave creates or updates the profile of the caller.
func UserSave(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var body saveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if body.Username != nil {
		u := strings.ToLower(strings.TrimSpace(*body.Username))
		if !usernameRe.MatchString(u) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Username must be 3 to 32 characters of a-z, 0-9, _ or -",
				"requestID": requestID,
			})
			return
		}
		body.Username = &u
	}

	user := model.User{
		ID:       userID,
		Email:    body.Email,
		Name:     body.Name,
		Username: body.Username,
		Avatar:   body.Avatar,
	}

	status := http.StatusOK
	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var existing model.User

		err := tx.
			Where("id = ?", userID).
			First(&existing).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusCreated
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		err = tx.
			Model(&existing).
			Updates(user).
			Error
		if err != nil {
			return err
		}

		return tx.First(&user, "id = ?", userID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Username is already taken",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save user profile", zap.String("requestID", requestID), zap.Error(err))
		return
	}

	c.JSON(status, user)
}
