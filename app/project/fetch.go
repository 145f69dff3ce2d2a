// Package project holds the project handlers
package project

import (
	"net/http"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/model"

	"github.com/gin-gonic/gin"
)

// Fetch returns the project given by ?id or every project of the caller,
// newest first.
func Fetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if id := c.Query("id"); id != "" {
		p, err := d.Resolver.Project(c.Request.Context(), userID, id)
		if err != nil {
			respond.Error(c, err, "Failed to fetch project")
			return
		}

		c.JSON(http.StatusOK, p)
		return
	}

	projects := []model.Project{}
	err := d.DB.
		WithContext(c.Request.Context()).
		Scopes(model.Active, model.OwnedBy(userID)).
		Order("created_at desc").
		Find(&projects).
		Error
	if err != nil {
		respond.Error(c, err, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, projects)
}
