// Package collection holds the collection handlers
package collection

import (
	"net/http"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"

	"github.com/gin-gonic/gin"
)

// Fetch returns a single collection by ?id, one by ?project_id&name, or all
// collections of ?project_id.
func Fetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)
	ctx := c.Request.Context()

	if id := c.Query("id"); id != "" {
		v, err := d.Refresher.ByID(ctx, userID, id)
		if err != nil {
			respond.Error(c, err, "Failed to fetch collection")
			return
		}

		c.JSON(http.StatusOK, v)
		return
	}

	projectID := c.Query("project_id")
	if projectID == "" {
		respond.BadRequest(c, "Project ID is required")
		return
	}

	if name := c.Query("name"); name != "" {
		v, err := d.Refresher.Collection(ctx, userID, projectID, name)
		if err != nil {
			respond.Error(c, err, "Failed to fetch collection")
			return
		}

		c.JSON(http.StatusOK, v)
		return
	}

	views, err := d.Refresher.Project(ctx, userID, projectID)
	if err != nil {
		respond.Error(c, err, "Failed to fetch collections")
		return
	}

	c.JSON(http.StatusOK, views)
}
