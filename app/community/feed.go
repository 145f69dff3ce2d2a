// Package community serves the public feed of live collections
package community

import (
	"net/http"
	"strconv"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/service"

	"github.com/gin-gonic/gin"
)

func Feed(c *gin.Context, d *internal.Deps) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		respond.BadRequest(c, "Page must be a positive number")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > service.CommunityMaxLimit {
		respond.BadRequest(c, "Limit must be between 1 and 50")
		return
	}

	items, more, err := d.Refresher.Community(c.Request.Context(), page, limit)
	if err != nil {
		respond.Error(c, err, "Failed to fetch community feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    items,
		"page":    page,
		"limit":   limit,
		"hasMore": more,
	})
}
