// Package resolve maps public /{user}/{project}/{collection} URLs to records
package resolve

import (
	"net/http"
	"strings"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"

	"github.com/gin-gonic/gin"
)

func Resolve(c *gin.Context, d *internal.Deps) {
	collection := strings.Trim(c.Param("collection"), "/")

	res, err := d.Resolver.ResolveSlugs(c.Request.Context(), c.Param("username"), c.Param("project"), collection)
	if err != nil {
		respond.Error(c, err, "Failed to resolve slugs")
		return
	}

	c.JSON(http.StatusOK, res)
}
