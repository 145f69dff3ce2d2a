package upload

import (
	"net/http"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Complete records an upload once the object is present in storage.
func Complete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var req service.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if err := checkFile(req.FileName, req.FileSize); err != nil {
		respond.Error(c, err, "Invalid upload")
		return
	}

	f, err := d.Uploads.Complete(c.Request.Context(), userID, req)
	if err != nil {
		respond.Error(c, err, "Failed to complete upload")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"data":    d.Refresher.FileView(c.Request.Context(), f),
	})
}
