// Package upload holds the handlers of the upload workflow
package upload

import (
	"net/http"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/service"
	"spacetwo/asset-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// Begin negotiates a signed upload URL. The client transfers the bytes itself
// and then calls Complete.
func Begin(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var req service.BeginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Invalid request body")
		return
	}

	if err := checkFile(req.FileName, req.FileSize); err != nil {
		respond.Error(c, err, "Invalid upload")
		return
	}

	desc, err := d.Uploads.Begin(c.Request.Context(), userID, req)
	if err != nil {
		respond.Error(c, err, "Failed to negotiate upload")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Upload URL created successfully",
		"uploadUrl": desc.UploadURL,
		"fileId":    desc.FileID,
		"path":      desc.Path,
	})
}

// checkFile is skipped for empty names so the workflow reports every missing
// field at once.
func checkFile(name string, size int64) error {
	if name != "" {
		if err := validators.FileNameValidator(name, viper.GetInt("upload.max_name_length")); err != nil {
			return err
		}
	}

	return validators.FileSizeValidator(size, viper.GetInt64("upload.max_size"))
}
