package upload

import (
	"net/http"

	"spacetwo/asset-api/app/respond"
	"spacetwo/asset-api/internal"
	"spacetwo/asset-api/internal/service"
	"spacetwo/asset-api/pkg/middleware"
	"spacetwo/asset-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Direct accepts the bytes in a multipart form, stores and records them in a
// single request.
func Direct(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":     "File too large",
				"requestID": requestID,
			})
			return
		}

		respond.BadRequest(c, "No file provided")
		return
	}

	code, f, mime, err := validators.FileValidator(
		fh,
		viper.GetInt64("upload.max_size"),
		viper.GetInt("upload.max_name_length"),
	)
	if err != nil {
		if code == http.StatusInternalServerError {
			c.JSON(code, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to validate file", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		c.JSON(code, gin.H{
			"error":     "File validation failed: " + err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	file, err := d.Uploads.Direct(c.Request.Context(), userID, service.DirectRequest{
		FileName:       fh.Filename,
		MimeType:       mime,
		Size:           fh.Size,
		ProjectName:    c.PostForm("projectName"),
		CollectionName: c.PostForm("collectionName"),
		Body:           f,
	})
	if err != nil {
		respond.Error(c, err, "Failed to store upload")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"data":    d.Refresher.FileView(c.Request.Context(), file),
	})
}
