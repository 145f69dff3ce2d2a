// Package respond writes the JSON error bodies shared by every handler
package respond

import (
	"net/http"

	"spacetwo/asset-api/internal/errs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error maps err to a status code and message. Server side failures are
// logged with logMsg, client errors are not.
func Error(c *gin.Context, err error, logMsg string) {
	requestID := c.GetString("requestID")
	status := errs.Status(err)

	if status >= http.StatusInternalServerError {
		zap.L().Error(logMsg, zap.String("requestID", requestID), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":     errs.Message(err),
		"requestID": requestID,
	})
}

// BadRequest is a shorthand for 400 responses with a fixed message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}
