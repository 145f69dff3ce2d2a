package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Validate is reached only when the auth middleware accepted the token.
func Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userID": c.MustGet("userID").(string)})
}
