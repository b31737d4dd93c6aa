package api

import (
	"net/http"

	"github.com/colinmarsh/segtrack/internal/demo"
	"github.com/gin-gonic/gin"
)

// SetupStatusRoutes registers the /status endpoint, which reports the
// tracker's current format and playback position, and marks the
// representation the demo's adaptation logic currently recommends.
func SetupStatusRoutes(apiGroup *gin.RouterGroup, stream *demo.Stream) {
	apiGroup.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, stream.Status())
	})
}
