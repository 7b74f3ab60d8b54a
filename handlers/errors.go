package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/pkg/logger"
	"github.com/jonor84/nodeimages/web"
)

// NotFound renders the 404 page for unmatched routes.
func NotFound(c *gin.Context) {
	web.ErrorPage(c, http.StatusNotFound, "The page you are looking for does not exist.")
}

// Recovery turns panics into a 500: JSON for API-style requests, the error
// page otherwise.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Named("http").Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorMessage": "An internal error occurred"})
			return
		}
		web.ErrorPage(c, http.StatusInternalServerError, "Something went wrong on our side.")
		c.Abort()
	})
}

func wantsJSON(c *gin.Context) bool {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
