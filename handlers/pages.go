package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/pkg/middleware"
)

type PageHandler struct{}

// Index sends signed-in users to the dashboard and shows the landing page otherwise.
func (p *PageHandler) Index(c *gin.Context) {
	if middleware.CurrentSession(c).Authenticated {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

func (p *PageHandler) Dashboard(c *gin.Context) {
	rc := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "DisplayName": rc.DisplayName})
}

func (p *PageHandler) SearchForm(c *gin.Context) {
	rc := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, "search.html", gin.H{"Title": "Search", "DisplayName": rc.DisplayName})
}
