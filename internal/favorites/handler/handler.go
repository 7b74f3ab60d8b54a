package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/internal/favorites"
	"github.com/jonor84/nodeimages/internal/favorites/service"
	"github.com/jonor84/nodeimages/pkg/middleware"
	"github.com/jonor84/nodeimages/web"
)

// byteSize accepts either a JSON string or a number and keeps it as a string.
type byteSize string

func (b *byteSize) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = byteSize(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = byteSize(n.String())
	return nil
}

type addRequest struct {
	Title    string   `json:"title"`
	ByteSize byteSize `json:"byteSize"`
	ImageURL string   `json:"imageUrl"`
}

// RegisterFavoriteRoutes mounts the favourites page and the add endpoint.
// rg is expected to sit behind middleware.RequireAuth.
func RegisterFavoriteRoutes(rg gin.IRoutes, svc service.Service) {
	rg.GET("/favourites", func(c *gin.Context) {
		rc := middleware.CurrentSession(c)
		list, err := svc.ListFavorites(c.Request.Context(), rc.UserID)
		if err != nil {
			web.ErrorPage(c, http.StatusInternalServerError, "Your favourites could not be loaded.")
			return
		}
		c.HTML(http.StatusOK, "favourites.html", gin.H{
			"Title":       "Favourites",
			"DisplayName": rc.DisplayName,
			"Favorites":   list,
		})
	})

	rg.POST("/add-to-favorites", func(c *gin.Context) {
		rc := middleware.CurrentSession(c)
		var req addRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errorMessage": "Invalid request body"})
			return
		}
		f := favorites.Favorite{Title: req.Title, ByteSize: string(req.ByteSize), URL: req.ImageURL}
		err := svc.AddFavorite(c.Request.Context(), rc.UserID, rc.DisplayName, f)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"successMessage": "Image added to favorites"})
		case errors.Is(err, favorites.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"errorMessage": "Image already in favorites"})
		case errors.Is(err, favorites.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"errorMessage": "A valid imageUrl is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": "Could not save favorite, please try again"})
		}
	})
}
