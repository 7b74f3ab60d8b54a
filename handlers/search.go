package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/internal/search"
	"github.com/jonor84/nodeimages/pkg/middleware"
)

type searchRequest struct {
	Query string `json:"Query" form:"Query"`
}

// searchResponse keeps the field names the search page script reads.
// ElapsedTime is in milliseconds.
type searchResponse struct {
	UserID        string         `json:"userId"`
	SearchResults []search.Image `json:"searchResults"`
	ElapsedTime   int64          `json:"elapsedTime"`
	Suggestions   []string       `json:"suggestions"`
	ErrorMessage  string         `json:"errorMessage"`
	IsMisspelled  bool           `json:"isMisspelled"`
	Query         string         `json:"Query"`
}

type SearchHandler struct {
	searcher Searcher
}

func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{searcher: s}
}

// Search answers POST /search. Upstream 429 is passed through as 429.
func (h *SearchHandler) Search(c *gin.Context) {
	rc := middleware.CurrentSession(c)
	resp := searchResponse{UserID: rc.UserID, SearchResults: []search.Image{}, Suggestions: []string{}}

	var req searchRequest
	if err := c.ShouldBind(&req); err != nil {
		resp.ErrorMessage = "Invalid request body"
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	resp.Query = req.Query

	res, err := h.searcher.Search(c.Request.Context(), req.Query)
	resp.ElapsedTime = res.Elapsed.Milliseconds()
	if err != nil {
		switch {
		case errors.Is(err, search.ErrEmptyQuery):
			resp.ErrorMessage = "Please enter a search term"
			c.JSON(http.StatusBadRequest, resp)
		case errors.Is(err, search.ErrRateLimited):
			resp.ErrorMessage = "Too many searches right now, please try again in a moment"
			c.JSON(http.StatusTooManyRequests, resp)
		default:
			resp.ErrorMessage = "An internal error occurred while searching"
			c.JSON(http.StatusInternalServerError, resp)
		}
		return
	}

	if res.Images != nil {
		resp.SearchResults = res.Images
	}
	if res.Suggestions != nil {
		resp.Suggestions = res.Suggestions
	}
	resp.IsMisspelled = res.Misspelled
	resp.Query = res.Query
	c.JSON(http.StatusOK, resp)
}
