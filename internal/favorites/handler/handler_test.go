package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/internal/favorites"
	"github.com/jonor84/nodeimages/internal/favorites/service"
	"github.com/jonor84/nodeimages/internal/sessions"
	"github.com/jonor84/nodeimages/pkg/middleware"
	"github.com/jonor84/nodeimages/web"
	"github.com/stretchr/testify/require"
)

type brokenService struct{}

func (brokenService) ListFavorites(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	return nil, favorites.ErrRead
}
func (brokenService) AddFavorite(ctx context.Context, userID, displayName string, f favorites.Favorite) error {
	return favorites.ErrWrite
}
func (brokenService) Records(ctx context.Context) ([]favorites.UserFavorites, error) {
	return nil, favorites.ErrRead
}

func newRouter(svc service.Service) *gin.Engine {
	g := gin.New()
	g.SetHTMLTemplate(web.Templates())
	g.Use(func(c *gin.Context) {
		middleware.SetRequestContext(c, sessions.RequestContext{Authenticated: true, SessionID: "s1", UserID: "github|1", DisplayName: "octo"})
		c.Next()
	})
	RegisterFavoriteRoutes(g, svc)
	return g
}

func post(g *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/add-to-favorites", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	return w
}

func TestFavoritesHandler_AddAndList(t *testing.T) {
	svc := service.NewMemoryService()
	g := newRouter(svc)

	w := post(g, `{"title":"Red fox","byteSize":"2048","imageUrl":"https://images.unsplash.com/fox"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"successMessage":"Image added to favorites"}`, w.Body.String())

	// numeric byteSize is accepted too
	w = post(g, `{"title":"Owl","byteSize":512,"imageUrl":"https://images.unsplash.com/owl"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = post(g, `{"title":"Red fox","byteSize":"2048","imageUrl":"https://images.unsplash.com/fox"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "errorMessage")

	list, err := svc.ListFavorites(context.Background(), "github|1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "512", list[1].ByteSize)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favourites", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Red fox")
	require.Contains(t, w.Body.String(), "octo")
}

func TestFavoritesHandler_BadRequests(t *testing.T) {
	g := newRouter(service.NewMemoryService())

	w := post(g, `{"title":`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = post(g, `{"title":"no url"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "errorMessage")
}

func TestFavoritesHandler_StorageFailures(t *testing.T) {
	g := newRouter(brokenService{})

	w := post(g, `{"title":"x","byteSize":"1","imageUrl":"https://images.unsplash.com/x"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "errorMessage")

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favourites", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "could not be loaded")
}

func TestFavoritesHandler_PageEscapesDisplayName(t *testing.T) {
	g := gin.New()
	g.SetHTMLTemplate(web.Templates())
	g.Use(func(c *gin.Context) {
		middleware.SetRequestContext(c, sessions.RequestContext{Authenticated: true, SessionID: "s1", UserID: "github|2", DisplayName: "<b>O'Neil</b>"})
		c.Next()
	})
	RegisterFavoriteRoutes(g, service.NewMemoryService())

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/favourites", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "&lt;b&gt;O&#39;Neil&lt;/b&gt;'s favourites")
	require.NotContains(t, w.Body.String(), "<b>O'Neil</b>")
}
