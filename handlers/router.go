package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/internal/favorites/handler"
	favservice "github.com/jonor84/nodeimages/internal/favorites/service"
	"github.com/jonor84/nodeimages/internal/identity"
	"github.com/jonor84/nodeimages/internal/search"
	"github.com/jonor84/nodeimages/internal/sessions"
	"github.com/jonor84/nodeimages/pkg/middleware"
)

// Authenticator is the identity provider login flow.
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (identity.Claims, error)
	LogoutURL(returnTo string) string
}

// SessionStore creates and ends server-side sessions.
type SessionStore interface {
	Create(ctx context.Context, id identity.Identity) (*sessions.Session, error)
	Get(ctx context.Context, id string) (*sessions.Session, error)
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

// Searcher runs image searches.
type Searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

// Deps carries everything the route layer needs. Auth may be nil when the
// identity provider is not configured; /login then answers 503.
type Deps struct {
	Auth            Authenticator
	Sessions        SessionStore
	States          sessions.StateStore
	Favorites       favservice.Service
	Search          Searcher
	Cookie          middleware.CookieOptions
	LogoutReturnURL string
	// RateLimit, when set, runs after session resolution so it can key by user.
	RateLimit gin.HandlerFunc
}

// Register mounts the application routes on r. Routes registered on r
// before this call do not pass through the session middleware.
func Register(r *gin.Engine, d Deps) {
	r.Use(middleware.Session(d.Sessions, d.Cookie))
	if d.RateLimit != nil {
		r.Use(d.RateLimit)
	}
	r.NoRoute(NotFound)

	pages := &PageHandler{}
	auth := NewAuthHandler(d.Auth, d.Sessions, d.States, d.Cookie, d.LogoutReturnURL)
	sh := NewSearchHandler(d.Search)

	r.GET("/", pages.Index)
	auth.Register(r)

	protected := r.Group("/", middleware.RequireAuth())
	protected.GET("/dashboard", pages.Dashboard)
	protected.GET("/search", pages.SearchForm)
	protected.POST("/search", sh.Search)
	protected.GET("/user", auth.User)
	handler.RegisterFavoriteRoutes(protected, d.Favorites)
}
