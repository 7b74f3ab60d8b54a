package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonor84/nodeimages/internal/sessions"
	"github.com/jonor84/nodeimages/internal/tokens"
	"github.com/jonor84/nodeimages/pkg/logger"
)

const requestContextKey = "requestContext"

// SessionReader resolves a session id to its live session, or nil.
type SessionReader interface {
	Get(ctx context.Context, id string) (*sessions.Session, error)
}

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name   string
	Secret string
	Secure bool
}

// Session resolves the session cookie into a sessions.RequestContext and
// stores it on the gin context. It never aborts: a missing, tampered or
// expired cookie yields the anonymous context and the cookie is cleared.
func Session(store SessionReader, opts CookieOptions) gin.HandlerFunc {
	log := logger.Named("session")
	return func(c *gin.Context) {
		rc := sessions.Anonymous
		raw, err := c.Cookie(opts.Name)
		if err == nil && raw != "" {
			sid, perr := tokens.ParseSessionToken(opts.Secret, raw)
			switch {
			case perr != nil:
				log.Debugf("rejecting session cookie: %v", perr)
				ClearSessionCookie(c, opts)
			default:
				sess, gerr := store.Get(c.Request.Context(), sid)
				if gerr != nil {
					log.Warnf("session lookup failed: %v", gerr)
				} else if sess == nil {
					ClearSessionCookie(c, opts)
				} else {
					rc = sess.Context()
				}
			}
		}
		SetRequestContext(c, rc)
		c.Next()
	}
}

// SetRequestContext stores rc for CurrentSession.
func SetRequestContext(c *gin.Context, rc sessions.RequestContext) {
	c.Set(requestContextKey, rc)
}

// CurrentSession returns the RequestContext set by Session, or the
// anonymous context when the middleware did not run.
func CurrentSession(c *gin.Context) sessions.RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(sessions.RequestContext); ok {
			return rc
		}
	}
	return sessions.Anonymous
}

// RequireAuth redirects anonymous callers to the landing page with 302,
// whatever the request method.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetSessionCookie writes the signed session token as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, opts CookieOptions, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, token, maxAge, "/", "", opts.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.Name, "", -1, "/", "", opts.Secure, true)
}
