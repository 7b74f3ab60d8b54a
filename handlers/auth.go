package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonor84/nodeimages/internal/identity"
	"github.com/jonor84/nodeimages/internal/sessions"
	"github.com/jonor84/nodeimages/internal/tokens"
	"github.com/jonor84/nodeimages/pkg/logger"
	"github.com/jonor84/nodeimages/pkg/metrics"
	"github.com/jonor84/nodeimages/pkg/middleware"
	"github.com/jonor84/nodeimages/web"
)

// stateCookie binds the OAuth state to the browser that started the login.
const stateCookie = "oauth_state"

// AuthHandler holds dependencies
type AuthHandler struct {
	auth            Authenticator
	sessions        SessionStore
	states          sessions.StateStore
	cookie          middleware.CookieOptions
	logoutReturnURL string
	log             *logger.Logger
}

func NewAuthHandler(a Authenticator, s SessionStore, st sessions.StateStore, cookie middleware.CookieOptions, logoutReturnURL string) *AuthHandler {
	return &AuthHandler{auth: a, sessions: s, states: st, cookie: cookie, logoutReturnURL: logoutReturnURL, log: logger.Named("auth")}
}

// Register the public login routes.
func (h *AuthHandler) Register(r gin.IRoutes) {
	r.GET("/login", h.Login)
	r.GET("/callback", h.Callback)
	r.GET("/logout", h.Logout)
}

// Login issues a single-use state and redirects to the identity provider.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.auth == nil {
		web.ErrorPage(c, http.StatusServiceUnavailable, "Login is not configured.")
		return
	}
	state, err := randomState()
	if err != nil {
		h.log.Errorf("state generation failed: %v", err)
		web.ErrorPage(c, http.StatusInternalServerError, "")
		return
	}
	if err := h.states.Save(c.Request.Context(), state, sessions.StateTTL); err != nil {
		h.log.Errorf("state save failed: %v", err)
		web.ErrorPage(c, http.StatusInternalServerError, "")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(sessions.StateTTL.Seconds()), "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, h.auth.AuthCodeURL(state))
}

// Callback completes the authorization code flow. Every failure sends the
// browser back to /login.
func (h *AuthHandler) Callback(c *gin.Context) {
	if h.auth == nil {
		web.ErrorPage(c, http.StatusServiceUnavailable, "Login is not configured.")
		return
	}
	ctx := c.Request.Context()
	fail := func(reason string, args ...interface{}) {
		h.log.Warnf("login failed: "+reason, args...)
		metrics.Logins.WithLabelValues("unknown", "failure").Inc()
		c.Redirect(http.StatusFound, "/login")
	}

	state := c.Query("state")
	cookieState, _ := c.Cookie(stateCookie)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/", "", h.cookie.Secure, true)

	if e := c.Query("error"); e != "" {
		fail("provider returned %s: %s", e, c.Query("error_description"))
		return
	}
	if state == "" || state != cookieState {
		fail("state mismatch")
		return
	}
	ok, err := h.states.Consume(ctx, state)
	if err != nil || !ok {
		fail("state unknown or already used (err=%v)", err)
		return
	}
	code := c.Query("code")
	if code == "" {
		fail("missing code")
		return
	}
	claims, err := h.auth.Exchange(ctx, code)
	if err != nil {
		fail("exchange: %v", err)
		return
	}

	id := identity.FromClaims(claims)
	// a new login replaces whatever session the browser had
	if prev := middleware.CurrentSession(c); prev.Authenticated {
		_ = h.sessions.Delete(ctx, prev.SessionID)
	}
	sess, err := h.sessions.Create(ctx, id)
	if err != nil {
		h.log.Errorf("session create failed for %s: %v", id.ID, err)
		web.ErrorPage(c, http.StatusInternalServerError, "")
		return
	}
	tok, err := tokens.GenerateSessionToken(h.cookie.Secret, sess.ID, h.sessions.TTL())
	if err != nil {
		h.log.Errorf("session token failed: %v", err)
		web.ErrorPage(c, http.StatusInternalServerError, "")
		return
	}
	middleware.SetSessionCookie(c, h.cookie, tok, int(h.sessions.TTL().Seconds()))
	metrics.Logins.WithLabelValues(id.Provider, "success").Inc()
	h.log.Infof("user %s (%s) logged in", id.ID, id.Provider)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout ends the local session, then the provider session when one is configured.
func (h *AuthHandler) Logout(c *gin.Context) {
	if rc := middleware.CurrentSession(c); rc.Authenticated {
		if err := h.sessions.Delete(c.Request.Context(), rc.SessionID); err != nil {
			h.log.Warnf("session delete failed: %v", err)
		}
	}
	middleware.ClearSessionCookie(c, h.cookie)
	if h.auth == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.Redirect(http.StatusFound, h.auth.LogoutURL(h.logoutReturnURL))
}

// User returns the session identity.
func (h *AuthHandler) User(c *gin.Context) {
	rc := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, gin.H{"id": rc.UserID, "displayName": rc.DisplayName})
}

func randomState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
