package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	favservice "github.com/jonor84/nodeimages/internal/favorites/service"
	"github.com/jonor84/nodeimages/internal/identity"
	"github.com/jonor84/nodeimages/internal/search"
	"github.com/jonor84/nodeimages/internal/sessions"
	"github.com/jonor84/nodeimages/pkg/middleware"
	"github.com/jonor84/nodeimages/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth accepts the code "good" for the configured claims.
type fakeAuth struct {
	claims identity.Claims
}

func (f *fakeAuth) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeAuth) Exchange(ctx context.Context, code string) (identity.Claims, error) {
	if code != "good" {
		return identity.Claims{}, errors.New("invalid_grant")
	}
	return f.claims, nil
}

func (f *fakeAuth) LogoutURL(returnTo string) string {
	return "https://idp.example.com/v2/logout?returnTo=" + url.QueryEscape(returnTo)
}

type fakeSearcher struct {
	result search.Result
	err    error
	calls  int
}

func (f *fakeSearcher) Search(ctx context.Context, q string) (search.Result, error) {
	f.calls++
	r := f.result
	if r.Query == "" {
		r.Query = q
	}
	return r, f.err
}

type testApp struct {
	router   *gin.Engine
	sessions *sessions.Service
	auth     *fakeAuth
	searcher *fakeSearcher
	fav      favservice.Service
}

var testCookie = middleware.CookieOptions{Name: "nodeimages_session", Secret: "handler-test-secret"}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{
		sessions: sessions.NewService(sessions.NewMemoryRepository(), time.Hour),
		auth:     &fakeAuth{claims: identity.Claims{Subject: "google-oauth2|123", GivenName: "Ada"}},
		searcher: &fakeSearcher{},
		fav:      favservice.NewMemoryService(),
	}
	r := gin.New()
	r.Use(Recovery())
	r.SetHTMLTemplate(web.Templates())
	Register(r, Deps{
		Auth:            app.auth,
		Sessions:        app.sessions,
		States:          sessions.NewMemoryStateStore(),
		Favorites:       app.fav,
		Search:          app.searcher,
		Cookie:          testCookie,
		LogoutReturnURL: "http://localhost:3000/",
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	app.router = r
	return app
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login runs /login and /callback and returns the session cookie.
func (a *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := a.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	sc := findCookie(w, stateCookie)
	require.NotNil(t, sc)
	require.Equal(t, state, sc.Value)

	w = a.do(httptest.NewRequest(http.MethodGet, "/callback?code=good&state="+state, nil), sc)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
	sess := findCookie(w, testCookie.Name)
	require.NotNil(t, sess)
	require.True(t, sess.HttpOnly)
	return sess
}

func TestLoginCallbackCreatesSession(t *testing.T) {
	app := newTestApp(t)
	sess := app.login(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sess)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Welcome, Ada")

	w = app.do(httptest.NewRequest(http.MethodGet, "/user", nil), sess)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":"google-oauth2|123","displayName":"Ada"}`, w.Body.String())

	w = app.do(httptest.NewRequest(http.MethodGet, "/", nil), sess)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLoginUnknownProviderGetsSentinels(t *testing.T) {
	app := newTestApp(t)
	app.auth.claims = identity.Claims{Subject: "twitter|9", Name: "Tweety"}
	sess := app.login(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/user", nil), sess)
	require.JSONEq(t, `{"id":"UNKNOWN","displayName":"NONAME"}`, w.Body.String())
}

func TestCallbackFailuresRedirectToLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	sc := findCookie(w, stateCookie)
	require.NotNil(t, sc)
	state := sc.Value

	cases := []struct {
		name    string
		target  string
		cookies []*http.Cookie
	}{
		{"provider error", "/callback?error=access_denied&state=" + state, []*http.Cookie{sc}},
		{"missing state cookie", "/callback?code=good&state=" + state, nil},
		{"state mismatch", "/callback?code=good&state=other", []*http.Cookie{sc}},
	}
	for _, tc := range cases {
		w := app.do(httptest.NewRequest(http.MethodGet, tc.target, nil), tc.cookies...)
		assert.Equal(t, http.StatusFound, w.Code, tc.name)
		assert.Equal(t, "/login", w.Header().Get("Location"), tc.name)
		assert.Nil(t, findCookie(w, testCookie.Name), tc.name)
	}

	// bad code consumes the state
	w = app.do(httptest.NewRequest(http.MethodGet, "/callback?code=bad&state="+state, nil), sc)
	require.Equal(t, "/login", w.Header().Get("Location"))

	// replaying the state with a good code is rejected
	w = app.do(httptest.NewRequest(http.MethodGet, "/callback?code=good&state="+state, nil), sc)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.Nil(t, findCookie(w, testCookie.Name))
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	sess := app.login(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/logout", nil), sess)
	require.Equal(t, http.StatusFound, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://idp.example.com/v2/logout?returnTo="))
	cleared := findCookie(w, testCookie.Name)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)

	// the old cookie no longer maps to a session
	w = app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), sess)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func TestLoginWithoutProvider(t *testing.T) {
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	Register(r, Deps{
		Sessions:  sessions.NewService(sessions.NewMemoryRepository(), time.Hour),
		States:    sessions.NewMemoryStateStore(),
		Favorites: favservice.NewMemoryService(),
		Search:    &fakeSearcher{},
		Cookie:    testCookie,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}
