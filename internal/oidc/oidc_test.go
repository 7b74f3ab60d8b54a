package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jonor84/nodeimages/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeIDToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	return "hdr." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func newTokenServer(t *testing.T, body map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAuthenticator(srv *httptest.Server, logout string) *Authenticator {
	oc := &oauth2.Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/oauth/token"},
		Scopes:       Scopes,
	}
	return New(oc, NewInsecureVerifier(), logout)
}

func TestExchange_ReturnsClaims(t *testing.T) {
	idToken := fakeIDToken(t, map[string]interface{}{"sub": "github|42", "nickname": "octo"})
	srv := newTokenServer(t, map[string]string{"access_token": "at", "token_type": "Bearer", "id_token": idToken})
	a := newTestAuthenticator(srv, "")

	claims, err := a.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, identity.Claims{Subject: "github|42", Nickname: "octo"}, claims)
}

func TestExchange_BadCode(t *testing.T) {
	srv := newTokenServer(t, nil)
	a := newTestAuthenticator(srv, "")

	_, err := a.Exchange(context.Background(), "bad")
	require.Error(t, err)
}

func TestExchange_MissingIDToken(t *testing.T) {
	srv := newTokenServer(t, map[string]string{"access_token": "at", "token_type": "Bearer"})
	a := newTestAuthenticator(srv, "")

	_, err := a.Exchange(context.Background(), "good-code")
	require.ErrorIs(t, err, ErrNoIDToken)
}

func TestAuthCodeURL_IncludesStateAndScopes(t *testing.T) {
	srv := newTokenServer(t, nil)
	a := newTestAuthenticator(srv, "")

	u, err := url.Parse(a.AuthCodeURL("xyz"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:3000/callback", q.Get("redirect_uri"))
}

func TestLogoutURL(t *testing.T) {
	srv := newTokenServer(t, nil)

	a := newTestAuthenticator(srv, "https://tenant.auth0.com/v2/logout")
	u, err := url.Parse(a.LogoutURL("http://localhost:3000/"))
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", u.Path)
	assert.Equal(t, "cid", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:3000/", u.Query().Get("returnTo"))

	noLogout := newTestAuthenticator(srv, "")
	assert.Equal(t, "/", noLogout.LogoutURL("/"))
}

func TestInsecureVerifier(t *testing.T) {
	v := NewInsecureVerifier()
	tok, err := v.Verify(context.Background(), fakeIDToken(t, map[string]interface{}{"sub": "google-oauth2|1", "given_name": "Ada"}))
	require.NoError(t, err)
	var c identity.Claims
	require.NoError(t, tok.Claims(&c))
	assert.Equal(t, "Ada", c.GivenName)

	_, err = v.Verify(context.Background(), "garbage")
	require.Error(t, err)
	_, err = v.Verify(context.Background(), "a.bm90LWpzb24.c")
	require.Error(t, err)
}
