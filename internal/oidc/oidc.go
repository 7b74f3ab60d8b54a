package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jonor84/nodeimages/internal/config"
	"github.com/jonor84/nodeimages/internal/identity"
	"golang.org/x/oauth2"
)

// Token is a verified token that can expose its claims.
// It is satisfied by *oidc.IDToken and by test fakes.
type Token interface {
	Claims(v interface{}) error
}

// Verifier checks a raw ID token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// ErrNoIDToken is returned when the token response carries no id_token.
var ErrNoIDToken = errors.New("token response has no id_token")

// Scopes requested at login.
var Scopes = []string{oidc.ScopeOpenID, "email", "profile"}

// idTokenVerifier adapts *oidc.IDTokenVerifier to Verifier.
type idTokenVerifier struct {
	v *oidc.IDTokenVerifier
}

func (v *idTokenVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	t, err := v.v.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Authenticator runs the authorization code flow against the identity provider.
type Authenticator struct {
	oauth          *oauth2.Config
	verifier       Verifier
	logoutEndpoint string
}

// New builds an Authenticator from explicit parts. logoutEndpoint may be empty.
func New(oauth *oauth2.Config, verifier Verifier, logoutEndpoint string) *Authenticator {
	return &Authenticator{oauth: oauth, verifier: verifier, logoutEndpoint: logoutEndpoint}
}

// NewAuthenticator discovers the provider configured in cfg. With
// cfg.AllowInsecureToken set, ID token signatures are not checked (integration mode only).
func NewAuthenticator(ctx context.Context, cfg config.AuthConfig) (*Authenticator, error) {
	issuer := cfg.Issuer()
	if issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("identity provider not configured")
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	var ver Verifier = &idTokenVerifier{v: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})}
	if cfg.AllowInsecureToken {
		ver = NewInsecureVerifier()
	}

	// Auth0 does not advertise end_session_endpoint; fall back to its /v2/logout.
	var meta struct {
		EndSession string `json:"end_session_endpoint"`
	}
	_ = provider.Claims(&meta)
	logout := meta.EndSession
	if logout == "" {
		logout = strings.TrimRight(issuer, "/") + "/v2/logout"
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       Scopes,
	}
	return New(oc, ver, logout), nil
}

// AuthCodeURL returns the provider URL the browser is sent to.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for verified ID token claims.
func (a *Authenticator) Exchange(ctx context.Context, code string) (identity.Claims, error) {
	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return identity.Claims{}, fmt.Errorf("exchanging code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return identity.Claims{}, ErrNoIDToken
	}
	idt, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return identity.Claims{}, fmt.Errorf("verifying id_token: %w", err)
	}
	var claims identity.Claims
	if err := idt.Claims(&claims); err != nil {
		return identity.Claims{}, fmt.Errorf("decoding claims: %w", err)
	}
	return claims, nil
}

// LogoutURL returns the provider logout URL that sends the browser back to
// returnTo, or returnTo itself when no logout endpoint is known.
func (a *Authenticator) LogoutURL(returnTo string) string {
	if a.logoutEndpoint == "" {
		return returnTo
	}
	u, err := url.Parse(a.logoutEndpoint)
	if err != nil {
		return returnTo
	}
	q := u.Query()
	q.Set("client_id", a.oauth.ClientID)
	q.Set("returnTo", returnTo)
	q.Set("post_logout_redirect_uri", returnTo)
	u.RawQuery = q.Encode()
	return u.String()
}
