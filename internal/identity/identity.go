// Package identity turns provider-specific login profiles into the
// (id, display name) pair the rest of the application works with.
//
// The provider is read from the prefix of the OIDC subject, which Auth0
// formats as "<connection>|<provider user id>", e.g. "google-oauth2|1093...".
package identity

import "strings"

// Sentinels used when a profile cannot be mapped.
const (
	UnknownName = "NONAME"
	UnknownID   = "UNKNOWN"
)

// Provider enumerates the identity providers with a known profile shape.
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderGoogle
	ProviderGitHub
)

var providerTags = map[Provider]string{
	ProviderGoogle: "google-oauth2",
	ProviderGitHub: "github",
}

// ParseProvider maps a provider tag to a Provider.
func ParseProvider(tag string) Provider {
	for p, t := range providerTags {
		if t == tag {
			return p
		}
	}
	return ProviderUnknown
}

func (p Provider) String() string {
	if t, ok := providerTags[p]; ok {
		return t
	}
	return "unknown"
}

// Identity is the normalized user carried in the session.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Provider    string `json:"provider"`
}

// Claims are the ID token claims the adapter reads.
type Claims struct {
	Subject   string `json:"sub"`
	GivenName string `json:"given_name"`
	Nickname  string `json:"nickname"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// ProviderTag returns the part of the subject before "|", or "" when the
// subject carries no provider prefix.
func (c Claims) ProviderTag() string {
	tag, _, ok := strings.Cut(c.Subject, "|")
	if !ok {
		return ""
	}
	return tag
}

// Profile is a provider-specific view of the claims.
type Profile interface {
	Provider() Provider
	Identity() Identity
}

type GoogleProfile struct {
	Subject   string
	GivenName string
}

func (GoogleProfile) Provider() Provider { return ProviderGoogle }

func (p GoogleProfile) Identity() Identity {
	return Identity{ID: orDefault(p.Subject, UnknownID), DisplayName: orDefault(p.GivenName, UnknownName), Provider: ProviderGoogle.String()}
}

type GitHubProfile struct {
	Subject  string
	Nickname string
}

func (GitHubProfile) Provider() Provider { return ProviderGitHub }

func (p GitHubProfile) Identity() Identity {
	return Identity{ID: orDefault(p.Subject, UnknownID), DisplayName: orDefault(p.Nickname, UnknownName), Provider: ProviderGitHub.String()}
}

// UnknownProfile is any provider without a mapping. It always yields the
// sentinel identity.
type UnknownProfile struct {
	Tag string
}

func (UnknownProfile) Provider() Provider { return ProviderUnknown }

func (UnknownProfile) Identity() Identity {
	return Identity{ID: UnknownID, DisplayName: UnknownName, Provider: ProviderUnknown.String()}
}

// ProfileFromClaims selects the profile variant for the claims' provider.
func ProfileFromClaims(c Claims) Profile {
	tag := c.ProviderTag()
	switch ParseProvider(tag) {
	case ProviderGoogle:
		return GoogleProfile{Subject: c.Subject, GivenName: c.GivenName}
	case ProviderGitHub:
		return GitHubProfile{Subject: c.Subject, Nickname: c.Nickname}
	default:
		return UnknownProfile{Tag: tag}
	}
}

// Normalize returns the identity for a profile.
func Normalize(p Profile) Identity {
	if p == nil {
		return UnknownProfile{}.Identity()
	}
	return p.Identity()
}

// FromClaims is ProfileFromClaims followed by Normalize.
func FromClaims(c Claims) Identity {
	return Normalize(ProfileFromClaims(c))
}

func orDefault(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
