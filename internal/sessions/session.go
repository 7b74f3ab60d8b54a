package sessions

import "time"

// Session is the server-side record behind the session cookie.
type Session struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Provider    string    `bson:"provider" json:"provider"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt   time.Time `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// RequestContext is the per-request view of the caller. Handlers receive it
// explicitly instead of reading session state themselves.
type RequestContext struct {
	Authenticated bool
	SessionID     string
	UserID        string
	DisplayName   string
}

// Anonymous is the RequestContext of a caller without a session.
var Anonymous = RequestContext{}

// Context builds the RequestContext for an active session.
func (s *Session) Context() RequestContext {
	return RequestContext{Authenticated: true, SessionID: s.ID, UserID: s.UserID, DisplayName: s.DisplayName}
}
