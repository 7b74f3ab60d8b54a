package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonor84/nodeimages/internal/identity"
)

var ErrEmptySessionID = errors.New("empty session id")

// Service wraps repository operations with session lifetime rules
type Service struct {
	repo Repository
	ttl  time.Duration
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl}
}

// TTL is the lifetime given to new sessions.
func (s *Service) TTL() time.Duration { return s.ttl }

// Create stores a new session for the identity and returns it.
func (s *Service) Create(ctx context.Context, id identity.Identity) (*Session, error) {
	sid, err := newID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &Session{
		ID:          sid,
		UserID:      id.ID,
		DisplayName: id.DisplayName,
		Provider:    id.Provider,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session if it exists and has not expired, else (nil, nil).
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(time.Now().UTC()) {
		_ = s.repo.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

// Delete ends the session. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptySessionID
	}
	return s.repo.Delete(ctx, id)
}

func newID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
