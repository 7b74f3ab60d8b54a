package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonor84/nodeimages/internal/favorites"
	"github.com/jonor84/nodeimages/internal/favorites/repository"
	"github.com/jonor84/nodeimages/pkg/logger"
	"github.com/jonor84/nodeimages/pkg/metrics"
)

// Service defines the favorites operations used by the handler layer.
type Service interface {
	ListFavorites(ctx context.Context, userID string) ([]favorites.Favorite, error)
	AddFavorite(ctx context.Context, userID, displayName string, f favorites.Favorite) error
	Records(ctx context.Context) ([]favorites.UserFavorites, error)
}

// New returns a Service over the given repository.
func New(repo repository.Repository) Service {
	return &favoritesService{repo: repo, log: logger.Named("favorites")}
}

// NewMemoryService returns a Service backed by an in-memory document.
func NewMemoryService() Service {
	return New(repository.NewDocumentRepo(repository.NewMemoryStore()))
}

type favoritesService struct {
	repo repository.Repository
	log  *logger.Logger
}

func (s *favoritesService) ListFavorites(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		s.log.Errorf("list favorites for %s: %v", userID, err)
		return nil, err
	}
	return list, nil
}

func (s *favoritesService) AddFavorite(ctx context.Context, userID, displayName string, f favorites.Favorite) error {
	f.Title = strings.TrimSpace(f.Title)
	f.URL = strings.TrimSpace(f.URL)
	if err := validate(userID, f); err != nil {
		metrics.FavoritesWrites.WithLabelValues("invalid").Inc()
		return err
	}

	err := s.repo.Add(ctx, userID, displayName, f)
	switch {
	case err == nil:
		metrics.FavoritesWrites.WithLabelValues("added").Inc()
		s.log.Debugf("added %s for %s", f.URL, userID)
		return nil
	case errors.Is(err, favorites.ErrDuplicate):
		metrics.FavoritesWrites.WithLabelValues("duplicate").Inc()
		return err
	default:
		metrics.FavoritesWrites.WithLabelValues("error").Inc()
		s.log.Errorf("add favorite for %s: %v", userID, err)
		return err
	}
}

func (s *favoritesService) Records(ctx context.Context) ([]favorites.UserFavorites, error) {
	return s.repo.Records(ctx)
}

func validate(userID string, f favorites.Favorite) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user", favorites.ErrInvalid)
	}
	if f.URL == "" {
		return fmt.Errorf("%w: imageUrl is required", favorites.ErrInvalid)
	}
	u, err := url.Parse(f.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: imageUrl must be an absolute http(s) url", favorites.ErrInvalid)
	}
	return nil
}
