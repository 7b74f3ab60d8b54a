package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonor84/nodeimages/internal/favorites"
)

// Repository is the favorites persistence contract used by the service layer.
type Repository interface {
	List(ctx context.Context, userID string) ([]favorites.Favorite, error)
	Add(ctx context.Context, userID, displayName string, f favorites.Favorite) error
	Records(ctx context.Context) ([]favorites.UserFavorites, error)
}

// DocumentStore loads and saves the raw favorites document. Load returns
// (nil, nil) when nothing has been stored yet.
type DocumentStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// DocumentRepo keeps every user's favorites in one document held by a
// DocumentStore. Load-modify-save runs under a single mutex so concurrent
// adds never overwrite each other.
type DocumentRepo struct {
	mu    sync.RWMutex
	store DocumentStore
}

func NewDocumentRepo(store DocumentStore) *DocumentRepo {
	return &DocumentRepo{store: store}
}

func (r *DocumentRepo) load(ctx context.Context) (favorites.Document, error) {
	data, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", favorites.ErrRead, err)
	}
	return favorites.Decode(data)
}

func (r *DocumentRepo) List(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Favorites(userID), nil
}

func (r *DocumentRepo) Add(ctx context.Context, userID, displayName string, f favorites.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	if err := doc.Add(userID, displayName, f); err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", favorites.ErrWrite, err)
	}
	if err := r.store.Save(ctx, data); err != nil {
		if errors.Is(err, favorites.ErrWrite) {
			return err
		}
		return fmt.Errorf("%w: %v", favorites.ErrWrite, err)
	}
	return nil
}

func (r *DocumentRepo) Records(ctx context.Context) ([]favorites.UserFavorites, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return []favorites.UserFavorites(doc), nil
}
