package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jonor84/nodeimages/internal/config"
	"github.com/jonor84/nodeimages/internal/database"
	"github.com/jonor84/nodeimages/internal/storage"
	"github.com/jonor84/nodeimages/pkg/logger"
)

// Collection holds one record per user when the mongo backend is selected.
const Collection = "favorites"

// Open builds the repository selected by cfg.Favorites.Backend. The returned
// func releases whatever connection the backend opened.
func Open(ctx context.Context, cfg *config.Config) (Repository, func(), error) {
	noop := func() {}
	log := logger.Named("favorites")

	switch cfg.Favorites.Backend {
	case "", "file":
		log.Infof("using file backend at %s", cfg.Favorites.Path)
		return NewDocumentRepo(NewFileStore(cfg.Favorites.Path)), noop, nil
	case "memory":
		log.Warnf("using in-memory backend; favorites are lost on restart")
		return NewDocumentRepo(NewMemoryStore()), noop, nil
	case "minio":
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return nil, noop, fmt.Errorf("favorites minio backend: %w", err)
		}
		log.Infof("using minio backend at %s/%s", st.Bucket(), cfg.Favorites.ObjectKey)
		return NewDocumentRepo(NewObjectStore(st, cfg.Favorites.ObjectKey)), noop, nil
	case "mongo":
		if cfg.MongoDB.URI == "" {
			return nil, noop, fmt.Errorf("favorites mongo backend: MONGODB_URI is not set")
		}
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, 2*time.Second)
		if err != nil {
			return nil, noop, fmt.Errorf("favorites mongo backend: %w", err)
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		repo := NewMongoRepo(client.Database(cfg.MongoDB.Database).Collection(Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, noop, fmt.Errorf("favorites mongo index: %w", err)
		}
		log.Infof("using mongo backend %s.%s", cfg.MongoDB.Database, Collection)
		return repo, closeFn, nil
	default:
		return nil, noop, fmt.Errorf("unknown FAVORITES_BACKEND %q", cfg.Favorites.Backend)
	}
}
