// Command favorites inspects and seeds the configured favorites backend.
//
//	favorites                      dump every record as JSON
//	favorites -user github|123     dump one user's entries
//	favorites -import old.json     merge a favorites document into the backend
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jonor84/nodeimages/internal/config"
	"github.com/jonor84/nodeimages/internal/favorites"
	"github.com/jonor84/nodeimages/internal/favorites/repository"
	"github.com/jonor84/nodeimages/internal/favorites/service"
	"github.com/jonor84/nodeimages/pkg/logger"
)

func main() {
	user := flag.String("user", "", "only print this user's favorites")
	importPath := flag.String("import", "", "favorites JSON document to merge into the backend")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	repo, closeFn, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("favorites storage: %v", err)
	}
	defer closeFn()
	svc := service.New(repo)

	if *importPath != "" {
		data, err := os.ReadFile(*importPath)
		if err != nil {
			logger.Fatalf("read %s: %v", *importPath, err)
		}
		added, skipped, err := importDocument(ctx, svc, data)
		if err != nil {
			logger.Fatalf("import: %v", err)
		}
		logger.Infof("imported %d favorites, skipped %d duplicates or invalid entries", added, skipped)
		return
	}

	if err := dump(ctx, svc, *user, os.Stdout); err != nil {
		logger.Fatalf("dump: %v", err)
	}
}

// importDocument adds every entry of doc through the service, so duplicates
// and invalid entries are skipped rather than failing the run. A record is
// created by its first add; records without entries import nothing, their
// name included.
func importDocument(ctx context.Context, svc service.Service, data []byte) (added, skipped int, err error) {
	doc, err := favorites.Decode(data)
	if err != nil {
		return 0, 0, err
	}
	for _, rec := range doc {
		for _, f := range rec.FavoriteImages {
			err := svc.AddFavorite(ctx, rec.User, rec.Name, f)
			switch {
			case err == nil:
				added++
			case errors.Is(err, favorites.ErrDuplicate), errors.Is(err, favorites.ErrInvalid):
				skipped++
			default:
				return added, skipped, err
			}
		}
	}
	return added, skipped, nil
}

func dump(ctx context.Context, svc service.Service, user string, w io.Writer) error {
	var v interface{}
	if user != "" {
		list, err := svc.ListFavorites(ctx, user)
		if err != nil {
			return err
		}
		v = list
	} else {
		recs, err := svc.Records(ctx)
		if err != nil {
			return err
		}
		v = recs
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
