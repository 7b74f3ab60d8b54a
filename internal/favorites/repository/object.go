package repository

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/jonor84/nodeimages/internal/storage"
)

// ObjectClient is the subset of storage.MinIOStorage used by ObjectStore.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectStore keeps the document as a single object. A PutObject replaces
// the object whole, so readers never see a partial document.
type ObjectStore struct {
	client ObjectClient
	key    string
}

func NewObjectStore(client ObjectClient, key string) *ObjectStore {
	if key == "" {
		key = "favorites.json"
	}
	return &ObjectStore{client: client, key: key}
}

func (s *ObjectStore) Load(ctx context.Context) ([]byte, error) {
	rc, err := s.client.DownloadFile(ctx, s.key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *ObjectStore) Save(ctx context.Context, data []byte) error {
	return s.client.UploadFile(ctx, s.key, bytes.NewReader(data), int64(len(data)), "application/json")
}
