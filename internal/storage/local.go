package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var _ ObjectStore = (*LocalStore)(nil)

// LocalStore keeps videos on the local filesystem. It stands in for a cloud
// bucket during development.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *LocalStore) ResolveURL(ctx context.Context, key string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return "file://" + abs, nil
}
