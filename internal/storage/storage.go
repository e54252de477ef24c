package storage

import (
	"context"
	"io"
)

// ObjectStore persists rendered videos and resolves a URL viewers can reach
// them at.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	ResolveURL(ctx context.Context, key string) (string, error)
}
