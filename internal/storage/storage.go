package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key has no object behind it.
var ErrNotFound = errors.New("object not found")

// Storage is the artifact storage backend for export files and logo images.
type Storage interface {
	// Save writes the reader's contents under key and returns the byte count.
	Save(ctx context.Context, key string, reader io.Reader) (int64, error)

	// Open returns a reader over the object at key, or ErrNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}
