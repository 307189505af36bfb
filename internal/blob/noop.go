package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

// NoOpStore discards uploads. Used when BLOB_PROVIDER=none.
type NoOpStore struct{}

func NewNoOpStore() *NoOpStore { return &NoOpStore{} }

func (NoOpStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	return nil
}

func (NoOpStore) Get(ctx context.Context, key string) (Object, error) {
	return Object{}, ErrNotFound
}
