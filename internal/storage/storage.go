// Package storage is the persisted key-value substrate behind the account and
// post stores. Every key holds one UTF-8 JSON document that is always written
// whole.
package storage

import (
	"context"
	"errors"
)

// Keys used by the stores.
const (
	SessionKey  = "blogUser"
	AccountsKey = "blogUsers"
	PostsKey    = "blogPosts"
)

// Keys lists every key the application owns.
var Keys = []string{SessionKey, AccountsKey, PostsKey}

// Store is a narrow load/save interface over a key-value backend.
type Store interface {
	// Load returns the value for key. found is false when the key is absent.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)

	// Save replaces the value for key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// ErrEmptyKey is returned for an empty key.
var ErrEmptyKey = errors.New("storage: empty key")

// prefixed applies an optional namespace to key.
func prefixed(prefix, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return prefix + key, nil
}

// Reset deletes every application key so the next start reseeds.
func Reset(ctx context.Context, s Store) error {
	for _, key := range Keys {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
