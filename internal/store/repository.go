package store

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Repository stores one JSON-encoded value of type T under a fixed key.
// Load never fails: a missing, unreadable or corrupt value yields the default.
type Repository[T any] struct {
	store    Store
	key      string
	fallback func() T
}

// NewRepository creates a repository for key. fallback builds the default value.
func NewRepository[T any](s Store, key string, fallback func() T) *Repository[T] {
	return &Repository[T]{store: s, key: key, fallback: fallback}
}

// Key returns the store key
func (r *Repository[T]) Key() string {
	return r.key
}

// Load reads and decodes the stored value
func (r *Repository[T]) Load() T {
	data, found, err := r.store.Get(r.key)
	if err != nil {
		zap.L().Warn("store read failed, using default",
			zap.String("key", r.key),
			zap.Error(err),
		)
		return r.fallback()
	}
	if !found {
		return r.fallback()
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		zap.L().Warn("stored value is corrupt, using default",
			zap.String("key", r.key),
			zap.Error(err),
		)
		return r.fallback()
	}
	return v
}

// Save encodes and writes v, replacing the stored value
func (r *Repository[T]) Save(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "encode", Key: r.key, Err: err}
	}
	if err := r.store.Set(r.key, data); err != nil {
		if IsStorageError(err) {
			return err
		}
		return &StorageError{Op: "set", Key: r.key, Err: err}
	}
	return nil
}
