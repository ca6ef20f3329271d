package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Store is a durable, string-keyed byte store.
// Values are written whole; there are no partial updates.
type Store interface {
	// Get returns the value for key and whether it exists
	Get(key string) ([]byte, bool, error)

	// Set replaces the value for key
	Set(key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(key string) error

	// Close releases any underlying resources
	Close() error
}

// Well-known keys
const (
	KeyTheme   = "theme"
	KeyHistory = "queryHistory"
)

// StorageError reports a failed read or write of a key
type StorageError struct {
	Op  string // "get", "set", "delete", "decode", "encode"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err wraps a *StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Open creates the store selected by driver ("file", "sqlite" or "memory").
// path is a directory for "file" and a database file for "sqlite".
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, eris.Errorf("store: unknown driver %q (supported: file, sqlite, memory)", driver)
	}
}
