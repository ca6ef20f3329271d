package store

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Nothing survives a restart.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns a copy of the stored value
func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	val, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data := val.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Set stores a copy of value
func (s *MemoryStore) Set(key string, value []byte) error {
	data := make([]byte, len(value))
	copy(data, value)
	s.cache.Set(key, data, gocache.NoExpiration)
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// Close flushes all values
func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
