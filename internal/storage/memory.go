package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps values in a map. Used by tests and STORAGE_DRIVER=memory.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	data   map[string][]byte
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{prefix: prefix, data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	k, err := prefixed(s.prefix, key)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[k]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, data []byte) error {
	k, err := prefixed(s.prefix, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[k] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	k, err := prefixed(s.prefix, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, k)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
