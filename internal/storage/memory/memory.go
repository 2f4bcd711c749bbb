// Package memory provides an in-process implementation of storage.Store.
// Nothing survives a restart; it backs tests and STORE_BACKEND=memory.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mmynk/chatbook/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]string)}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, storage.SetOp(key, value))
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, storage.RemoveOp(key))
}

func (s *Store) Apply(ctx context.Context, ops ...storage.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		if op.Delete {
			delete(s.entries, op.Key)
			continue
		}
		s.entries[op.Key] = op.Value
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *Store) Close() error { return nil }
