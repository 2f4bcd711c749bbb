// Package storagetest provides storage.Store wrappers for tests.
package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/mmynk/chatbook/internal/storage"
)

// ErrInjected is returned by a FaultyStore operation that was told to fail.
var ErrInjected = errors.New("injected store failure")

// FaultyStore forwards to an underlying store and fails writes on demand.
type FaultyStore struct {
	storage.Store

	mu        sync.Mutex
	failWrite bool
	failApply bool
	writes    int
}

// NewFaultyStore wraps next.
func NewFaultyStore(next storage.Store) *FaultyStore {
	return &FaultyStore{Store: next}
}

// FailWrites makes Set and Remove fail while on is true.
func (s *FaultyStore) FailWrites(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = on
}

// FailApply makes Apply fail while on is true.
func (s *FaultyStore) FailApply(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failApply = on
}

// Writes returns how many Set, Remove and Apply calls reached the store.
func (s *FaultyStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *FaultyStore) write(fail bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	s.writes++
	return nil
}

func (s *FaultyStore) Set(ctx context.Context, key, value string) error {
	if err := s.write(s.failing(&s.failWrite)); err != nil {
		return err
	}
	return s.Store.Set(ctx, key, value)
}

func (s *FaultyStore) Remove(ctx context.Context, key string) error {
	if err := s.write(s.failing(&s.failWrite)); err != nil {
		return err
	}
	return s.Store.Remove(ctx, key)
}

func (s *FaultyStore) Apply(ctx context.Context, ops ...storage.Op) error {
	if err := s.write(s.failing(&s.failApply)); err != nil {
		return err
	}
	return s.Store.Apply(ctx, ops...)
}

func (s *FaultyStore) failing(flag *bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *flag
}
