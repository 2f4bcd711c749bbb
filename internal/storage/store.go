// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
)

// Store defines the key-value operations the repositories are built on.
// Values are opaque strings and must come back byte-for-byte as written.
// This abstraction allows swapping storage backends (SQLite, Redis, memory)
// without changing the repository layer.
type Store interface {
	// Get returns the value stored under key.
	// ok is false when the key has never been set or was removed.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Apply runs all ops as a single atomic unit: either every op is
	// visible afterwards or none is.
	Apply(ctx context.Context, ops ...Op) error

	// Keys lists every key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Op is one write inside an Apply batch.
type Op struct {
	Key string

	// Value is written when Delete is false.
	Value string

	// Delete removes Key instead of writing it.
	Delete bool
}

// SetOp builds an Op writing value under key.
func SetOp(key, value string) Op {
	return Op{Key: key, Value: value}
}

// RemoveOp builds an Op deleting key.
func RemoveOp(key string) Op {
	return Op{Key: key, Delete: true}
}
