// Package repository persists contacts and chat histories as JSON lists
// in a storage.Store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/chatbook/internal/metrics"
	"github.com/mmynk/chatbook/internal/storage"
)

// DecodeError reports a stored value that is not a valid JSON list.
// Readers get an empty list together with this error so that corrupt data
// is never mistaken for "nothing stored yet".
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// loadList reads key and decodes it as a JSON array of T.
// A missing key yields an empty, non-nil slice.
func loadList[T any](ctx context.Context, store storage.Store, key, kind string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return []T{}, nil
	}

	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		metrics.DecodeErrors.WithLabelValues(kind).Inc()
		slog.Warn("Stored value is not valid JSON, treating as empty",
			"key", key,
			"kind", kind,
			"bytes", len(raw),
			"error", err,
		)
		return []T{}, &DecodeError{Key: key, Err: err}
	}
	if list == nil {
		list = []T{}
	}

	return list, nil
}

// encodeList serializes list, writing "[]" rather than "null" for nil.
func encodeList[T any](list []T) (string, error) {
	if list == nil {
		list = []T{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
