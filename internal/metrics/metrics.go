// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/chatbook/internal/storage"
)

var (
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbook",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Key-value store operations by backend, operation and result.",
	}, []string{"backend", "op", "result"})

	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chatbook",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Latency of key-value store operations.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"backend", "op"})

	Commits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbook",
		Subsystem: "editor",
		Name:      "commits_total",
		Help:      "Editor commits by mode (create, edit) and result.",
	}, []string{"mode", "result"})

	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbook",
		Subsystem: "repository",
		Name:      "decode_errors_total",
		Help:      "Stored values that failed to decode, by kind.",
	}, []string{"kind"})

	OrphansSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chatbook",
		Subsystem: "repository",
		Name:      "orphaned_histories_swept_total",
		Help:      "Chat histories removed because their contact no longer exists.",
	})

	RPCs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chatbook",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Local API calls by procedure and code.",
	}, []string{"procedure", "code"})
)

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// InstrumentStore wraps s so every call is counted and timed under backend.
func InstrumentStore(s storage.Store, backend string) storage.Store {
	return &instrumentedStore{next: s, backend: backend}
}

type instrumentedStore struct {
	next    storage.Store
	backend string
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	StoreOps.WithLabelValues(s.backend, op, Result(err)).Inc()
	StoreLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := s.next.Get(ctx, key)
	s.observe("get", start, err)
	return v, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	err = s.next.Set(ctx, key, value)
	s.observe("set", start, err)
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) (err error) {
	start := time.Now()
	err = s.next.Remove(ctx, key)
	s.observe("remove", start, err)
	return err
}

func (s *instrumentedStore) Apply(ctx context.Context, ops ...storage.Op) (err error) {
	start := time.Now()
	err = s.next.Apply(ctx, ops...)
	s.observe("apply", start, err)
	return err
}

func (s *instrumentedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.next.Keys(ctx, prefix)
	s.observe("keys", start, err)
	return keys, err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
