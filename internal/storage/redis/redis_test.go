package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/chatbook/internal/models"
	"github.com/mmynk/chatbook/internal/storage"
)

func TestEscapeGlob(t *testing.T) {
	require.Equal(t, `chat_`, escapeGlob("chat_"))
	require.Equal(t, `a\*b\?c\[d\]\\`, escapeGlob(`a*b?c[d]\`))
}

// TestRedisStore runs against a live server when TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	ns := "chatbook-test-" + models.NewID() + ":"
	s, err := New(ctx, Options{Addr: addr, Namespace: ns})
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "chat_1", `[{"id":"1"}]`))
	v, ok, err := s.Get(ctx, "chat_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Apply(ctx,
		storage.SetOp("my_contacts_list", "[]"),
		storage.RemoveOp("chat_1"),
	))
	_, ok, _ = s.Get(ctx, "chat_1")
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "chat_2", "x"))
	keys, err := s.Keys(ctx, "chat_")
	require.NoError(t, err)
	require.Equal(t, []string{"chat_2"}, keys)

	require.NoError(t, s.Apply(ctx, storage.RemoveOp("chat_2"), storage.RemoveOp("my_contacts_list")))
}
