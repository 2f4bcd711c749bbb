package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mmynk/chatbook/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "chatbook-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("Get on missing key reports not found", func(t *testing.T) {
		value, ok, err := store.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok {
			t.Errorf("Expected ok=false, got value %q", value)
		}
	})

	t.Run("Set then Get preserves exact bytes", func(t *testing.T) {
		want := `[{"id":"1","text":"héllo\n\t\"quoted\""}]`
		if err := store.Set(ctx, "chat_1", want); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		got, ok, err := store.Get(ctx, "chat_1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok {
			t.Fatal("Expected key to exist")
		}
		if got != want {
			t.Errorf("Value mismatch: got %q, want %q", got, want)
		}
	})

	t.Run("Set overwrites previous value", func(t *testing.T) {
		store.Set(ctx, "k", "first")
		store.Set(ctx, "k", "second")

		got, _, _ := store.Get(ctx, "k")
		if got != "second" {
			t.Errorf("Expected overwrite, got %q", got)
		}
	})

	t.Run("Remove deletes key and tolerates missing key", func(t *testing.T) {
		store.Set(ctx, "gone", "x")
		if err := store.Remove(ctx, "gone"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, ok, _ := store.Get(ctx, "gone"); ok {
			t.Error("Expected key to be removed")
		}
		if err := store.Remove(ctx, "never-existed"); err != nil {
			t.Errorf("Remove of missing key failed: %v", err)
		}
	})

	t.Run("Apply writes and removes together", func(t *testing.T) {
		store.Set(ctx, "chat_2", "history")

		err := store.Apply(ctx,
			storage.SetOp("my_contacts_list", "[]"),
			storage.RemoveOp("chat_2"),
		)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		if got, _, _ := store.Get(ctx, "my_contacts_list"); got != "[]" {
			t.Errorf("Expected contacts list to be written, got %q", got)
		}
		if _, ok, _ := store.Get(ctx, "chat_2"); ok {
			t.Error("Expected chat_2 to be removed")
		}
	})

	t.Run("Apply rolls back on canceled context", func(t *testing.T) {
		store.Set(ctx, "stable", "before")

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := store.Apply(canceled, storage.SetOp("stable", "after"))
		if err == nil {
			t.Fatal("Expected error for canceled context")
		}

		if got, _, _ := store.Get(ctx, "stable"); got != "before" {
			t.Errorf("Expected value to be unchanged, got %q", got)
		}
	})

	t.Run("Keys filters by prefix", func(t *testing.T) {
		store.Set(ctx, "chat_a", "1")
		store.Set(ctx, "chat_b", "2")
		store.Set(ctx, "chatty", "3")

		keys, err := store.Keys(ctx, "chat_")
		if err != nil {
			t.Fatalf("Keys failed: %v", err)
		}
		sort.Strings(keys)

		want := []string{"chat_1", "chat_a", "chat_b"}
		if len(keys) != len(want) {
			t.Fatalf("Keys count mismatch: got %v, want %v", keys, want)
		}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("Key %d mismatch: got %s, want %s", i, keys[i], want[i])
			}
		}
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Set(ctx, "my_contacts_list", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	store.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "my_contacts_list")
	if err != nil || !ok {
		t.Fatalf("Get after reopen failed: ok=%v err=%v", ok, err)
	}
	if got != `[{"id":"1"}]` {
		t.Errorf("Value mismatch after reopen: got %q", got)
	}
}
