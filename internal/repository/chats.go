package repository

import (
	"context"
	"fmt"

	"github.com/mmynk/chatbook/internal/models"
	"github.com/mmynk/chatbook/internal/storage"
)

// historyPrefix starts the key of every chat history.
const historyPrefix = "chat_"

// HistoryKey returns the store key of a contact's chat history.
func HistoryKey(contactID string) string {
	return historyPrefix + contactID
}

// ChatRepository stores one ordered message list per contact.
// Each history is an independent unit; nothing here checks that the
// contact exists.
type ChatRepository struct {
	store storage.Store
	locks keyedMutex
}

// NewChatRepository creates a ChatRepository on top of store.
func NewChatRepository(store storage.Store) *ChatRepository {
	return &ChatRepository{store: store}
}

// LoadHistory returns the messages of contactID in insertion order.
// It returns an empty slice when no history exists yet.
func (r *ChatRepository) LoadHistory(ctx context.Context, contactID string) ([]models.Message, error) {
	return loadList[models.Message](ctx, r.store, HistoryKey(contactID), "history")
}

// LockHistory blocks until the caller holds contactID's history within
// this process. Read-modify-write sequences on one history, and deleting
// its contact, run under this lock.
func (r *ChatRepository) LockHistory(contactID string) (unlock func()) {
	return r.locks.lock(contactID)
}

// SaveHistory replaces the whole history of contactID.
func (r *ChatRepository) SaveHistory(ctx context.Context, contactID string, messages []models.Message) error {
	raw, err := encodeList(messages)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := r.store.Set(ctx, HistoryKey(contactID), raw); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// DeleteHistory removes the history key of contactID entirely.
func (r *ChatRepository) DeleteHistory(ctx context.Context, contactID string) error {
	if err := r.store.Remove(ctx, HistoryKey(contactID)); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// contactIDs lists the contact ids that currently have a stored history.
func (r *ChatRepository) contactIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, historyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len(historyPrefix):])
	}
	return ids, nil
}
