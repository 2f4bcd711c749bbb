package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/chatbook/internal/models"
	"github.com/mmynk/chatbook/internal/storage/memory"
	"github.com/mmynk/chatbook/internal/storage/storagetest"
)

func setup(t *testing.T) (*ContactRepository, *ChatRepository, *storagetest.FaultyStore) {
	t.Helper()
	store := storagetest.NewFaultyStore(memory.New())
	chats := NewChatRepository(store)
	return NewContactRepository(store, chats), chats, store
}

func sampleMessages(contactID string) []models.Message {
	read := models.StatusRead
	voice := "0:25"
	img := "file:///tmp/cat.jpg"
	return []models.Message{
		{
			ID:        "m1",
			ContactID: contactID,
			Text:      "hi",
			Type:      models.MessageSent,
			Status:    &read,
			Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "m2",
			ContactID: contactID,
			Voice:     &voice,
			Type:      models.MessageReceived,
			Timestamp: time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:        "m3",
			ContactID: contactID,
			Image:     &img,
			Type:      models.MessageReceived,
			Timestamp: time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC),
		},
	}
}

func TestContacts_RoundTrip(t *testing.T) {
	contacts, _, _ := setup(t)
	ctx := context.Background()

	empty, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
	require.Empty(t, empty)

	img := "content://media/1"
	want := []models.Contact{
		{ID: "2", FirstName: "Zed", About: models.DefaultAbout},
		{ID: "1", FirstName: "Asha", LastName: "Rao", About: "busy", ProfileImage: &img},
	}
	require.NoError(t, contacts.SaveContacts(ctx, want))

	got, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestContacts_SaveRejectsDuplicateIDs(t *testing.T) {
	contacts, _, store := setup(t)

	err := contacts.SaveContacts(context.Background(), []models.Contact{
		{ID: "1", FirstName: "A"},
		{ID: "1", FirstName: "B"},
	})
	require.ErrorIs(t, err, ErrDuplicateContactID)
	require.Zero(t, store.Writes())
}

func TestHistory_RoundTrip(t *testing.T) {
	_, chats, _ := setup(t)
	ctx := context.Background()

	empty, err := chats.LoadHistory(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	want := sampleMessages("1")
	require.NoError(t, chats.SaveHistory(ctx, "1", want))

	got, err := chats.LoadHistory(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, want, got, "history must keep insertion order, not timestamp order")

	other, err := chats.LoadHistory(ctx, "2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestHistory_StoredShape(t *testing.T) {
	_, chats, store := setup(t)
	ctx := context.Background()

	require.NoError(t, chats.SaveHistory(ctx, "1", []models.Message{{
		ID:        "m1",
		ContactID: "1",
		Text:      "hi",
		Type:      models.MessageReceived,
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}))

	raw, ok, err := store.Get(ctx, "chat_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{
		"id": "m1",
		"contactId": "1",
		"text": "hi",
		"image": null,
		"voice": null,
		"type": "received",
		"status": null,
		"timestamp": "2024-05-01T10:00:00Z"
	}]`, raw)

	require.NoError(t, chats.SaveHistory(ctx, "2", nil))
	raw, _, _ = store.Get(ctx, "chat_2")
	require.Equal(t, "[]", raw)
}

func TestHistory_DecodeError(t *testing.T) {
	_, chats, store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "chat_1", "{not json"))

	got, err := chats.LoadHistory(ctx, "1")
	require.Empty(t, got)
	require.True(t, IsDecodeError(err))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "chat_1", de.Key)
}

func TestCreateContact(t *testing.T) {
	contacts, _, store := setup(t)
	ctx := context.Background()

	t.Run("first name is required", func(t *testing.T) {
		_, err := contacts.CreateContact(ctx, ContactInput{FirstName: "   ", LastName: "X"})
		require.ErrorIs(t, err, ErrFirstNameRequired)
		require.Zero(t, store.Writes())
	})

	t.Run("defaults about and profile image", func(t *testing.T) {
		c, err := contacts.CreateContact(ctx, ContactInput{FirstName: " Asha "})
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)
		require.Equal(t, "Asha", c.FirstName)
		require.Equal(t, models.DefaultAbout, c.About)
		require.Nil(t, c.ProfileImage)

		got, err := contacts.GetContact(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, *c, *got)
	})

	t.Run("appends with unique ids", func(t *testing.T) {
		a, err := contacts.CreateContact(ctx, ContactInput{FirstName: "Ben", About: "at work", ProfileImage: "file:///b.png"})
		require.NoError(t, err)
		b, err := contacts.CreateContact(ctx, ContactInput{FirstName: "Cara"})
		require.NoError(t, err)
		require.NotEqual(t, a.ID, b.ID)
		require.Equal(t, "at work", a.About)
		require.Equal(t, "file:///b.png", models.StringValue(a.ProfileImage))

		list, err := contacts.ListContacts(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		require.Equal(t, b.ID, list[2].ID)
	})
}

func TestUpdateContact(t *testing.T) {
	contacts, _, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, contacts.SaveContacts(ctx, []models.Contact{
		{ID: "1", FirstName: "A", About: "x"},
		{ID: "2", FirstName: "B", About: "y"},
		{ID: "3", FirstName: "C", About: "z"},
	}))

	updated, err := contacts.UpdateContact(ctx, models.Contact{ID: "2", FirstName: "Bea", LastName: "Lee"})
	require.NoError(t, err)
	require.Equal(t, models.DefaultAbout, updated.About)

	list, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, ids(list))
	require.Equal(t, "Bea", list[1].FirstName)
	require.Equal(t, "Lee", list[1].LastName)

	_, err = contacts.UpdateContact(ctx, models.Contact{ID: "9", FirstName: "Nobody"})
	require.ErrorIs(t, err, ErrContactNotFound)

	_, err = contacts.UpdateContact(ctx, models.Contact{ID: "1", FirstName: ""})
	require.ErrorIs(t, err, ErrFirstNameRequired)
}

func TestDeleteContact_CascadesToHistory(t *testing.T) {
	contacts, chats, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, contacts.SaveContacts(ctx, []models.Contact{
		{ID: "1", FirstName: "A"},
		{ID: "2", FirstName: "B"},
	}))
	require.NoError(t, chats.SaveHistory(ctx, "1", sampleMessages("1")))
	require.NoError(t, chats.SaveHistory(ctx, "2", sampleMessages("2")))

	require.NoError(t, contacts.DeleteContact(ctx, "1"))

	list, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, ids(list))

	history, err := chats.LoadHistory(ctx, "1")
	require.NoError(t, err)
	require.Empty(t, history)

	kept, err := chats.LoadHistory(ctx, "2")
	require.NoError(t, err)
	require.Len(t, kept, 3)
}

func TestDeleteContact_FailureLeavesBothIntact(t *testing.T) {
	contacts, chats, store := setup(t)
	ctx := context.Background()

	require.NoError(t, contacts.SaveContacts(ctx, []models.Contact{{ID: "1", FirstName: "A"}}))
	require.NoError(t, chats.SaveHistory(ctx, "1", sampleMessages("1")))

	store.FailApply(true)
	err := contacts.DeleteContact(ctx, "1")
	require.ErrorIs(t, err, storagetest.ErrInjected)

	list, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	history, err := chats.LoadHistory(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 3)
}

func TestDeleteContact_Unknown(t *testing.T) {
	contacts, chats, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, chats.SaveHistory(ctx, "ghost", sampleMessages("ghost")))

	err := contacts.DeleteContact(ctx, "ghost")
	require.ErrorIs(t, err, ErrContactNotFound)

	history, err := chats.LoadHistory(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestDeleteContact_WaitsForHistoryLock(t *testing.T) {
	contacts, chats, _ := setup(t)
	ctx := context.Background()

	contact, err := contacts.CreateContact(ctx, ContactInput{FirstName: "Asha"})
	require.NoError(t, err)

	unlock := chats.LockHistory(contact.ID)
	done := make(chan error, 1)
	go func() {
		done <- contacts.DeleteContact(ctx, contact.ID)
	}()

	select {
	case err := <-done:
		t.Fatalf("delete finished while the history was locked: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	// A commit holding the lock writes its history before the delete runs.
	require.NoError(t, chats.SaveHistory(ctx, contact.ID, sampleMessages(contact.ID)))
	unlock()

	require.NoError(t, <-done)
	history, err := chats.LoadHistory(ctx, contact.ID)
	require.NoError(t, err)
	require.Empty(t, history, "delete must remove a history written before it ran")
}

func TestRequireContact(t *testing.T) {
	contacts, _, _ := setup(t)
	ctx := context.Background()

	contact, err := contacts.CreateContact(ctx, ContactInput{FirstName: "Asha"})
	require.NoError(t, err)

	require.NoError(t, contacts.RequireContact(ctx, contact.ID))
	require.ErrorIs(t, contacts.RequireContact(ctx, "nope"), ErrContactNotFound)
}

func TestDeleteContact_CorruptListIsNotOverwritten(t *testing.T) {
	contacts, _, store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, ContactsKey, "garbage"))

	err := contacts.DeleteContact(ctx, "1")
	require.True(t, IsDecodeError(err))

	raw, _, _ := store.Get(ctx, ContactsKey)
	require.Equal(t, "garbage", raw)
}

func TestSweepOrphans(t *testing.T) {
	contacts, chats, store := setup(t)
	ctx := context.Background()

	require.NoError(t, contacts.SaveContacts(ctx, []models.Contact{{ID: "1", FirstName: "A"}}))
	require.NoError(t, chats.SaveHistory(ctx, "1", sampleMessages("1")))
	require.NoError(t, chats.SaveHistory(ctx, "old", sampleMessages("old")))
	require.NoError(t, chats.SaveHistory(ctx, "older", sampleMessages("older")))

	n, err := contacts.SweepOrphans(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	keys, err := store.Keys(ctx, "chat_")
	require.NoError(t, err)
	require.Equal(t, []string{"chat_1"}, keys)

	n, err = contacts.SweepOrphans(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSweepOrphans_AbortsOnCorruptContacts(t *testing.T) {
	contacts, chats, store := setup(t)
	ctx := context.Background()

	require.NoError(t, chats.SaveHistory(ctx, "1", sampleMessages("1")))
	require.NoError(t, store.Set(ctx, ContactsKey, "[{"))

	_, err := contacts.SweepOrphans(ctx)
	require.True(t, IsDecodeError(err))

	history, err := chats.LoadHistory(ctx, "1")
	require.NoError(t, err)
	require.Len(t, history, 3)
}

func ids(contacts []models.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.ID
	}
	return out
}
