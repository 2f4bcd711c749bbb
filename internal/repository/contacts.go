package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/chatbook/internal/metrics"
	"github.com/mmynk/chatbook/internal/models"
	"github.com/mmynk/chatbook/internal/storage"
)

// ContactsKey is the store key of the contact list.
const ContactsKey = "my_contacts_list"

var (
	ErrContactNotFound    = errors.New("contact not found")
	ErrFirstNameRequired  = errors.New("first name is required")
	ErrDuplicateContactID = errors.New("duplicate contact id")
)

// ContactInput carries the fields of the contact form.
type ContactInput struct {
	FirstName    string
	LastName     string
	About        string
	ProfileImage string
}

// ContactRepository stores the single contact list and keeps chat
// histories from outliving their contact.
type ContactRepository struct {
	store storage.Store
	chats *ChatRepository
}

// NewContactRepository creates a ContactRepository. chats must share store.
func NewContactRepository(store storage.Store, chats *ChatRepository) *ContactRepository {
	return &ContactRepository{store: store, chats: chats}
}

// ListContacts returns all contacts in stored order, or an empty slice.
// A corrupt list is returned as empty together with a *DecodeError.
func (r *ContactRepository) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return loadList[models.Contact](ctx, r.store, ContactsKey, "contacts")
}

// SaveContacts overwrites the whole contact list.
// It rejects lists in which two contacts share an id.
func (r *ContactRepository) SaveContacts(ctx context.Context, contacts []models.Contact) error {
	raw, err := encodeContacts(contacts)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, ContactsKey, raw); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}
	return nil
}

// GetContact looks a contact up by id.
func (r *ContactRepository) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	contacts, err := r.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(contacts, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}
	return &contacts[i], nil
}

// RequireContact returns ErrContactNotFound unless id is in the list.
func (r *ContactRepository) RequireContact(ctx context.Context, id string) error {
	_, err := r.GetContact(ctx, id)
	return err
}

// CreateContact validates in, assigns a fresh id and appends the contact.
func (r *ContactRepository) CreateContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" {
		return nil, ErrFirstNameRequired
	}

	contacts, err := r.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	contact := models.NewContact(firstName, strings.TrimSpace(in.LastName), in.About, models.StringPtr(strings.TrimSpace(in.ProfileImage)))
	if err := r.SaveContacts(ctx, append(contacts, *contact)); err != nil {
		return nil, err
	}

	slog.Info("Contact created", "contact_id", contact.ID, "contacts_count", len(contacts)+1)
	return contact, nil
}

// UpdateContact replaces the stored contact with the same id, keeping its
// position in the list.
func (r *ContactRepository) UpdateContact(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	contact.FirstName = strings.TrimSpace(contact.FirstName)
	if contact.FirstName == "" {
		return nil, ErrFirstNameRequired
	}
	contact.LastName = strings.TrimSpace(contact.LastName)
	if strings.TrimSpace(contact.About) == "" {
		contact.About = models.DefaultAbout
	}
	contact.ProfileImage = models.StringPtr(strings.TrimSpace(models.StringValue(contact.ProfileImage)))

	contacts, err := r.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(contacts, contact.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, contact.ID)
	}
	contacts[i] = contact

	if err := r.SaveContacts(ctx, contacts); err != nil {
		return nil, err
	}
	return &contact, nil
}

// DeleteContact removes the contact and its chat history in one atomic
// store batch, holding the contact's history lock. When id is not in the list the history key is still
// removed and ErrContactNotFound is returned.
func (r *ContactRepository) DeleteContact(ctx context.Context, id string) error {
	unlock := r.chats.LockHistory(id)
	defer unlock()

	contacts, err := r.ListContacts(ctx)
	if err != nil {
		return err
	}

	i := indexOf(contacts, id)
	if i < 0 {
		if err := r.chats.DeleteHistory(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrContactNotFound, id)
	}

	remaining := make([]models.Contact, 0, len(contacts)-1)
	remaining = append(remaining, contacts[:i]...)
	remaining = append(remaining, contacts[i+1:]...)

	raw, err := encodeContacts(remaining)
	if err != nil {
		return err
	}

	err = r.store.Apply(ctx,
		storage.SetOp(ContactsKey, raw),
		storage.RemoveOp(HistoryKey(id)),
	)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	slog.Info("Contact deleted", "contact_id", id)
	return nil
}

// SweepOrphans removes every chat history whose contact is no longer in
// the list and returns how many were removed. It does nothing when the
// contact list cannot be decoded.
func (r *ContactRepository) SweepOrphans(ctx context.Context) (int, error) {
	contacts, err := r.ListContacts(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep aborted: %w", err)
	}

	known := make(map[string]bool, len(contacts))
	for _, c := range contacts {
		known[c.ID] = true
	}

	ids, err := r.chats.contactIDs(ctx)
	if err != nil {
		return 0, err
	}

	var ops []storage.Op
	for _, id := range ids {
		if !known[id] {
			ops = append(ops, storage.RemoveOp(HistoryKey(id)))
		}
	}
	if len(ops) == 0 {
		return 0, nil
	}

	if err := r.store.Apply(ctx, ops...); err != nil {
		return 0, fmt.Errorf("failed to remove orphaned histories: %w", err)
	}

	metrics.OrphansSwept.Add(float64(len(ops)))
	slog.Info("Removed orphaned chat histories", "count", len(ops))
	return len(ops), nil
}

func encodeContacts(contacts []models.Contact) (string, error) {
	seen := make(map[string]bool, len(contacts))
	for _, c := range contacts {
		if seen[c.ID] {
			return "", fmt.Errorf("%w: %s", ErrDuplicateContactID, c.ID)
		}
		seen[c.ID] = true
	}
	raw, err := encodeList(contacts)
	if err != nil {
		return "", fmt.Errorf("failed to encode contacts: %w", err)
	}
	return raw, nil
}

func indexOf(contacts []models.Contact, id string) int {
	for i := range contacts {
		if contacts[i].ID == id {
			return i
		}
	}
	return -1
}
