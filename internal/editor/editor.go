// Package editor turns form input into persisted chat messages.
//
// The editor works in two modes against the selected contact: create mode
// appends a new message, edit mode (entered with BeginEdit) replaces an
// existing message in place. Form state lives in a State value that the
// caller keeps and passes back, so the state machine
//
//	Idle -> ContactSelected -> {Composing, Editing} -> (commit) -> ContactSelected
//
// can be driven without any UI.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/chatbook/internal/metrics"
	"github.com/mmynk/chatbook/internal/models"
)

var (
	ErrNoContactSelected = errors.New("no contact selected")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrInvalidType       = errors.New("message type must be sent or received")
	ErrInvalidStatus     = errors.New("message status must be sent, delivered or read")
	ErrMessageNotFound   = errors.New("message not found in history")
)

// HistoryStore is the part of the chat repository the editor needs.
type HistoryStore interface {
	LockHistory(contactID string) (unlock func())
	LoadHistory(ctx context.Context, contactID string) ([]models.Message, error)
	SaveHistory(ctx context.Context, contactID string, messages []models.Message) error
}

// Editor validates forms and commits them to a HistoryStore.
// Commits for the same contact are serialized by the store's history lock.
type Editor struct {
	histories    HistoryStore
	now          func() time.Time
	newID        func() string
	contactCheck func(ctx context.Context, contactID string) error
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock overrides the time source used for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithIDGenerator overrides how new message ids are made.
func WithIDGenerator(newID func() string) Option {
	return func(e *Editor) { e.newID = newID }
}

// WithContactCheck makes every commit confirm, while holding the history
// lock, that the selected contact still exists. A contact deleted after it
// was selected then fails the commit instead of leaving an orphaned history.
func WithContactCheck(check func(ctx context.Context, contactID string) error) Option {
	return func(e *Editor) { e.contactCheck = check }
}

// New creates an Editor backed by histories.
func New(histories HistoryStore, opts ...Option) *Editor {
	e := &Editor{
		histories: histories,
		now:       time.Now,
		newID:     models.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultForm is the form shown for a new message.
func (e *Editor) DefaultForm() Form {
	return Form{
		Type:      models.MessageSent,
		Status:    models.StatusSent,
		Timestamp: e.now(),
	}
}

// SelectContact switches to contact from any state. The form is reset and
// a pending edit is discarded.
func (e *Editor) SelectContact(contact models.Contact) State {
	return State{Contact: &contact, Form: e.DefaultForm()}
}

// BeginEdit loads msg into the form and enters edit mode.
// msg must belong to the selected contact.
func (e *Editor) BeginEdit(st State, msg models.Message) (State, error) {
	if st.Contact == nil {
		return st, ErrNoContactSelected
	}
	if msg.ContactID != "" && msg.ContactID != st.Contact.ID {
		return st, fmt.Errorf("%w: %s belongs to contact %s", ErrMessageNotFound, msg.ID, msg.ContactID)
	}
	return State{
		Contact:   st.Contact,
		EditingID: msg.ID,
		Form:      FormFromMessage(msg),
	}, nil
}

// History loads the selected contact's messages for display.
func (e *Editor) History(ctx context.Context, st State) ([]models.Message, error) {
	if st.Contact == nil {
		return nil, ErrNoContactSelected
	}
	return e.histories.LoadHistory(ctx, st.Contact.ID)
}

// Commit validates form and persists it for the selected contact.
//
// On success the returned State has a default form and no edit mode, and
// the returned slice is the full updated history. On any error the
// returned State keeps form so nothing the user typed is lost, and the
// stored history is unchanged.
func (e *Editor) Commit(ctx context.Context, st State, form Form) (State, []models.Message, error) {
	failed := st
	failed.Form = form

	mode := "create"
	if st.IsEditing() {
		mode = "edit"
	}

	history, err := e.commit(ctx, st, form)
	metrics.Commits.WithLabelValues(mode, metrics.Result(err)).Inc()
	if err != nil {
		return failed, nil, err
	}

	return State{Contact: st.Contact, Form: e.DefaultForm()}, history, nil
}

func (e *Editor) commit(ctx context.Context, st State, form Form) ([]models.Message, error) {
	if st.Contact == nil {
		return nil, ErrNoContactSelected
	}

	fields, err := e.messageFields(form)
	if err != nil {
		return nil, err
	}

	contactID := st.Contact.ID
	unlock := e.histories.LockHistory(contactID)
	defer unlock()

	if e.contactCheck != nil {
		if err := e.contactCheck(ctx, contactID); err != nil {
			return nil, err
		}
	}

	// A corrupt history surfaces here as a DecodeError and is never
	// overwritten.
	history, err := e.histories.LoadHistory(ctx, contactID)
	if err != nil {
		return nil, err
	}

	updated := make([]models.Message, len(history), len(history)+1)
	copy(updated, history)

	var messageID string
	if st.IsEditing() {
		i := indexOf(updated, st.EditingID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, st.EditingID)
		}
		fields.ID = updated[i].ID
		fields.ContactID = updated[i].ContactID
		updated[i] = fields
		messageID = fields.ID
	} else {
		fields.ID = e.newID()
		fields.ContactID = contactID
		updated = append(updated, fields)
		messageID = fields.ID
	}

	if err := e.histories.SaveHistory(ctx, contactID, updated); err != nil {
		slog.Error("Commit failed", "contact_id", contactID, "message_id", messageID, "error", err)
		return nil, err
	}

	slog.Info("Message committed",
		"contact_id", contactID,
		"message_id", messageID,
		"editing", st.IsEditing(),
		"history_len", len(updated),
	)
	slog.Debug("Message content", "message_id", messageID, "preview", fields.Preview())
	return updated, nil
}

// messageFields validates form and builds a Message without identity.
func (e *Editor) messageFields(form Form) (models.Message, error) {
	msg := models.Message{
		Text:      form.Text,
		Image:     models.StringPtr(form.Image),
		Voice:     models.StringPtr(form.Voice),
		Type:      form.Type,
		Timestamp: form.Timestamp,
	}
	if !msg.HasContent() {
		return models.Message{}, ErrEmptyMessage
	}

	switch msg.Type {
	case "", models.MessageSent:
		msg.Type = models.MessageSent
		status := form.Status
		if status == "" {
			status = models.StatusSent
		}
		if !status.Valid() {
			return models.Message{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		msg.Status = &status
	case models.MessageReceived:
		msg.Status = nil
	default:
		return models.Message{}, fmt.Errorf("%w: %q", ErrInvalidType, msg.Type)
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = e.now()
	}

	return msg, nil
}

func indexOf(messages []models.Message, id string) int {
	for i := range messages {
		if messages[i].ID == id {
			return i
		}
	}
	return -1
}
