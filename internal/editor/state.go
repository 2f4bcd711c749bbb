package editor

import (
	"time"

	"github.com/mmynk/chatbook/internal/models"
)

// Phase is the position of a State in the editor's state machine.
type Phase int

const (
	// Idle: no contact selected.
	Idle Phase = iota
	// ContactSelected: a contact is selected and the form holds defaults.
	ContactSelected
	// Composing: a new message is being typed.
	Composing
	// Editing: an existing message was loaded with BeginEdit.
	Editing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ContactSelected:
		return "contact_selected"
	case Composing:
		return "composing"
	case Editing:
		return "editing"
	}
	return "unknown"
}

// Form holds the fields collected by the editor screen.
// The zero Type means sent and the zero Timestamp means "now".
type Form struct {
	Text  string
	Image string
	Voice string

	Type   models.MessageType
	Status models.MessageStatus

	Timestamp time.Time
}

// isBlank reports whether the form carries no user input beyond defaults.
func (f Form) isBlank() bool {
	return f.Text == "" && f.Image == "" && f.Voice == ""
}

// FormFromMessage copies the editable fields of m into a Form.
func FormFromMessage(m models.Message) Form {
	f := Form{
		Text:      m.Text,
		Image:     models.StringValue(m.Image),
		Voice:     models.StringValue(m.Voice),
		Type:      m.Type,
		Status:    models.StatusSent,
		Timestamp: m.Timestamp,
	}
	if m.Status != nil {
		f.Status = *m.Status
	}
	return f
}

// State is the editor's working state. It is a plain value: every editor
// operation takes a State and returns the next one.
type State struct {
	// Contact is the selected contact, nil when Idle.
	Contact *models.Contact

	// EditingID is the id of the message being edited, empty in create mode.
	EditingID string

	Form Form
}

// Phase derives the state-machine position from the fields.
func (s State) Phase() Phase {
	switch {
	case s.Contact == nil:
		return Idle
	case s.EditingID != "":
		return Editing
	case !s.Form.isBlank():
		return Composing
	}
	return ContactSelected
}

// IsEditing reports whether a commit would amend an existing message.
func (s State) IsEditing() bool {
	return s.EditingID != ""
}
