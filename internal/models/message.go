package models

import "time"

// MessageType is the direction of a message.
type MessageType string

const (
	MessageSent     MessageType = "sent"
	MessageReceived MessageType = "received"
)

// MessageStatus is the delivery state of a sent message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Valid reports whether s is one of the known statuses.
func (s MessageStatus) Valid() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusRead:
		return true
	}
	return false
}

// Message is one entry of a contact's chat history.
type Message struct {
	// ID is unique within the owning history and never changes on edit.
	ID string `json:"id"`

	// ContactID refers back to the owning Contact.
	ContactID string `json:"contactId"`

	// Text is the optional body.
	Text string `json:"text"`

	// Image is an optional URI.
	Image *string `json:"image"`

	// Voice is an optional duration label such as "0:25".
	// Its presence marks a voice message.
	Voice *string `json:"voice"`

	Type MessageType `json:"type"`

	// Status is set only for sent messages and is nil for received ones.
	Status *MessageStatus `json:"status"`

	// Timestamp is shown to the user. It does not order the history.
	Timestamp time.Time `json:"timestamp"`
}

// HasContent reports whether at least one of text, image or voice is non-empty.
func (m Message) HasContent() bool {
	return m.Text != "" || nonEmpty(m.Image) || nonEmpty(m.Voice)
}

// Preview returns a one-line description used in history listings.
func (m Message) Preview() string {
	switch {
	case m.Text != "":
		return m.Text
	case nonEmpty(m.Image):
		return "[Image Message]"
	case nonEmpty(m.Voice):
		return "[Voice Message: " + *m.Voice + "]"
	}
	return ""
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

// StringPtr returns nil for "" and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
