package api

import (
	"time"

	"github.com/mmynk/chatbook/internal/models"
)

const (
	ContactServiceName = "chatbook.v1.ContactService"
	ChatServiceName    = "chatbook.v1.ChatService"
)

const (
	ListContactsProcedure  = "/" + ContactServiceName + "/ListContacts"
	GetContactProcedure    = "/" + ContactServiceName + "/GetContact"
	CreateContactProcedure = "/" + ContactServiceName + "/CreateContact"
	UpdateContactProcedure = "/" + ContactServiceName + "/UpdateContact"
	DeleteContactProcedure = "/" + ContactServiceName + "/DeleteContact"

	GetHistoryProcedure    = "/" + ChatServiceName + "/GetHistory"
	CommitMessageProcedure = "/" + ChatServiceName + "/CommitMessage"
)

type ListContactsRequest struct{}

type ListContactsResponse struct {
	Contacts []models.Contact `json:"contacts"`

	// Corrupt is set when the stored list could not be decoded and was
	// returned as empty.
	Corrupt bool `json:"corrupt,omitempty"`
}

type GetContactRequest struct {
	ContactID string `json:"contactId"`
}

type GetContactResponse struct {
	Contact models.Contact `json:"contact"`
}

type CreateContactRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName,omitempty"`
	About        string `json:"about,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type CreateContactResponse struct {
	Contact models.Contact `json:"contact"`
}

type UpdateContactRequest struct {
	Contact models.Contact `json:"contact"`
}

type UpdateContactResponse struct {
	Contact models.Contact `json:"contact"`
}

type DeleteContactRequest struct {
	ContactID string `json:"contactId"`
}

type DeleteContactResponse struct{}

type GetHistoryRequest struct {
	ContactID string `json:"contactId"`
}

type GetHistoryResponse struct {
	Messages []models.Message `json:"messages"`
	Corrupt  bool             `json:"corrupt,omitempty"`
}

// MessageForm mirrors the editor form. A nil Timestamp means "now".
type MessageForm struct {
	Text      string               `json:"text,omitempty"`
	Image     string               `json:"image,omitempty"`
	Voice     string               `json:"voice,omitempty"`
	Type      models.MessageType   `json:"type,omitempty"`
	Status    models.MessageStatus `json:"status,omitempty"`
	Timestamp *time.Time           `json:"timestamp,omitempty"`
}

// CommitMessageRequest carries the whole editor state: the selected
// contact, the message being edited (empty in create mode) and the form.
type CommitMessageRequest struct {
	ContactID string      `json:"contactId"`
	EditingID string      `json:"editingId,omitempty"`
	Form      MessageForm `json:"form"`
}

type CommitMessageResponse struct {
	// Messages is the full history after the commit.
	Messages []models.Message `json:"messages"`

	// MessageID is the id of the created or edited message.
	MessageID string `json:"messageId"`
}
