package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chatbook/internal/api"
	"github.com/mmynk/chatbook/internal/editor"
	"github.com/mmynk/chatbook/internal/models"
	"github.com/mmynk/chatbook/internal/repository"
)

// ChatService implements the chat procedures. It keeps no editor state:
// every CommitMessage request carries the full editor state.
type ChatService struct {
	contacts *repository.ContactRepository
	chats    *repository.ChatRepository
	editor   *editor.Editor
}

// NewChatService creates a new ChatService.
func NewChatService(contacts *repository.ContactRepository, chats *repository.ChatRepository, ed *editor.Editor) *ChatService {
	return &ChatService{contacts: contacts, chats: chats, editor: ed}
}

// GetHistory returns a contact's messages in display order.
func (s *ChatService) GetHistory(ctx context.Context, req *connect.Request[api.GetHistoryRequest]) (*connect.Response[api.GetHistoryResponse], error) {
	if req.Msg.ContactID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("contact id required"))
	}

	messages, err := s.chats.LoadHistory(ctx, req.Msg.ContactID)
	corrupt := repository.IsDecodeError(err)
	if err != nil && !corrupt {
		slog.Error("GetHistory failed", "contact_id", req.Msg.ContactID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetHistoryResponse{
		Messages: messages,
		Corrupt:  corrupt,
	}), nil
}

// CommitMessage creates a message, or edits one when EditingID is set.
func (s *ChatService) CommitMessage(ctx context.Context, req *connect.Request[api.CommitMessageRequest]) (*connect.Response[api.CommitMessageResponse], error) {
	slog.Info("CommitMessage request received",
		"contact_id", req.Msg.ContactID,
		"editing_id", req.Msg.EditingID,
	)

	st, err := s.state(ctx, req.Msg)
	if err != nil {
		slog.Warn("CommitMessage rejected", "contact_id", req.Msg.ContactID, "error", err)
		return nil, toConnectError(err)
	}

	_, history, err := s.editor.Commit(ctx, st, toForm(req.Msg.Form))
	if err != nil {
		return nil, toConnectError(err)
	}

	messageID := req.Msg.EditingID
	if messageID == "" {
		messageID = history[len(history)-1].ID
	}

	return connect.NewResponse(&api.CommitMessageResponse{
		Messages:  history,
		MessageID: messageID,
	}), nil
}

// state rebuilds the editor state described by req.
func (s *ChatService) state(ctx context.Context, req *api.CommitMessageRequest) (editor.State, error) {
	if req.ContactID == "" {
		return editor.State{}, nil
	}

	contact, err := s.contacts.GetContact(ctx, req.ContactID)
	if err != nil {
		return editor.State{}, err
	}

	st := s.editor.SelectContact(*contact)
	if req.EditingID == "" {
		return st, nil
	}

	// BeginEdit only needs the identity; Commit re-reads the history and
	// fails with ErrMessageNotFound when the id is unknown.
	return s.editor.BeginEdit(st, models.Message{ID: req.EditingID, ContactID: contact.ID})
}

func toForm(f api.MessageForm) editor.Form {
	form := editor.Form{
		Text:   f.Text,
		Image:  f.Image,
		Voice:  f.Voice,
		Type:   f.Type,
		Status: f.Status,
	}
	if f.Timestamp != nil {
		form.Timestamp = *f.Timestamp
	}
	return form
}
