package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/chatbook/internal/api"
	"github.com/mmynk/chatbook/internal/repository"
)

// ContactService implements the contact procedures.
type ContactService struct {
	contacts *repository.ContactRepository
}

// NewContactService creates a new ContactService.
func NewContactService(contacts *repository.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// ListContacts returns every contact. A corrupt list comes back empty with
// Corrupt set rather than as an error.
func (s *ContactService) ListContacts(ctx context.Context, req *connect.Request[api.ListContactsRequest]) (*connect.Response[api.ListContactsResponse], error) {
	contacts, err := s.contacts.ListContacts(ctx)
	corrupt := repository.IsDecodeError(err)
	if err != nil && !corrupt {
		slog.Error("ListContacts failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Debug("ListContacts successful", "count", len(contacts), "corrupt", corrupt)
	return connect.NewResponse(&api.ListContactsResponse{
		Contacts: contacts,
		Corrupt:  corrupt,
	}), nil
}

// GetContact retrieves a contact by ID.
func (s *ContactService) GetContact(ctx context.Context, req *connect.Request[api.GetContactRequest]) (*connect.Response[api.GetContactResponse], error) {
	contact, err := s.contacts.GetContact(ctx, req.Msg.ContactID)
	if err != nil {
		slog.Error("GetContact failed", "contact_id", req.Msg.ContactID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetContactResponse{Contact: *contact}), nil
}

// CreateContact creates a new contact.
func (s *ContactService) CreateContact(ctx context.Context, req *connect.Request[api.CreateContactRequest]) (*connect.Response[api.CreateContactResponse], error) {
	slog.Info("CreateContact request received", "has_profile_image", req.Msg.ProfileImage != "")

	contact, err := s.contacts.CreateContact(ctx, repository.ContactInput{
		FirstName:    req.Msg.FirstName,
		LastName:     req.Msg.LastName,
		About:        req.Msg.About,
		ProfileImage: req.Msg.ProfileImage,
	})
	if err != nil {
		slog.Error("CreateContact failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateContactResponse{Contact: *contact}), nil
}

// UpdateContact replaces an existing contact.
func (s *ContactService) UpdateContact(ctx context.Context, req *connect.Request[api.UpdateContactRequest]) (*connect.Response[api.UpdateContactResponse], error) {
	slog.Info("UpdateContact request received", "contact_id", req.Msg.Contact.ID)

	if req.Msg.Contact.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("contact id required"))
	}

	contact, err := s.contacts.UpdateContact(ctx, req.Msg.Contact)
	if err != nil {
		slog.Error("UpdateContact failed", "contact_id", req.Msg.Contact.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UpdateContactResponse{Contact: *contact}), nil
}

// DeleteContact removes a contact together with its chat history.
func (s *ContactService) DeleteContact(ctx context.Context, req *connect.Request[api.DeleteContactRequest]) (*connect.Response[api.DeleteContactResponse], error) {
	slog.Info("DeleteContact request received", "contact_id", req.Msg.ContactID)

	if err := s.contacts.DeleteContact(ctx, req.Msg.ContactID); err != nil {
		slog.Error("DeleteContact failed", "contact_id", req.Msg.ContactID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DeleteContactResponse{}), nil
}
