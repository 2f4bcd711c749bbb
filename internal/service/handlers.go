package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/chatbook/internal/api"
)

// Register mounts every procedure of both services on mux.
// opts are applied to each handler in addition to the JSON codec.
func Register(mux *http.ServeMux, contacts *ContactService, chats *ChatService, opts ...connect.HandlerOption) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)

	mux.Handle(api.ListContactsProcedure, connect.NewUnaryHandler(api.ListContactsProcedure, contacts.ListContacts, opts...))
	mux.Handle(api.GetContactProcedure, connect.NewUnaryHandler(api.GetContactProcedure, contacts.GetContact, opts...))
	mux.Handle(api.CreateContactProcedure, connect.NewUnaryHandler(api.CreateContactProcedure, contacts.CreateContact, opts...))
	mux.Handle(api.UpdateContactProcedure, connect.NewUnaryHandler(api.UpdateContactProcedure, contacts.UpdateContact, opts...))
	mux.Handle(api.DeleteContactProcedure, connect.NewUnaryHandler(api.DeleteContactProcedure, contacts.DeleteContact, opts...))

	mux.Handle(api.GetHistoryProcedure, connect.NewUnaryHandler(api.GetHistoryProcedure, chats.GetHistory, opts...))
	mux.Handle(api.CommitMessageProcedure, connect.NewUnaryHandler(api.CommitMessageProcedure, chats.CommitMessage, opts...))
}
