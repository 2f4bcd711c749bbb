package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// ContactServiceClient calls the contact procedures.
type ContactServiceClient struct {
	list   *connect.Client[ListContactsRequest, ListContactsResponse]
	get    *connect.Client[GetContactRequest, GetContactResponse]
	create *connect.Client[CreateContactRequest, CreateContactResponse]
	update *connect.Client[UpdateContactRequest, UpdateContactResponse]
	delete *connect.Client[DeleteContactRequest, DeleteContactResponse]
}

// NewContactServiceClient builds a client for the API served at baseURL.
func NewContactServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ContactServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ContactServiceClient{
		list:   connect.NewClient[ListContactsRequest, ListContactsResponse](httpClient, baseURL+ListContactsProcedure, opts...),
		get:    connect.NewClient[GetContactRequest, GetContactResponse](httpClient, baseURL+GetContactProcedure, opts...),
		create: connect.NewClient[CreateContactRequest, CreateContactResponse](httpClient, baseURL+CreateContactProcedure, opts...),
		update: connect.NewClient[UpdateContactRequest, UpdateContactResponse](httpClient, baseURL+UpdateContactProcedure, opts...),
		delete: connect.NewClient[DeleteContactRequest, DeleteContactResponse](httpClient, baseURL+DeleteContactProcedure, opts...),
	}
}

func (c *ContactServiceClient) ListContacts(ctx context.Context, req *connect.Request[ListContactsRequest]) (*connect.Response[ListContactsResponse], error) {
	return c.list.CallUnary(ctx, req)
}

func (c *ContactServiceClient) GetContact(ctx context.Context, req *connect.Request[GetContactRequest]) (*connect.Response[GetContactResponse], error) {
	return c.get.CallUnary(ctx, req)
}

func (c *ContactServiceClient) CreateContact(ctx context.Context, req *connect.Request[CreateContactRequest]) (*connect.Response[CreateContactResponse], error) {
	return c.create.CallUnary(ctx, req)
}

func (c *ContactServiceClient) UpdateContact(ctx context.Context, req *connect.Request[UpdateContactRequest]) (*connect.Response[UpdateContactResponse], error) {
	return c.update.CallUnary(ctx, req)
}

func (c *ContactServiceClient) DeleteContact(ctx context.Context, req *connect.Request[DeleteContactRequest]) (*connect.Response[DeleteContactResponse], error) {
	return c.delete.CallUnary(ctx, req)
}

// ChatServiceClient calls the chat procedures.
type ChatServiceClient struct {
	history *connect.Client[GetHistoryRequest, GetHistoryResponse]
	commit  *connect.Client[CommitMessageRequest, CommitMessageResponse]
}

// NewChatServiceClient builds a client for the API served at baseURL.
func NewChatServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ChatServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ChatServiceClient{
		history: connect.NewClient[GetHistoryRequest, GetHistoryResponse](httpClient, baseURL+GetHistoryProcedure, opts...),
		commit:  connect.NewClient[CommitMessageRequest, CommitMessageResponse](httpClient, baseURL+CommitMessageProcedure, opts...),
	}
}

func (c *ChatServiceClient) GetHistory(ctx context.Context, req *connect.Request[GetHistoryRequest]) (*connect.Response[GetHistoryResponse], error) {
	return c.history.CallUnary(ctx, req)
}

func (c *ChatServiceClient) CommitMessage(ctx context.Context, req *connect.Request[CommitMessageRequest]) (*connect.Response[CommitMessageResponse], error) {
	return c.commit.CallUnary(ctx, req)
}
