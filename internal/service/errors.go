// Package service implements the local API on top of the repositories and
// the chat editor.
package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/chatbook/internal/editor"
	"github.com/mmynk/chatbook/internal/repository"
)

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, editor.ErrNoContactSelected),
		errors.Is(err, editor.ErrEmptyMessage),
		errors.Is(err, editor.ErrInvalidType),
		errors.Is(err, editor.ErrInvalidStatus),
		errors.Is(err, repository.ErrFirstNameRequired),
		errors.Is(err, repository.ErrDuplicateContactID):
		code = connect.CodeInvalidArgument
	case errors.Is(err, repository.ErrContactNotFound),
		errors.Is(err, editor.ErrMessageNotFound):
		code = connect.CodeNotFound
	case repository.IsDecodeError(err):
		code = connect.CodeDataLoss
	}
	return connect.NewError(code, err)
}
