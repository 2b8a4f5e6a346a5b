package actions

import (
	apperrors "github.com/louisbranch/adminactions/internal/platform/errors"
)

// Sentinel errors. They are matched with errors.Is by code.
var (
	ErrNoActionSelected   = apperrors.New(apperrors.CodeActionNotSelected, "no action selected")
	ErrActionNotPermitted = apperrors.New(apperrors.CodeActionNotPermitted, "action not permitted")
	ErrNoItemsSelected    = apperrors.New(apperrors.CodeActionSelectionEmpty, "no items selected")
	ErrDuplicateName      = apperrors.New(apperrors.CodeActionDuplicateName, "duplicate action name")
	ErrInvalidName        = apperrors.New(apperrors.CodeActionInvalidName, "invalid action name")
	ErrNotFound           = apperrors.New(apperrors.CodeActionNotFound, "action not found")
	ErrUnresolvedRef      = apperrors.New(apperrors.CodeActionUnresolvedReference, "unresolved action reference")
	ErrActionFailed       = apperrors.New(apperrors.CodeActionFailed, "action failed")
)

// rejection returns a fresh copy of a validation sentinel so callers cannot
// mutate the shared value.
func rejection(sentinel *apperrors.Error) *apperrors.Error {
	return apperrors.New(sentinel.Code, sentinel.Message)
}
