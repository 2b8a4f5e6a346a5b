// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Action dispatch validation errors
	CodeActionNotSelected    Code = "ACTION_NOT_SELECTED"
	CodeActionNotPermitted   Code = "ACTION_NOT_PERMITTED"
	CodeActionSelectionEmpty Code = "ACTION_SELECTION_EMPTY"

	// Action registry configuration errors
	CodeActionDuplicateName       Code = "ACTION_DUPLICATE_NAME"
	CodeActionInvalidName         Code = "ACTION_INVALID_NAME"
	CodeActionNotFound            Code = "ACTION_NOT_FOUND"
	CodeActionUnresolvedReference Code = "ACTION_UNRESOLVED_REFERENCE"

	// Action execution errors
	CodeActionFailed Code = "ACTION_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Class groups codes by how callers are expected to recover.
type Class string

const (
	// ClassValidation errors are recoverable request problems shown back to the operator.
	ClassValidation Class = "validation"
	// ClassConfiguration errors come from administrative misconfiguration.
	ClassConfiguration Class = "configuration"
	// ClassInternal errors are unexpected failures whose detail is only logged.
	ClassInternal Class = "internal"
)

// Class maps codes to their recovery class.
func (c Code) Class() Class {
	switch c {
	case CodeActionNotSelected,
		CodeActionNotPermitted,
		CodeActionSelectionEmpty:
		return ClassValidation

	case CodeActionDuplicateName,
		CodeActionInvalidName,
		CodeActionNotFound,
		CodeActionUnresolvedReference,
		CodeNotFound:
		return ClassConfiguration

	default:
		return ClassInternal
	}
}

// MessageKey returns the localization key for the user-facing message of this code.
func (c Code) MessageKey() string {
	switch c {
	case CodeActionNotSelected:
		return "admin.actions.error.not_selected"
	case CodeActionNotPermitted:
		return "admin.actions.error.not_permitted"
	case CodeActionSelectionEmpty:
		return "admin.actions.error.selection_empty"
	case CodeActionDuplicateName:
		return "admin.actions.error.duplicate_name"
	case CodeActionInvalidName:
		return "admin.actions.error.invalid_name"
	case CodeActionNotFound, CodeNotFound:
		return "admin.actions.error.not_found"
	default:
		return "admin.actions.error.failed"
	}
}
