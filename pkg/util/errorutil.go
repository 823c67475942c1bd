package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the workflow command taxonomy.
const (
	CodePolicyNotFound    = "POLICY_NOT_FOUND"
	CodeStaleLevel        = "STALE_LEVEL"
	CodeAlreadyDecided    = "ALREADY_DECIDED"
	CodeNotApprovable     = "NOT_APPROVABLE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

// NewPolicyNotFound flags a missing category policy entry. Callers treat it as
// non-fatal during intake and degrade to no-approval.
func NewPolicyNotFound(module, subCategory string) error {
	return NewDomainError(CodePolicyNotFound, "no category policy for sub-category", http.StatusNotFound, map[string]any{
		"module":       module,
		"sub_category": subCategory,
	})
}

// NewStaleLevel rejects a decision aimed at a level that is not currently open.
func NewStaleLevel(requested, current string) error {
	return NewDomainError(CodeStaleLevel,
		fmt.Sprintf("approval level %s is not open; current level is %s", requested, current),
		http.StatusConflict, map[string]any{"requested_level": requested, "current_level": current})
}

// NewAlreadyDecided rejects a second decision on a level that already has one.
func NewAlreadyDecided(level string) error {
	return NewDomainError(CodeAlreadyDecided,
		fmt.Sprintf("ticket already decided at level %s", level),
		http.StatusConflict, map[string]any{"level": level})
}

// NewNotApprovable rejects routing attempted before approval completed.
func NewNotApprovable(ticketNumber string) error {
	return NewDomainError(CodeNotApprovable,
		"ticket cannot be routed before approval completes",
		http.StatusConflict, map[string]any{"ticket_number": ticketNumber})
}

// NewInvalidTransition rejects a command the current status does not permit.
func NewInvalidTransition(command string, status string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("%s not allowed while ticket is %s", command, status),
		http.StatusConflict, map[string]any{"command": command, "status": status})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries the given workflow error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
