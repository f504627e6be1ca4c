// Package apperr defines the error taxonomy surfaced by lifecycle operations.
// Every failure reaching a dashboard is an *Error carrying a Kind and a user-facing message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindPermissionDenied     Kind = "permission_denied"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindValidation           Kind = "validation_error"
	KindUnexpectedResponse   Kind = "unexpected_response_shape"
	KindNetworkOrUnknown     Kind = "network_or_unknown"
	KindInvalidTransition    Kind = "invalid_transition"
	KindBusy                 Kind = "busy"
)

const (
	msgNotFound         = "Item not found. It may have already been processed."
	msgPermissionDenied = "Permission denied: you do not have permission to perform this action."
	msgAuthFailed       = "Authentication failed. Please log in again."
	msgNetwork          = "network error, please check your connection and try again."
	msgBusy             = "Another action is already in progress for this item."
)

// FieldError is a field-level validation failure
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error is a classified failure of a lifecycle operation
type Error struct {
	Kind          Kind
	Action        string // e.g. "approve blog"
	Status        int    // remote HTTP status, 0 when no response was received
	ServerMessage string
	Fields        []FieldError
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return e.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the text shown to the user
func (e *Error) Message() string {
	switch e.Kind {
	case KindNotFound:
		return msgNotFound
	case KindPermissionDenied:
		return msgPermissionDenied
	case KindAuthenticationFailed:
		return msgAuthFailed
	case KindBusy:
		return msgBusy
	case KindValidation:
		if len(e.Fields) > 0 {
			return e.Fields[0].Message
		}
		if e.ServerMessage != "" {
			return e.ServerMessage
		}
		return "Validation failed."
	case KindInvalidTransition:
		return e.ServerMessage
	case KindUnexpectedResponse:
		return fmt.Sprintf("Failed to %s: unexpected response from server.", e.Action)
	default:
		if e.ServerMessage != "" {
			return fmt.Sprintf("Failed to %s: %s", e.Action, e.ServerMessage)
		}
		return fmt.Sprintf("Failed to %s: %s", e.Action, msgNetwork)
	}
}

// FromStatus classifies a failed remote response by its HTTP status
func FromStatus(action string, status int, serverMessage string) *Error {
	e := &Error{Action: action, Status: status, ServerMessage: serverMessage}
	switch status {
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusForbidden:
		e.Kind = KindPermissionDenied
	case http.StatusUnauthorized:
		e.Kind = KindAuthenticationFailed
	default:
		e.Kind = KindNetworkOrUnknown
	}
	return e
}

// Network wraps a transport failure where no response was received
func Network(action string, err error) *Error {
	return &Error{Kind: KindNetworkOrUnknown, Action: action, Err: err}
}

// UnexpectedShape reports a 2xx body that matched no known envelope
func UnexpectedShape(action string, status int, err error) *Error {
	return &Error{Kind: KindUnexpectedResponse, Action: action, Status: status, Err: err}
}

// Validation reports local input validation failures
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Action: "validate input", Fields: fields}
}

// InvalidTransition reports a failed lifecycle precondition
func InvalidTransition(action, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidTransition, Action: action, ServerMessage: fmt.Sprintf(format, args...)}
}

// NotFound reports an item missing from the local projection
func NotFound(action string) *Error {
	return &Error{Kind: KindNotFound, Action: action}
}

// AuthenticationFailed reports a missing or expired session
func AuthenticationFailed(action string, err error) *Error {
	return &Error{Kind: KindAuthenticationFailed, Action: action, Err: err}
}

// Busy reports that the item already has an operation in flight
func Busy(action string) *Error {
	return &Error{Kind: KindBusy, Action: action}
}

// KindOf returns the Kind of err, or KindNetworkOrUnknown for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetworkOrUnknown
}

// MessageOf returns the user-facing message for any error
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

// HTTPStatus maps a kind to the status the console API responds with
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindAuthenticationFailed:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalidTransition, KindBusy:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
