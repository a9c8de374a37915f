package errprocess

import (
	"errors"
	"net/http"

	"marketplace_chat_service/pkg/logger"
)

// Kind classifies an AppError for the request boundary
type Kind int

const (
	// KindInternal storage/transport failure
	KindInternal Kind = iota
	// KindValidation malformed or missing input
	KindValidation
	// KindAuthentication missing or invalid credential
	KindAuthentication
	// KindAuthorization authenticated but not permitted
	KindAuthorization
	// KindNotFound reference does not resolve
	KindNotFound
	// KindInvalidState operation not valid for the entity state
	KindInvalidState
)

// AppError definition error with a kind
type AppError struct {
	Kind Kind
	Msg  string
}

func (e *AppError) Error() string {
	return e.Msg
}

// Set set err info (log + return), kept for internal failures
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return &AppError{Kind: KindInternal, Msg: errMsg}
}

// Validation create a validation error
func Validation(msg string) error {
	return &AppError{Kind: KindValidation, Msg: msg}
}

// Authentication create an authentication error
func Authentication(msg string) error {
	return &AppError{Kind: KindAuthentication, Msg: msg}
}

// Authorization create an authorization error
func Authorization(msg string) error {
	return &AppError{Kind: KindAuthorization, Msg: msg}
}

// NotFound create a not-found error
func NotFound(msg string) error {
	return &AppError{Kind: KindNotFound, Msg: msg}
}

// InvalidState create an invalid-state error
func InvalidState(msg string) error {
	return &AppError{Kind: KindInvalidState, Msg: msg}
}

// Internal create an internal error and log it
func Internal(msg string) error {
	logger.Log.Error(msg)
	return &AppError{Kind: KindInternal, Msg: msg}
}

// KindOf report the kind of err, KindInternal for unknown errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is check err against a kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusOf map err to the HTTP status of its kind
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
