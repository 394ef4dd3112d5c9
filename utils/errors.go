package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "ValidationError"
	KindAuth           ErrorKind = "AuthError"
	KindNotFound       ErrorKind = "NotFound"
	KindDependency     ErrorKind = "DependencyError"
	KindNoParticipants ErrorKind = "NoParticipants"
	KindNotJoined      ErrorKind = "NotJoined"
	KindConflict       ErrorKind = "Conflict"
)

// AppError is an error with a client-facing kind and message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error kind
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindNoParticipants, KindNotJoined, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewAuthError(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewDependencyError(message string, err error) *AppError {
	return &AppError{Kind: KindDependency, Message: message, Err: err}
}

func New(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// IsKind reports whether err carries an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// SendAppError writes err as a {"message": ...} body with the matching status.
// Errors that are not AppErrors are reported as internal failures without detail.
func SendAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		SendError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if appErr.Kind == KindDependency && appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	SendError(c, appErr.Status(), appErr.Message)
}
