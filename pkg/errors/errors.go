package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Messages returned to API clients.
const (
	MsgInternal           = "Error interno del servidor"
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgUserNotFound       = "Usuario no encontrado"
	MsgDishNotFound       = "Plato no encontrado"
	MsgUserAlreadyExists  = "El usuario ya está registrado"
	MsgMissingCredentials = "Correo electrónico y contraseña son campos obligatorios"
	MsgInvalidBody        = "Cuerpo de la solicitud inválido"
)

// Common application errors
var (
	ErrUserNotFound       = NewNotFoundError("usuario", MsgUserNotFound)
	ErrDishNotFound       = NewNotFoundError("plato", MsgDishNotFound)
	ErrUserAlreadyExists  = NewAlreadyExistsError("usuario", MsgUserAlreadyExists)
	ErrInvalidCredentials = NewUnauthorizedError(MsgInvalidCredentials)
	ErrInternal           = NewInternalError(MsgInternal, nil)
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// PublicMessage is the text safe to show to API clients.
func (e *ValidationError) PublicMessage() string { return e.Message }

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s no encontrado", e.Resource)
}

func (e *NotFoundError) PublicMessage() string { return e.Error() }

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// AlreadyExistsError represents a uniqueness conflict on create.
// It is reported as 400 to keep the contract existing clients rely on.
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s ya existe", e.Resource)
}

func (e *AlreadyExistsError) PublicMessage() string { return e.Error() }

// HTTPStatus returns the HTTP status for this error
func (e *AlreadyExistsError) HTTPStatus() int { return http.StatusBadRequest }

// UnauthorizedError is returned when credentials do not match.
// It never says which part of the credentials was wrong.
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// Error implements the error interface
func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return MsgInvalidCredentials
}

func (e *UnauthorizedError) PublicMessage() string { return e.Error() }

// HTTPStatus returns the HTTP status for this error
func (e *UnauthorizedError) HTTPStatus() int { return http.StatusUnauthorized }

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// PublicMessage hides the cause.
func (e *InternalError) PublicMessage() string { return MsgInternal }

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }

// HTTPError is implemented by every error type in this package.
type HTTPError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// Classify returns the status code and client-facing message for err.
// Errors that do not carry a classification are treated as internal.
func Classify(err error) (int, string) {
	var he HTTPError
	if errors.As(err, &he) {
		return he.HTTPStatus(), he.PublicMessage()
	}
	return http.StatusInternalServerError, MsgInternal
}
