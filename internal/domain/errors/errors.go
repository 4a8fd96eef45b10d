package errors

import (
	"errors"
	"net/http"
)

// Validation errors: the build fails before any external call and nothing
// is partially applied. All are recoverable by correcting input.
var (
	ErrMixedChain       = errors.New("movements reference more than one chain id")
	ErrInvalidAmount    = errors.New("amount is not a valid decimal number")
	ErrMissingInterval  = errors.New("schedule interval must be greater than zero")
	ErrUnsupportedAsset = errors.New("native coin cannot be approved")
	ErrEmptyBatch       = errors.New("batch contains no movements")
)

// Wallet boundary errors: the pending batch is preserved for retry and no
// persistence call is made.
var (
	ErrWalletRejected    = errors.New("wallet rejected the request")
	ErrNoWalletProvider  = errors.New("no wallet provider available")
	ErrWalletUnsupported = errors.New("wallet does not support atomic call batches")
)

// CSV format errors: the import aborts and no batch is loaded. A malformed
// individual transfer row is skipped with a diagnostic instead.
var (
	ErrMalformedHeader         = errors.New("csv header row does not match the expected layout")
	ErrMalformedScalarRow      = errors.New("csv scalar row does not match the header column count")
	ErrMalformedTransferHeader = errors.New("csv transfer header row does not match the expected layout")
	ErrRowCountMismatch        = errors.New("declared transfer count does not match the rows present")
)

// General domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrSignatureReplayed  = errors.New("login message already used")
	ErrLoginMessageStale  = errors.New("login message timestamp too old")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Error codes used in HTTP responses
const (
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}
