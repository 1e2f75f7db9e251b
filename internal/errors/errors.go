package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidAmount       ErrorCode = "invalid_amount"
	InsufficientBalance ErrorCode = "insufficient_balance"
	AccountNotFound     ErrorCode = "account_not_found"
	PrecisionError      ErrorCode = "precision_error"
	GenerationExhausted ErrorCode = "generation_exhausted"
	DuplicateCard       ErrorCode = "duplicate_card"
	DuplicateAccount    ErrorCode = "duplicate_account"
	InvalidCredentials  ErrorCode = "invalid_credentials"
	InvalidInput        ErrorCode = "invalid_input"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// HTTPStatus maps the error code to the status the API layer should report.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidAmount, PrecisionError, InvalidInput:
		return http.StatusBadRequest
	case InvalidCredentials:
		return http.StatusUnauthorized
	case AccountNotFound:
		return http.StatusNotFound
	case InsufficientBalance, DuplicateCard, DuplicateAccount:
		return http.StatusConflict
	case GenerationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrInvalidAmount       = NewAppError(InvalidAmount, "amount must be positive")
	ErrInsufficientBalance = NewAppError(InsufficientBalance, "amount exceeds current balance")
	ErrAccountNotFound     = NewAppError(AccountNotFound, "account not found")
	ErrGenerationExhausted = NewAppError(GenerationExhausted, "card number generation attempts exhausted")
	ErrDuplicateCard       = NewAppError(DuplicateCard, "card number already in use")
	ErrDuplicateAccount    = NewAppError(DuplicateAccount, "account already exists")
	ErrInvalidCredentials  = NewAppError(InvalidCredentials, "invalid email or password")

	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin transaction from within a transaction")
)
