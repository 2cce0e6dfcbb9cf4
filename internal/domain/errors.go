package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so the sentinels below
// can be compared against errors built by the constructors.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeSignatureInvalid    = "SIGNATURE_INVALID"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid        = "TOKEN_INVALID"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodePhotoNotFound       = "PHOTO_NOT_FOUND"
	ErrCodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	ErrCodePaymentNotConfirmed = "PAYMENT_NOT_CONFIRMED"
	ErrCodeUniqueCodeTaken     = "UNIQUE_CODE_TAKEN"
	ErrCodeActivePayment       = "ACTIVE_PAYMENT_EXISTS"
	ErrCodeDownloadRejected    = "DOWNLOAD_REJECTED"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
)

// ErrUniqueCodeTaken wraps ErrValidation so callers treating it as bad input
// still match it.
var (
	ErrValidation          = &DomainError{Code: ErrCodeValidation, Message: "validation failed"}
	ErrGatewayUnavailable  = &DomainError{Code: ErrCodeGatewayUnavailable, Message: "payment gateway unavailable"}
	ErrSignatureInvalid    = &DomainError{Code: ErrCodeSignatureInvalid, Message: "invalid webhook signature"}
	ErrInvalidTransition   = &DomainError{Code: ErrCodeInvalidTransition, Message: "invalid state transition"}
	ErrTokenExpired        = &DomainError{Code: ErrCodeTokenExpired, Message: "link has expired"}
	ErrTokenInvalid        = &DomainError{Code: ErrCodeTokenInvalid, Message: "link is invalid"}
	ErrNotFound            = &DomainError{Code: ErrCodeNotFound, Message: "not found"}
	ErrPhotoNotFound       = &DomainError{Code: ErrCodePhotoNotFound, Message: "photo not found"}
	ErrPaymentNotFound     = &DomainError{Code: ErrCodePaymentNotFound, Message: "payment not found"}
	ErrPaymentNotConfirmed = &DomainError{Code: ErrCodePaymentNotConfirmed, Message: "payment not confirmed"}
	ErrUniqueCodeTaken     = &DomainError{Code: ErrCodeUniqueCodeTaken, Message: "unique code already in use", Err: ErrValidation}
	ErrActivePaymentExists = &DomainError{Code: ErrCodeActivePayment, Message: "photo already has an active payment"}
	ErrDownloadRejected    = &DomainError{Code: ErrCodeDownloadRejected, Message: "download rejected"}
	ErrUnauthorized        = &DomainError{Code: ErrCodeUnauthorized, Message: "unauthorized"}
)

func NewValidationError(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return NewValidationError("%s is required", field)
}

func NewGatewayUnavailableError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayUnavailable,
		Message: "payment gateway unavailable",
		Err:     err,
	}
}

func NewInvalidTransitionError(from, to string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewPhotoNotFoundError(key string) *DomainError {
	return &DomainError{
		Code:    ErrCodePhotoNotFound,
		Message: fmt.Sprintf("photo %s not found", key),
	}
}

func NewPaymentNotFoundError(requestID string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotFound,
		Message: fmt.Sprintf("payment request %s not found", requestID),
	}
}

func NewPaymentNotConfirmedError(requestID, reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotConfirmed,
		Message: fmt.Sprintf("payment request %q not confirmed: %s", requestID, reason),
	}
}

func NewDownloadRejectedError(message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDownloadRejected,
		Message: message,
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
