package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/domain"
)

// ErrorCategory groups errors for log and metric labels.
type ErrorCategory string

const (
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategorySecurity       ErrorCategory = "SECURITY"
	CategoryGateway        ErrorCategory = "GATEWAY"
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	if _, ok := IsGatewayError(err); ok {
		return CategoryGateway
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeGatewayUnavailable:
			return CategoryGateway
		case domain.ErrCodeSignatureInvalid, domain.ErrCodeTokenInvalid, domain.ErrCodeUnauthorized:
			return CategorySecurity
		case domain.ErrCodeInvalidTransition, domain.ErrCodePaymentNotConfirmed,
			domain.ErrCodeActivePayment, domain.ErrCodeDownloadRejected:
			return CategoryBusinessRule
		default:
			return CategoryClientError
		}
	}

	if svcErr, ok := IsServiceError(err); ok && svcErr.HTTPStatus < http.StatusInternalServerError {
		return CategoryClientError
	}

	return CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	if _, ok := IsGatewayError(err); ok {
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUniqueCodeTaken),
		errors.Is(err, domain.ErrSignatureInvalid):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPhotoNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrActivePaymentExists),
		errors.Is(err, domain.ErrPaymentNotConfirmed),
		errors.Is(err, domain.ErrDownloadRejected):
		return http.StatusConflict

	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusGone

	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	// Default to 500
	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	if _, ok := IsGatewayError(err); ok {
		return ErrCodeGatewayRefused
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrCodeTimeout
	}

	return ErrCodeInternal
}

// PublicMessage is the text shown to the end user. Infrastructure failures
// are reduced to a generic message so internals never reach the browser.
func PublicMessage(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Message
	}
	if _, ok := IsGatewayError(err); ok {
		return "Failed to create payment"
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "An internal error occurred"
}
