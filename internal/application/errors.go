package application

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError carries an HTTP status chosen by the orchestration layer.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeSessionMissing = "SESSION_MISSING"
	ErrCodeGatewayRefused = "GATEWAY_REFUSED"
	ErrCodeForbidden      = "FORBIDDEN"
)

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewTimeoutError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeTimeout,
		Message:    "Request timed out waiting for completion",
		HTTPStatus: http.StatusRequestTimeout,
	}
}

// NewSessionMissingError reports a step reached without the session data it depends on.
func NewSessionMissingError(what string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSessionMissing,
		Message:    what + " not found in session",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// GatewayError is a non-201 answer from the payment gateway.
type GatewayError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error: %s (status: %d)", e.Message, e.StatusCode)
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
