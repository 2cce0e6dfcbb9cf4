// Package domain holds the photo and payment entities of the kiosk and the
// rules for moving them between states.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus mirrors the gateway's vocabulary.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCanceled  PaymentStatus = "canceled"
)

// ParsePaymentStatus accepts only the statuses a payment row may hold.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	switch status {
	case PaymentPending, PaymentSucceeded, PaymentFailed, PaymentCanceled:
		return status, nil
	}
	return "", NewValidationError("unknown payment status %q", s)
}

type Payment struct {
	ID               int64
	PaymentRequestID string
	PaymentID        *string
	ReferenceID      string
	PhotoID          *int64
	Status           PaymentStatus
	Frame            string
	Price            decimal.Decimal
	Currency         string
	CheckoutURL      string
	StartTime        time.Time
	EndTime          time.Time
}

func NewPayment(
	paymentRequestID string,
	referenceID string,
	photoID *int64,
	frame string,
	price decimal.Decimal,
	currency string,
	checkoutURL string,
	now time.Time,
	ttl time.Duration,
) (*Payment, error) {
	if paymentRequestID == "" {
		return nil, NewMissingRequiredFieldError("payment request id")
	}
	if referenceID == "" {
		return nil, NewMissingRequiredFieldError("reference id")
	}
	if frame == "" {
		return nil, NewMissingRequiredFieldError("frame")
	}
	if !price.IsPositive() {
		return nil, NewValidationError("price must be positive, got %s", price.StringFixed(2))
	}
	if currency == "" {
		return nil, NewMissingRequiredFieldError("currency")
	}

	return &Payment{
		PaymentRequestID: paymentRequestID,
		ReferenceID:      referenceID,
		PhotoID:          photoID,
		Status:           PaymentPending,
		Frame:            frame,
		Price:            price,
		Currency:         currency,
		CheckoutURL:      checkoutURL,
		StartTime:        now,
		EndTime:          now.Add(ttl),
	}, nil
}

// ApplyStatus records a gateway outcome. Re-applying the stored status only
// records the transaction id and reports changed=false. EndTime is the
// checkout deadline while pending and becomes the settlement time once the
// payment is terminal; a repeated pending delivery never moves it.
func (p *Payment) ApplyStatus(status PaymentStatus, gatewayPaymentID string, now time.Time) (bool, error) {
	if status == p.Status {
		p.recordPaymentID(gatewayPaymentID)
		return false, nil
	}
	if err := p.canTransitionTo(status); err != nil {
		return false, err
	}
	p.Status = status
	p.recordPaymentID(gatewayPaymentID)
	if p.IsTerminal() {
		p.EndTime = now
	}
	return true, nil
}

func (p *Payment) recordPaymentID(gatewayPaymentID string) {
	if gatewayPaymentID != "" {
		p.PaymentID = &gatewayPaymentID
	}
}

func (p *Payment) canTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case PaymentPending:
		if slices.Contains([]PaymentStatus{PaymentSucceeded, PaymentFailed, PaymentCanceled}, target) {
			return nil
		}
	}
	return NewInvalidTransitionError(string(p.Status), string(target))
}

func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentSucceeded, PaymentFailed, PaymentCanceled:
		return true
	default:
		return false
	}
}

func (p *Payment) Succeeded() bool {
	return p.Status == PaymentSucceeded
}
