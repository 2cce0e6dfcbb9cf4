package domain

import "time"

// WebhookEvent is the audit record of one inbound gateway delivery, kept
// whether or not the delivery was accepted.
type WebhookEvent struct {
	ID               int64
	PaymentRequestID *string
	GatewayPaymentID *string
	EventType        string
	EventObject      string
	Payload          string
	SignatureValid   bool
	ProcessingError  *string
	ReceivedAt       time.Time
}
