package postgres

import (
	"time"
)

// PhotoModel is the row shape of the photos table.
type PhotoModel struct {
	ID           int64
	UniqueCode   string
	Filename     string
	Path         string
	Type         string
	OriginalPath string
	PreviewPath  string
	Frame        string
	SavedAt      time.Time
	Status       string
	PurgedAt     *time.Time
}

// PaymentModel is the row shape of the payments table. Price is read as
// text to keep NUMERIC exact.
type PaymentModel struct {
	ID               int64
	PaymentRequestID string
	PaymentID        *string
	ReferenceID      string
	PhotoID          *int64
	Status           string
	Frame            string
	Price            string
	Currency         string
	CheckoutURL      string
	StartTime        time.Time
	EndTime          time.Time
}

type WebhookEventModel struct {
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
