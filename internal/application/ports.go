package application

import (
	"context"
	"io"
	"time"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentInput is what the kiosk asks the gateway to charge.
type CreatePaymentInput struct {
	Amount      decimal.Decimal
	Currency    string
	Purpose     string
	ReferenceID string
	RedirectURL string
	WebhookURL  string
}

// PaymentRequest is the gateway's answer to a create call.
type PaymentRequest struct {
	ID  string
	URL string
}

// WebhookPayload is the part of a gateway notification the kiosk acts on.
type WebhookPayload struct {
	PaymentID        string
	PaymentRequestID string
	Status           domain.PaymentStatus
}

// PaymentGateway is the port for the external payment gateway.
type PaymentGateway interface {
	CreatePaymentRequest(ctx context.Context, in CreatePaymentInput) (*PaymentRequest, error)
	VerifySignature(rawBody []byte, signature string) bool
	ParseWebhook(rawBody []byte) (*WebhookPayload, error)
}

type CreatePaymentParams struct {
	RequestID   string
	ReferenceID string
	PhotoID     *int64
	Frame       string
	Price       decimal.Decimal
	Currency    string
	CheckoutURL string
	TTL         time.Duration
}

type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.Photo) error
	FindByID(ctx context.Context, id int64) (*domain.Photo, error)
	FindByUniqueCode(ctx context.Context, code string) (*domain.Photo, error)
	FindByFilename(ctx context.Context, filename string, status *domain.PhotoStatus) (*domain.Photo, error)
	Transition(ctx context.Context, photo *domain.Photo, target domain.PhotoStatus) error
	MarkPaid(ctx context.Context, photoID int64, paymentRequestID string) error
	Delete(ctx context.Context, photo *domain.Photo) error
	ReplaceArtifact(ctx context.Context, photo *domain.Photo, filename, path string, photoType domain.PhotoType) error
	AttachPreview(ctx context.Context, photo *domain.Photo, path string) error
	FindAbandoned(ctx context.Context, cutoff, now time.Time, limit int) ([]*domain.Photo, error)
	DeleteIfAbandoned(ctx context.Context, photoID int64, now time.Time) (bool, error)
	FindUnpurgedFailures(ctx context.Context, limit int) ([]*domain.Photo, error)
	MarkPurged(ctx context.Context, photoID int64, at time.Time) error
}

type PaymentRepository interface {
	Create(ctx context.Context, params CreatePaymentParams) (*domain.Payment, error)
	FindByRequestID(ctx context.Context, requestID string) (*domain.Payment, error)
	FindActiveByPhotoID(ctx context.Context, photoID int64) (*domain.Payment, error)
	ApplyStatus(ctx context.Context, requestID, gatewayPaymentID string, status domain.PaymentStatus) (*domain.Payment, bool, error)
}

type WebhookEventRepository interface {
	Record(ctx context.Context, event *domain.WebhookEvent) error
	SetProcessingError(ctx context.Context, id int64, message string) error
}

// SessionStore persists Session Context between browser requests.
type SessionStore interface {
	// Load returns an empty session for an unknown id.
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
}

// ArtifactStore holds the image files of every capture.
type ArtifactStore interface {
	Save(variant domain.ArtifactVariant, filename string, data []byte) (string, error)
	Open(variant domain.ArtifactVariant, filename string) (io.ReadCloser, error)
	Remove(path string) error
}

type LinkIssuer interface {
	Issue(filename string, expires, download bool) (string, error)
	Resolve(token string) (string, error)
}

type QRRenderer interface {
	PNGBase64(content string) (string, error)
}

// StatusNotifier pushes persisted payment status changes to open kiosk pages.
type StatusNotifier interface {
	PaymentStatusChanged(requestID string, status domain.PaymentStatus)
}

// Metrics records business events of the kiosk.
type Metrics interface {
	CheckoutStarted(frame string)
	CheckoutFailed(reason string)
	WebhookReceived(outcome string)
	PaymentStatusChanged(status domain.PaymentStatus)
	PhotoFinalized(status domain.PhotoStatus)
	ArtifactsPurged(n int)
}

// NopMetrics discards every event. Used when metrics are not wired.
type NopMetrics struct{}

func (NopMetrics) CheckoutStarted(string)                    {}
func (NopMetrics) CheckoutFailed(string)                     {}
func (NopMetrics) WebhookReceived(string)                    {}
func (NopMetrics) PaymentStatusChanged(domain.PaymentStatus) {}
func (NopMetrics) PhotoFinalized(domain.PhotoStatus)         {}
func (NopMetrics) ArtifactsPurged(int)                       {}

type NopNotifier struct{}

func (NopNotifier) PaymentStatusChanged(string, domain.PaymentStatus) {}
