package testhelpers

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/config"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/hitpay"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	WebhookSalt     = "test-salt"
	LinkSecret      = "test-link-secret"
	KioskBaseURL    = "http://kiosk.local"
	OriginalDir     = "/images/full"
	PreviewDir      = "/images/preview"
	AIDir           = "/images/ai"
	DefaultCurrency = "SGD"
)

// NewArtifactStore returns a store on an in-memory filesystem.
func NewArtifactStore(t *testing.T) (*storage.Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	store, err := storage.NewStore(fsys, config.StorageConfig{
		OriginalDir: OriginalDir,
		PreviewDir:  PreviewDir,
		AIDir:       AIDir,
	})
	require.NoError(t, err)
	return store, fsys
}

// ImageDataURL is what a canvas toDataURL call posts.
func ImageDataURL(content string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(content))
}

// SignedWebhook builds a gateway notification body and its valid signature.
func SignedWebhook(paymentID, requestID, status string) ([]byte, string) {
	body := []byte(fmt.Sprintf(
		`{"id":%q,"payment_request_id":%q,"status":%q,"amount":"10.00","currency":"sgd"}`,
		paymentID, requestID, status,
	))
	return body, hitpay.Sign(body, WebhookSalt)
}

// CreatePendingPhoto inserts a PENDING photo and writes its file.
func CreatePendingPhoto(
	t *testing.T,
	ctx context.Context,
	photos application.PhotoRepository,
	fsys afero.Fs,
	savedAt time.Time,
) *domain.Photo {
	t.Helper()

	code, err := domain.GenerateUniqueCode()
	require.NoError(t, err)

	filename := "photo_" + uuid.NewString() + ".png"
	path := OriginalDir + "/" + filename
	require.NoError(t, afero.WriteFile(fsys, path, []byte("original"), 0o644))

	photo, err := domain.NewPhoto(code, filename, path, "7 cm x 10 cm", domain.PhotoOriginal, savedAt)
	require.NoError(t, err)
	require.NoError(t, photos.Create(ctx, photo))
	return photo
}

// CreatePendingPayment inserts a pending payment for the photo.
func CreatePendingPayment(
	t *testing.T,
	ctx context.Context,
	payments application.PaymentRepository,
	photo *domain.Photo,
	ttl time.Duration,
) *domain.Payment {
	t.Helper()

	payment, err := payments.Create(ctx, application.CreatePaymentParams{
		RequestID:   "PR-" + uuid.NewString(),
		ReferenceID: uuid.NewString(),
		PhotoID:     &photo.ID,
		Frame:       photo.Frame,
		Price:       decimal.RequireFromString("10.00"),
		Currency:    DefaultCurrency,
		CheckoutURL: "https://checkout.example/pay",
		TTL:         ttl,
	})
	require.NoError(t, err)
	return payment
}

// CreatePaidPhoto drives a photo to PAID through a succeeded payment.
func CreatePaidPhoto(
	t *testing.T,
	ctx context.Context,
	photos application.PhotoRepository,
	payments application.PaymentRepository,
	fsys afero.Fs,
) *domain.Photo {
	t.Helper()

	photo := CreatePendingPhoto(t, ctx, photos, fsys, time.Now().UTC())
	payment := CreatePendingPayment(t, ctx, payments, photo, 10*time.Minute)

	_, _, err := payments.ApplyStatus(ctx, payment.PaymentRequestID, "TXN-"+uuid.NewString(), domain.PaymentSucceeded)
	require.NoError(t, err)
	require.NoError(t, photos.MarkPaid(ctx, photo.ID, payment.PaymentRequestID))

	paid, err := photos.FindByID(ctx, photo.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PhotoPaid, paid.Status)
	return paid
}

// ForceStatus sets a photo status directly, for administrative states the
// flow never writes.
func (td *TestDatabase) ForceStatus(t *testing.T, photoID int64, status domain.PhotoStatus) {
	t.Helper()
	_, err := td.DB.Pool.Exec(context.Background(),
		`UPDATE photos SET status = $1 WHERE id = $2`, string(status), photoID)
	require.NoError(t, err)
}
