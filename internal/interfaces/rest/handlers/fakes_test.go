package handlers_test

import (
	"context"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/ws"
)

type fakeCapture struct {
	setSizeFn     func(sess *domain.Session, frameKey string) (domain.Frame, error)
	summaryFn     func(sess *domain.Session) (*services.PaymentSummary, error)
	saveImageFn   func(ctx context.Context, sess *domain.Session, variant domain.ArtifactVariant, dataURL string) (*services.SavedImage, error)
	deletePhotoFn func(ctx context.Context, sess *domain.Session) error
}

func (f *fakeCapture) SetSize(sess *domain.Session, frameKey string) (domain.Frame, error) {
	return f.setSizeFn(sess, frameKey)
}

func (f *fakeCapture) Summary(sess *domain.Session) (*services.PaymentSummary, error) {
	return f.summaryFn(sess)
}

func (f *fakeCapture) SaveImage(ctx context.Context, sess *domain.Session, variant domain.ArtifactVariant, dataURL string) (*services.SavedImage, error) {
	return f.saveImageFn(ctx, sess, variant, dataURL)
}

func (f *fakeCapture) DeletePhoto(ctx context.Context, sess *domain.Session) error {
	return f.deletePhotoFn(ctx, sess)
}

type fakeCheckout struct {
	initiateFn      func(ctx context.Context, sess *domain.Session) (*services.CheckoutResult, error)
	webhookFn       func(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error)
	redirectFn      func(ctx context.Context, sess *domain.Session, reference, status string) (*services.RedirectResult, error)
	successFn       func(ctx context.Context, sess *domain.Session, status, requestID string) (*services.SuccessResult, error)
	failureFn       func(ctx context.Context, sess *domain.Session, status, requestID string) (*services.FailureResult, error)
	abandonFn       func(ctx context.Context, sess *domain.Session) error
	paymentStatusFn func(ctx context.Context, requestID string) (*domain.Payment, error)
}

func (f *fakeCheckout) InitiateCheckout(ctx context.Context, sess *domain.Session) (*services.CheckoutResult, error) {
	return f.initiateFn(ctx, sess)
}

func (f *fakeCheckout) HandleWebhook(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error) {
	return f.webhookFn(ctx, d)
}

func (f *fakeCheckout) HandleRedirect(ctx context.Context, sess *domain.Session, reference, status string) (*services.RedirectResult, error) {
	return f.redirectFn(ctx, sess, reference, status)
}

func (f *fakeCheckout) FinalizeSuccess(ctx context.Context, sess *domain.Session, status, requestID string) (*services.SuccessResult, error) {
	return f.successFn(ctx, sess, status, requestID)
}

func (f *fakeCheckout) HandleFailure(ctx context.Context, sess *domain.Session, status, requestID string) (*services.FailureResult, error) {
	return f.failureFn(ctx, sess, status, requestID)
}

func (f *fakeCheckout) Abandon(ctx context.Context, sess *domain.Session) error {
	return f.abandonFn(ctx, sess)
}

func (f *fakeCheckout) PaymentStatus(ctx context.Context, requestID string) (*domain.Payment, error) {
	return f.paymentStatusFn(ctx, requestID)
}

type fakeAdmin struct {
	lookupFn func(ctx context.Context, code string) (*services.AdminDownload, error)
}

func (f *fakeAdmin) LookupDownload(ctx context.Context, code string) (*services.AdminDownload, error) {
	return f.lookupFn(ctx, code)
}

type fakeDownloads struct {
	openFn func(ctx context.Context, token string) (*services.Download, error)
}

func (f *fakeDownloads) Open(ctx context.Context, token string) (*services.Download, error) {
	return f.openFn(ctx, token)
}

type fakeStatusStream struct{}

func (fakeStatusStream) Serve(w http.ResponseWriter, r *http.Request, requestID string, initial *ws.StatusUpdate) error {
	return nil
}

type fakeHealth struct {
	err error
}

func (f *fakeHealth) Ping(ctx context.Context) error { return f.err }
