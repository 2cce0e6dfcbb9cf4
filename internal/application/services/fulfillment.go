package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/google/uuid"
)

// Redirect statuses the gateway appends to the return URL. "unknown" is not
// a payment status, only a routing hint.
const (
	RedirectSucceeded = "succeeded"
	RedirectFailed    = "failed"
	RedirectCanceled  = "canceled"
	RedirectUnknown   = "unknown"
)

type FulfillmentOptions struct {
	BaseURL    string
	Currency   string
	PaymentTTL time.Duration
}

type FulfillmentService struct {
	photos    application.PhotoRepository
	payments  application.PaymentRepository
	events    application.WebhookEventRepository
	gateway   application.PaymentGateway
	links     application.LinkIssuer
	qr        application.QRRenderer
	artifacts application.ArtifactStore
	notifier  application.StatusNotifier
	metrics   application.Metrics
	catalog   domain.FrameCatalog
	opts      FulfillmentOptions
	logger    *slog.Logger
}

func NewFulfillmentService(
	photos application.PhotoRepository,
	payments application.PaymentRepository,
	events application.WebhookEventRepository,
	gateway application.PaymentGateway,
	links application.LinkIssuer,
	qr application.QRRenderer,
	artifacts application.ArtifactStore,
	catalog domain.FrameCatalog,
	opts FulfillmentOptions,
	logger *slog.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		photos:    photos,
		payments:  payments,
		events:    events,
		gateway:   gateway,
		links:     links,
		qr:        qr,
		artifacts: artifacts,
		notifier:  application.NopNotifier{},
		metrics:   application.NopMetrics{},
		catalog:   catalog,
		opts:      opts,
		logger:    logger,
	}
}

func (s *FulfillmentService) WithNotifier(n application.StatusNotifier) *FulfillmentService {
	s.notifier = n
	return s
}

func (s *FulfillmentService) WithMetrics(m application.Metrics) *FulfillmentService {
	s.metrics = m
	return s
}

type CheckoutResult struct {
	RedirectURL      string
	PaymentToken     string
	PaymentRequestID string
	Reused           bool
}

// InitiateCheckout asks the gateway for a hosted checkout page for the
// session's pending photo. A photo that already has a pending payment gets
// that payment's page back instead of a second request.
func (s *FulfillmentService) InitiateCheckout(ctx context.Context, sess *domain.Session) (*CheckoutResult, error) {
	frame, err := s.catalog.Lookup(sess.FrameKey)
	if err != nil {
		return nil, err
	}

	filename := sess.DeliverableFilename()
	if filename == "" {
		return nil, application.NewSessionMissingError("captured photo")
	}

	pending := domain.PhotoPending
	photo, err := s.photos.FindByFilename(ctx, filename, &pending)
	if err != nil {
		return nil, err
	}

	existing, err := s.payments.FindActiveByPhotoID(ctx, photo.ID)
	switch {
	case err == nil:
		return s.resumeCheckout(sess, existing), nil
	case !errors.Is(err, domain.ErrPaymentNotFound):
		return nil, application.NewInternalError(err)
	}

	referenceID := uuid.NewString()
	req, err := s.gateway.CreatePaymentRequest(ctx, application.CreatePaymentInput{
		Amount:      frame.Price,
		Currency:    s.opts.Currency,
		Purpose:     frame.Label + " frame photo",
		ReferenceID: referenceID,
		RedirectURL: s.opts.BaseURL + "/redirect",
		WebhookURL:  s.opts.BaseURL + "/payment-confirmation/webhook",
	})
	if err != nil {
		s.metrics.CheckoutFailed(string(application.CategorizeError(err)))
		s.logger.Error("failed to create payment request",
			"photo_id", photo.ID,
			"reference_id", referenceID,
			"error", err)
		return nil, err
	}

	payment, err := s.payments.Create(ctx, application.CreatePaymentParams{
		RequestID:   req.ID,
		ReferenceID: referenceID,
		PhotoID:     &photo.ID,
		Frame:       frame.Label,
		Price:       frame.Price,
		Currency:    s.opts.Currency,
		CheckoutURL: req.URL,
		TTL:         s.opts.PaymentTTL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrActivePaymentExists) {
			// A concurrent click won; hand back its checkout.
			existing, findErr := s.payments.FindActiveByPhotoID(ctx, photo.ID)
			if findErr != nil {
				return nil, application.NewInternalError(findErr)
			}
			s.logger.Warn("discarding duplicate payment request",
				"photo_id", photo.ID,
				"payment_request_id", req.ID,
				"kept_payment_request_id", existing.PaymentRequestID)
			return s.resumeCheckout(sess, existing), nil
		}
		return nil, application.NewInternalError(err)
	}

	token := uuid.NewString()
	sess.BeginCheckout(token, payment.PaymentRequestID)

	s.metrics.CheckoutStarted(frame.Key)
	s.logger.Info("checkout started",
		"photo_id", photo.ID,
		"payment_request_id", payment.PaymentRequestID,
		"frame", frame.Key,
		"price", frame.Price.StringFixed(2))

	return &CheckoutResult{
		RedirectURL:      payment.CheckoutURL,
		PaymentToken:     token,
		PaymentRequestID: payment.PaymentRequestID,
	}, nil
}

func (s *FulfillmentService) resumeCheckout(sess *domain.Session, payment *domain.Payment) *CheckoutResult {
	token := uuid.NewString()
	sess.BeginCheckout(token, payment.PaymentRequestID)

	s.logger.Info("reusing open checkout",
		"payment_request_id", payment.PaymentRequestID)

	return &CheckoutResult{
		RedirectURL:      payment.CheckoutURL,
		PaymentToken:     token,
		PaymentRequestID: payment.PaymentRequestID,
		Reused:           true,
	}
}

// WebhookDelivery is one inbound gateway notification as received on the wire.
type WebhookDelivery struct {
	Body        []byte
	Signature   string
	EventType   string
	EventObject string
}

type WebhookResult struct {
	PaymentRequestID string
	Status           domain.PaymentStatus
	Changed          bool
	Ignored          bool
}

// HandleWebhook authenticates a delivery against its raw body and applies the
// reported status to the payment. It never touches photos.
func (s *FulfillmentService) HandleWebhook(ctx context.Context, d WebhookDelivery) (*WebhookResult, error) {
	event := &domain.WebhookEvent{
		EventType:   d.EventType,
		EventObject: d.EventObject,
		Payload:     string(d.Body),
	}

	if d.Signature == "" || !s.gateway.VerifySignature(d.Body, d.Signature) {
		s.metrics.WebhookReceived("bad_signature")
		s.audit(ctx, event, "signature mismatch")
		s.logger.Warn("rejected webhook with invalid signature",
			"event_type", d.EventType,
			"signature_present", d.Signature != "")
		if d.Signature == "" {
			return nil, &domain.DomainError{Code: domain.ErrCodeSignatureInvalid, Message: "no signature provided"}
		}
		return nil, domain.ErrSignatureInvalid
	}
	event.SignatureValid = true

	payload, err := s.gateway.ParseWebhook(d.Body)
	if err != nil {
		s.metrics.WebhookReceived("malformed")
		s.audit(ctx, event, err.Error())
		return nil, err
	}
	event.PaymentRequestID = &payload.PaymentRequestID
	event.GatewayPaymentID = &payload.PaymentID

	if err := s.events.Record(ctx, event); err != nil {
		s.logger.Error("failed to record webhook event", "error", err)
	}

	result := &WebhookResult{
		PaymentRequestID: payload.PaymentRequestID,
		Status:           payload.Status,
	}

	payment, changed, err := s.payments.ApplyStatus(ctx, payload.PaymentRequestID, payload.PaymentID, payload.Status)
	if err != nil {
		s.markEvent(ctx, event, err.Error())
		if errors.Is(err, domain.ErrPaymentNotFound) {
			s.metrics.WebhookReceived("unknown_request")
			s.logger.Warn("webhook for untracked payment request",
				"payment_request_id", payload.PaymentRequestID,
				"status", payload.Status)
			result.Ignored = true
			return result, nil
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			// A signed notification can trail a terminal status the kiosk
			// already settled on. Acknowledge it so the gateway stops retrying.
			s.metrics.WebhookReceived("stale")
			current := ""
			if payment != nil {
				current = string(payment.Status)
			}
			s.logger.Warn("ignoring webhook behind a settled payment",
				"payment_request_id", payload.PaymentRequestID,
				"status", payload.Status,
				"current_status", current)
			result.Ignored = true
			return result, nil
		}
		s.metrics.WebhookReceived("rejected")
		s.logger.Error("failed to apply webhook status",
			"payment_request_id", payload.PaymentRequestID,
			"status", payload.Status,
			"error", err)
		return nil, err
	}

	result.Changed = changed
	if !changed {
		s.metrics.WebhookReceived("duplicate")
		s.logger.Info("duplicate webhook delivery",
			"payment_request_id", payment.PaymentRequestID,
			"status", payment.Status)
		return result, nil
	}

	s.metrics.WebhookReceived("applied")
	s.metrics.PaymentStatusChanged(payment.Status)
	s.notifier.PaymentStatusChanged(payment.PaymentRequestID, payment.Status)
	s.logger.Info("payment status updated from webhook",
		"payment_request_id", payment.PaymentRequestID,
		"payment_id", payload.PaymentID,
		"status", payment.Status)

	return result, nil
}

func (s *FulfillmentService) audit(ctx context.Context, event *domain.WebhookEvent, processingError string) {
	event.ProcessingError = &processingError
	if err := s.events.Record(ctx, event); err != nil {
		s.logger.Error("failed to record webhook event", "error", err)
	}
}

func (s *FulfillmentService) markEvent(ctx context.Context, event *domain.WebhookEvent, message string) {
	if event.ID == 0 {
		return
	}
	if err := s.events.SetProcessingError(ctx, event.ID, message); err != nil {
		s.logger.Error("failed to update webhook event", "event_id", event.ID, "error", err)
	}
}

type RedirectResult struct {
	PaymentRequestID string
	Status           string
	Next             string
}

// HandleRedirect restores the session snapshot when the visitor returns from
// the hosted checkout page. A cancellation is recorded immediately because
// the gateway does not always notify about it.
func (s *FulfillmentService) HandleRedirect(ctx context.Context, sess *domain.Session, reference, status string) (*RedirectResult, error) {
	if !sess.HasOpenCheckout() {
		return nil, domain.NewValidationError("invalid session token")
	}
	if reference == "" {
		return nil, domain.NewMissingRequiredFieldError("reference")
	}
	if !validRedirectStatus(status) {
		return nil, domain.NewValidationError("invalid status %q", status)
	}
	if reference != sess.PaymentRequestID {
		return nil, domain.NewValidationError("reference does not match the open checkout")
	}
	if err := sess.ResumeFromGateway(); err != nil {
		return nil, err
	}

	result := &RedirectResult{
		PaymentRequestID: reference,
		Status:           status,
		Next:             failurePath(status, reference),
	}

	switch status {
	case RedirectSucceeded:
		result.Next = successPath(reference)
	case RedirectCanceled:
		succeeded, err := s.cancelCheckout(ctx, sess, reference)
		if err != nil {
			return nil, err
		}
		if succeeded {
			result.Status = RedirectSucceeded
			result.Next = successPath(reference)
		}
	}

	return result, nil
}

// cancelCheckout records a visitor cancellation on both records. It reports
// true when the payment turned out to have succeeded already, in which case
// nothing is changed.
func (s *FulfillmentService) cancelCheckout(ctx context.Context, sess *domain.Session, requestID string) (bool, error) {
	payment, changed, err := s.payments.ApplyStatus(ctx, requestID, "", domain.PaymentCanceled)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) && payment != nil && payment.Succeeded() {
			s.logger.Warn("cancel redirect for a payment that already succeeded",
				"payment_request_id", requestID)
			return true, nil
		}
		if !errors.Is(err, domain.ErrPaymentNotFound) && !errors.Is(err, domain.ErrInvalidTransition) {
			return false, application.NewInternalError(err)
		}
		s.logger.Warn("could not cancel payment", "payment_request_id", requestID, "error", err)
	}
	if changed {
		s.metrics.PaymentStatusChanged(domain.PaymentCanceled)
		s.notifier.PaymentStatusChanged(requestID, domain.PaymentCanceled)
	}

	return false, s.closePhoto(ctx, sess, domain.PhotoCanceled)
}

// closePhoto moves the session's pending photo to a terminal failure state.
// A photo that already left PENDING is left alone.
func (s *FulfillmentService) closePhoto(ctx context.Context, sess *domain.Session, target domain.PhotoStatus) error {
	filename := sess.DeliverableFilename()
	if filename == "" {
		return nil
	}

	pending := domain.PhotoPending
	photo, err := s.photos.FindByFilename(ctx, filename, &pending)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			s.logger.Info("no pending photo to close", "filename", filename)
			return nil
		}
		return application.NewInternalError(err)
	}

	if err := s.photos.Transition(ctx, photo, target); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			s.logger.Warn("photo left pending concurrently",
				"photo_id", photo.ID,
				"status", photo.Status,
				"target", target)
			return nil
		}
		return err
	}

	s.metrics.PhotoFinalized(target)
	s.logger.Info("photo closed", "photo_id", photo.ID, "status", target)
	return nil
}

type SuccessResult struct {
	PaymentRequestID string
	UniqueCode       string
	DownloadURL      string
	QRCode           string
	// FailureRedirect is set when the success page must not be shown.
	FailureRedirect string
}

// FinalizeSuccess is the only path that marks a photo PAID. The query string
// only names the payment to re-check; the decision rests on the persisted
// payment status.
func (s *FulfillmentService) FinalizeSuccess(ctx context.Context, sess *domain.Session, status, requestID string) (*SuccessResult, error) {
	if sess.PaymentRequestID == "" {
		return nil, application.NewSessionMissingError("payment request")
	}

	fail := func(reason string) (*SuccessResult, error) {
		s.logger.Warn("success page refused",
			"payment_request_id", requestID,
			"reason", reason)
		return &SuccessResult{
			PaymentRequestID: requestID,
			FailureRedirect:  failurePath(RedirectFailed, requestID),
		}, nil
	}

	if status != RedirectSucceeded || requestID == "" {
		return fail("status is not succeeded")
	}
	if requestID != sess.PaymentRequestID {
		return fail("payment request does not belong to this session")
	}

	payment, err := s.payments.FindByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return fail("payment not found")
		}
		return nil, application.NewInternalError(err)
	}
	if !payment.Succeeded() {
		return fail("payment status is " + string(payment.Status))
	}
	if payment.PhotoID == nil {
		return fail("payment has no photo")
	}

	photo, err := s.photos.FindByID(ctx, *payment.PhotoID)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return fail("photo not found")
		}
		return nil, application.NewInternalError(err)
	}

	wasPaid := photo.Status == domain.PhotoPaid
	if err := s.photos.MarkPaid(ctx, photo.ID, payment.PaymentRequestID); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return fail("photo is " + string(photo.Status))
		}
		return nil, err
	}
	if !wasPaid {
		s.metrics.PhotoFinalized(domain.PhotoPaid)
		s.logger.Info("photo paid",
			"photo_id", photo.ID,
			"unique_code", photo.UniqueCode,
			"payment_request_id", payment.PaymentRequestID)
	}

	if sess.PreviewPath != "" {
		if err := s.artifacts.Remove(sess.PreviewPath); err != nil {
			s.logger.Error("failed to remove preview", "path", sess.PreviewPath, "error", err)
		} else {
			s.metrics.ArtifactsPurged(1)
			sess.RecordArtifact(domain.VariantPreview, "", "")
		}
	}

	link, err := s.links.Issue(photo.Filename, true, true)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	qr, err := s.qr.PNGBase64(link)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	return &SuccessResult{
		PaymentRequestID: payment.PaymentRequestID,
		UniqueCode:       photo.UniqueCode,
		DownloadURL:      link,
		QRCode:           qr,
	}, nil
}

type FailureResult struct {
	PaymentRequestID string
	Status           string
	// Next is set when the payment actually succeeded and the visitor
	// belongs on the success page.
	Next string
}

// HandleFailure closes the session's photo: CANCELED when the visitor
// canceled, FAILED for every other failure status. Nothing is changed for a
// payment request that is not the session's own or that already succeeded.
func (s *FulfillmentService) HandleFailure(ctx context.Context, sess *domain.Session, status, requestID string) (*FailureResult, error) {
	if requestID == "" {
		requestID = sess.PaymentRequestID
	}
	if requestID == "" {
		return nil, domain.NewMissingRequiredFieldError("payment_request_id")
	}
	if status != RedirectCanceled && status != RedirectFailed && status != RedirectUnknown {
		return nil, domain.NewValidationError("invalid failure status %q", status)
	}

	result := &FailureResult{PaymentRequestID: requestID, Status: status}

	if requestID != sess.PaymentRequestID {
		s.logger.Warn("failure page for a foreign payment request",
			"payment_request_id", requestID)
		return result, nil
	}

	payment, err := s.payments.FindByRequestID(ctx, requestID)
	switch {
	case err == nil && payment.Succeeded():
		s.logger.Warn("failure page for a succeeded payment", "payment_request_id", requestID)
		result.Next = successPath(requestID)
		return result, nil
	case err != nil && !errors.Is(err, domain.ErrPaymentNotFound):
		return nil, application.NewInternalError(err)
	}

	if status == RedirectCanceled {
		succeeded, err := s.cancelCheckout(ctx, sess, requestID)
		if err != nil {
			return nil, err
		}
		if succeeded {
			result.Next = successPath(requestID)
		}
		return result, nil
	}

	if err := s.closePhoto(ctx, sess, domain.PhotoFailed); err != nil {
		return nil, err
	}
	return result, nil
}

// Abandon handles the visitor leaving: an unpaid capture is deleted with its
// files and the session is reset.
func (s *FulfillmentService) Abandon(ctx context.Context, sess *domain.Session) error {
	removed, err := discardCapture(ctx, s.photos, s.artifacts, sess, s.logger)
	s.metrics.ArtifactsPurged(removed)
	if err != nil && !errors.Is(err, domain.ErrPhotoNotFound) && !errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}

	sess.Reset()
	return nil
}

// PaymentStatus reads the persisted status for polling pages.
func (s *FulfillmentService) PaymentStatus(ctx context.Context, requestID string) (*domain.Payment, error) {
	if requestID == "" {
		return nil, domain.NewMissingRequiredFieldError("payment_request_id")
	}
	return s.payments.FindByRequestID(ctx, requestID)
}

func validRedirectStatus(status string) bool {
	switch status {
	case RedirectSucceeded, RedirectFailed, RedirectCanceled, RedirectUnknown:
		return true
	}
	return false
}

func successPath(requestID string) string {
	return "/success?" + url.Values{
		"status":             {RedirectSucceeded},
		"payment_request_id": {requestID},
	}.Encode()
}

func failurePath(status, requestID string) string {
	return "/fail?" + url.Values{
		"status":             {status},
		"payment_request_id": {requestID},
	}.Encode()
}
