package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/config"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/auth"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/session"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest/middleware"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	router    http.Handler
	sessions  *session.Store
	capture   *fakeCapture
	checkout  *fakeCheckout
	admin     *fakeAdmin
	downloads *fakeDownloads
	health    *fakeHealth
}

func newHarness(t *testing.T, allowedIPs ...string) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := session.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	adminAuth := auth.NewAdminAuth(config.AdminConfig{
		Username:     "staff",
		PasswordHash: hash,
		TokenSecret:  "admin-secret",
		TokenTTL:     time.Hour,
	}, false)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		sessions:  session.NewStore(client, time.Hour),
		capture:   &fakeCapture{},
		checkout:  &fakeCheckout{},
		admin:     &fakeAdmin{},
		downloads: &fakeDownloads{},
		health:    &fakeHealth{},
	}

	hs := handlers.NewHandlers(handlers.Dependencies{
		Capture:   h.capture,
		Checkout:  h.checkout,
		Admin:     h.admin,
		Downloads: h.downloads,
		AdminAuth: adminAuth,
		Sessions:  h.sessions,
		Status:    fakeStatusStream{},
		Health:    h.health,
		Logger:    logger,
	})
	h.router = handlers.NewRouter(hs, handlers.RouterConfig{
		AllowedIPs:     allowedIPs,
		RequestTimeout: 5 * time.Second,
		MetricsPath:    "/metrics",
	}, logger)
	return h
}

// seedSession stores sess and returns the cookie that selects it.
func (h *harness) seedSession(t *testing.T, mutate func(sess *domain.Session)) *http.Cookie {
	t.Helper()
	sess := domain.NewSession(uuid.NewString())
	if mutate != nil {
		mutate(sess)
	}
	require.NoError(t, h.sessions.Save(context.Background(), sess))
	return &http.Cookie{Name: middleware.SessionCookieName, Value: sess.ID}
}

func (h *harness) loadSession(t *testing.T, id string) *domain.Session {
	t.Helper()
	sess, err := h.sessions.Load(context.Background(), id)
	require.NoError(t, err)
	return sess
}

func (h *harness) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	return envelope.Error.Code
}

func selectFromCatalog(sess *domain.Session, key string) (domain.Frame, error) {
	frame, err := domain.DefaultFrameCatalog().Lookup(key)
	if err != nil {
		return domain.Frame{}, err
	}
	sess.SelectFrame(frame)
	return frame, nil
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSetSize_IssuesCookieAndPersistsSession(t *testing.T) {
	h := newHarness(t)
	h.capture.setSizeFn = selectFromCatalog

	rec := h.do(formRequest("/set_size", url.Values{"size": {"frame2"}}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		PhotoSize string `json:"photo_size"`
		Price     string `json:"price"`
		Width     int    `json:"image_width"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "frame2", body.PhotoSize)
	assert.Equal(t, "20.00", body.Price)
	assert.Equal(t, 1664, body.Width)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "frame2", h.loadSession(t, cookie.Value).FrameKey)
}

func TestSetSize_UnknownFrame(t *testing.T) {
	h := newHarness(t)
	h.capture.setSizeFn = selectFromCatalog

	rec := h.do(formRequest("/set_size", url.Values{"size": {"frame9"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrCodeValidation, errorCode(t, rec))
}

func TestSaveImage_ForwardsDataURLAndVariant(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, nil)

	var gotVariant domain.ArtifactVariant
	var gotData string
	h.capture.saveImageFn = func(ctx context.Context, sess *domain.Session, variant domain.ArtifactVariant, dataURL string) (*services.SavedImage, error) {
		gotVariant, gotData = variant, dataURL
		sess.RecordArtifact(variant, "photo_a.png", "/images/full/photo_a.png")
		return &services.SavedImage{Variant: variant, Filename: "photo_a.png", UniqueCode: "ABC234"}, nil
	}

	rec := h.do(jsonRequest("/save_image/FULL", `{"image":"data:image/png;base64,AAAA"}`), cookie)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.VariantOriginal, gotVariant)
	assert.Equal(t, "data:image/png;base64,AAAA", gotData)
	var body struct {
		Filename   string `json:"filename"`
		UniqueCode string `json:"unique_code"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "ABC234", body.UniqueCode)
	assert.Equal(t, "photo_a.png", h.loadSession(t, cookie.Value).OriginalFilename)
}

func TestSaveImage_RejectsBadRequests(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, nil)

	cases := []struct {
		name   string
		target string
		body   string
	}{
		{"unknown variant", "/save_image/thumbnail", `{"image":"data:image/png;base64,AAAA"}`},
		{"missing image", "/save_image/full", `{}`},
		{"not json", "/save_image/full", `image=abc`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(jsonRequest(tc.target, tc.body), cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, domain.ErrCodeValidation, errorCode(t, rec))
		})
	}
}

func TestPay_StoresCheckoutOnSession(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, func(sess *domain.Session) {
		_, _ = selectFromCatalog(sess, "frame1")
	})
	h.checkout.initiateFn = func(ctx context.Context, sess *domain.Session) (*services.CheckoutResult, error) {
		sess.BeginCheckout("token-1", "PR-1")
		return &services.CheckoutResult{
			RedirectURL:      "https://checkout.example/PR-1",
			PaymentToken:     "token-1",
			PaymentRequestID: "PR-1",
		}, nil
	}

	rec := h.do(httptest.NewRequest(http.MethodPost, "/pay", nil), cookie)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		RedirectURL  string `json:"redirect_url"`
		PaymentToken string `json:"payment_token"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "https://checkout.example/PR-1", body.RedirectURL)

	stored := h.loadSession(t, cookie.Value)
	assert.Equal(t, "PR-1", stored.PaymentRequestID)
	assert.True(t, stored.HasOpenCheckout())
}

func TestPay_GatewayUnavailable(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, nil)
	h.checkout.initiateFn = func(ctx context.Context, sess *domain.Session) (*services.CheckoutResult, error) {
		return nil, domain.NewGatewayUnavailableError(context.DeadlineExceeded)
	}

	rec := h.do(httptest.NewRequest(http.MethodPost, "/pay", nil), cookie)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, domain.ErrCodeGatewayUnavailable, errorCode(t, rec))
	assert.False(t, h.loadSession(t, cookie.Value).HasOpenCheckout())
}

func TestWebhook_ForwardsRawBodyAndHeaders(t *testing.T) {
	h := newHarness(t, "10.0.0.5")
	raw := `{ "id": "pay-1", "payment_request_id": "PR-1", "status": "succeeded" }`

	var got services.WebhookDelivery
	h.checkout.webhookFn = func(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error) {
		got = d
		return &services.WebhookResult{PaymentRequestID: "PR-1", Status: domain.PaymentSucceeded, Changed: true}, nil
	}

	req := jsonRequest("/payment-confirmation/webhook", raw)
	req.Header.Set("Hitpay-Signature", "abc123")
	req.Header.Set("Hitpay-Event-Type", "completed")
	req.Header.Set("Hitpay-Event-Object", "payment_request")
	rec := h.do(req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, raw, string(got.Body))
	assert.Equal(t, "abc123", got.Signature)
	assert.Equal(t, "completed", got.EventType)
	assert.Equal(t, "payment_request", got.EventObject)
	assert.Nil(t, sessionCookie(rec), "webhook must not open a visitor session")
}

func TestWebhook_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad signature", domain.ErrSignatureInvalid, http.StatusBadRequest},
		{"malformed body", domain.NewValidationError("invalid webhook payload"), http.StatusBadRequest},
		{"store unavailable", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.checkout.webhookFn = func(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error) {
				return nil, tc.err
			}

			rec := h.do(jsonRequest("/payment-confirmation/webhook", `{}`))

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWebhook_StaleDeliveryIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	h.checkout.webhookFn = func(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error) {
		return &services.WebhookResult{PaymentRequestID: "PR-1", Status: domain.PaymentFailed, Ignored: true}, nil
	}

	rec := h.do(jsonRequest("/payment-confirmation/webhook", `{}`))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Ignored bool `json:"ignored"`
		Changed bool `json:"changed"`
	}
	decodeData(t, rec, &body)
	assert.True(t, body.Ignored)
	assert.False(t, body.Changed)
}

func TestRedirect_SendsVisitorOn(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, nil)

	var gotRef, gotStatus string
	h.checkout.redirectFn = func(ctx context.Context, sess *domain.Session, reference, status string) (*services.RedirectResult, error) {
		gotRef, gotStatus = reference, status
		return &services.RedirectResult{
			PaymentRequestID: reference,
			Status:           status,
			Next:             "/success?payment_request_id=PR-1&status=succeeded",
		}, nil
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/redirect?reference=PR-1&status=succeeded", nil), cookie)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/success?payment_request_id=PR-1&status=succeeded", rec.Header().Get("Location"))
	assert.Equal(t, "PR-1", gotRef)
	assert.Equal(t, "succeeded", gotStatus)
}

func TestSuccess_ShowsDownloadOrRedirectsToFailure(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, nil)

	h.checkout.successFn = func(ctx context.Context, sess *domain.Session, status, requestID string) (*services.SuccessResult, error) {
		if requestID == "PR-bad" {
			return &services.SuccessResult{
				PaymentRequestID: requestID,
				FailureRedirect:  "/fail?payment_request_id=PR-bad&status=failed",
			}, nil
		}
		return &services.SuccessResult{
			PaymentRequestID: requestID,
			UniqueCode:       "ABC234",
			DownloadURL:      "http://kiosk.local/view-secure-image?token=t",
			QRCode:           "cXI=",
		}, nil
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/success?status=succeeded&payment_request_id=PR-1", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		UniqueCode  string `json:"unique_code"`
		DownloadURL string `json:"download_url"`
		QRCode      string `json:"qr_code"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "ABC234", body.UniqueCode)
	assert.Equal(t, "cXI=", body.QRCode)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/success?status=succeeded&payment_request_id=PR-bad", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/fail?payment_request_id=PR-bad&status=failed", rec.Header().Get("Location"))
}

func TestFail_CanceledAndPaid(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, nil)

	h.checkout.failureFn = func(ctx context.Context, sess *domain.Session, status, requestID string) (*services.FailureResult, error) {
		result := &services.FailureResult{PaymentRequestID: requestID, Status: status}
		if requestID == "PR-paid" {
			result.Next = "/success?payment_request_id=PR-paid&status=succeeded"
		}
		return result, nil
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/fail?status=canceled&payment_request_id=PR-1", nil), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "canceled", body.Status)
	assert.Equal(t, "Payment was canceled.", body.Message)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/fail?status=failed&payment_request_id=PR-paid", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/success?payment_request_id=PR-paid&status=succeeded", rec.Header().Get("Location"))
}

func TestExit_ResetsSessionButKeepsCameraState(t *testing.T) {
	h := newHarness(t)
	cookie := h.seedSession(t, func(sess *domain.Session) {
		_, _ = selectFromCatalog(sess, "frame1")
		sess.CameraState = "granted"
	})
	h.checkout.abandonFn = func(ctx context.Context, sess *domain.Session) error {
		sess.Reset()
		return nil
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/exit", nil), cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	stored := h.loadSession(t, cookie.Value)
	assert.Empty(t, stored.FrameKey)
	assert.Equal(t, "granted", stored.CameraState)
}

func TestPaymentStatus(t *testing.T) {
	h := newHarness(t)
	h.checkout.paymentStatusFn = func(ctx context.Context, requestID string) (*domain.Payment, error) {
		if requestID != "PR-1" {
			return nil, domain.NewPaymentNotFoundError(requestID)
		}
		return &domain.Payment{PaymentRequestID: "PR-1", Status: domain.PaymentPending}, nil
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/payment-status?payment_request_id=PR-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string `json:"status"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "pending", body.Status)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/payment-status?payment_request_id=PR-2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewSecureImage_ServesAttachmentOutsideAllowlist(t *testing.T) {
	h := newHarness(t, "10.0.0.5")
	h.downloads.openFn = func(ctx context.Context, token string) (*services.Download, error) {
		require.Equal(t, "tok", token)
		return &services.Download{
			Filename: "photo_a.png",
			Body:     io.NopCloser(strings.NewReader("png-bytes")),
		}, nil
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/view-secure-image?token=tok&download=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=photo_a.png`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestViewSecureImage_TokenErrors(t *testing.T) {
	h := newHarness(t)
	h.downloads.openFn = func(ctx context.Context, token string) (*services.Download, error) {
		if token == "old" {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/view-secure-image?token=old", nil))
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/view-secure-image?token=forged", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminDownload_RequiresLogin(t *testing.T) {
	h := newHarness(t)

	var gotCode string
	h.admin.lookupFn = func(ctx context.Context, code string) (*services.AdminDownload, error) {
		gotCode = code
		return &services.AdminDownload{
			UniqueCode:  "ABC234",
			Status:      domain.PhotoPaid,
			DownloadURL: "http://kiosk.local/view-secure-image?token=t&download=true",
		}, nil
	}

	rec := h.do(jsonRequest("/download", `{"unique_code":"abc234"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(formRequest("/admin/login", url.Values{"username": {"staff"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(formRequest("/admin/login", url.Values{"username": {"staff"}, "password": {"s3cret"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	var adminCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			adminCookie = c
		}
	}
	require.NotNil(t, adminCookie)

	rec = h.do(jsonRequest("/download", `{"unique_code":"abc234"}`), adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "abc234", gotCode)
	var body struct {
		Status      string `json:"status"`
		DownloadURL string `json:"download_url"`
	}
	decodeData(t, rec, &body)
	assert.Equal(t, "PAID", body.Status)
}

func TestAdminDownload_RejectionIsConflict(t *testing.T) {
	h := newHarness(t)
	h.admin.lookupFn = func(ctx context.Context, code string) (*services.AdminDownload, error) {
		return nil, domain.NewDownloadRejectedError("The Photo's Payment Failed. Unable to Download.")
	}

	login := h.do(formRequest("/admin/login", url.Values{"username": {"staff"}, "password": {"s3cret"}}))
	require.Equal(t, http.StatusOK, login.Code)

	rec := h.do(jsonRequest("/download", `{"unique_code":"ABC234"}`), login.Result().Cookies()...)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Photo's Payment Failed. Unable to Download.")
}

func TestAllowedIPs_GuardsKioskRoutes(t *testing.T) {
	h := newHarness(t, "10.0.0.5")
	h.capture.setSizeFn = selectFromCatalog

	rec := h.do(formRequest("/set_size", url.Values{"size": {"frame1"}}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	req := formRequest("/set_size", url.Values{"size": {"frame1"}})
	req.RemoteAddr = "10.0.0.5:52100"
	rec = h.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery_PanicBecomesInternalError(t *testing.T) {
	h := newHarness(t)
	h.capture.summaryFn = func(sess *domain.Session) (*services.PaymentSummary, error) {
		panic("boom")
	}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/payment-summary", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.health.err = context.DeadlineExceeded
	rec = h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
