package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/photobooth/internal/interfaces/ws"
	"github.com/go-playground/validator"
)

type CaptureFlow interface {
	SetSize(sess *domain.Session, frameKey string) (domain.Frame, error)
	Summary(sess *domain.Session) (*services.PaymentSummary, error)
	SaveImage(ctx context.Context, sess *domain.Session, variant domain.ArtifactVariant, dataURL string) (*services.SavedImage, error)
	DeletePhoto(ctx context.Context, sess *domain.Session) error
}

type CheckoutFlow interface {
	InitiateCheckout(ctx context.Context, sess *domain.Session) (*services.CheckoutResult, error)
	HandleWebhook(ctx context.Context, d services.WebhookDelivery) (*services.WebhookResult, error)
	HandleRedirect(ctx context.Context, sess *domain.Session, reference, status string) (*services.RedirectResult, error)
	FinalizeSuccess(ctx context.Context, sess *domain.Session, status, requestID string) (*services.SuccessResult, error)
	HandleFailure(ctx context.Context, sess *domain.Session, status, requestID string) (*services.FailureResult, error)
	Abandon(ctx context.Context, sess *domain.Session) error
	PaymentStatus(ctx context.Context, requestID string) (*domain.Payment, error)
}

type AdminLookup interface {
	LookupDownload(ctx context.Context, code string) (*services.AdminDownload, error)
}

type SecureDownloads interface {
	Open(ctx context.Context, token string) (*services.Download, error)
}

type AdminSessions interface {
	middleware.AdminAuthenticator
	Login(w http.ResponseWriter, username, password string) error
	Logout(w http.ResponseWriter)
}

type StatusStream interface {
	Serve(w http.ResponseWriter, r *http.Request, requestID string, initial *ws.StatusUpdate) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Capture   CaptureFlow
	Checkout  CheckoutFlow
	Admin     AdminLookup
	Downloads SecureDownloads
	AdminAuth AdminSessions
	Sessions  application.SessionStore
	Status    StatusStream
	Health    HealthChecker
	Logger    *slog.Logger
}

type Handlers struct {
	capture   CaptureFlow
	checkout  CheckoutFlow
	admin     AdminLookup
	downloads SecureDownloads
	adminAuth AdminSessions
	sessions  application.SessionStore
	status    StatusStream
	health    HealthChecker
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewHandlers(deps Dependencies) *Handlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &Handlers{
		capture:   deps.Capture,
		checkout:  deps.Checkout,
		admin:     deps.Admin,
		downloads: deps.Downloads,
		adminAuth: deps.AdminAuth,
		sessions:  deps.Sessions,
		status:    deps.Status,
		health:    deps.Health,
		validate:  validate,
		logger:    deps.Logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewSessionMissingError("session"), h.logger)
		return nil, false
	}
	return sess, true
}

// saveSession persists the session before the response is written. A failed
// save is reported, since the next step of the flow depends on it.
func (h *Handlers) saveSession(w http.ResponseWriter, r *http.Request, sess *domain.Session) bool {
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		rest.WriteError(w, application.NewInternalError(err), h.logger)
		return false
	}
	return true
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		rest.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
