package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/photobooth/internal/interfaces/rest/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedIPs     []string
	SecureCookies  bool
	RequestTimeout time.Duration
	MetricsPath    string
}

// NewRouter wires the kiosk routes. The gateway webhook and secure links are
// reached from outside the kiosk, so they skip the IP allowlist and the
// visitor session.
func NewRouter(h *Handlers, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, cfg.MetricsPath, promhttp.Handler())

	timeout := middleware.Timeout(cfg.RequestTimeout, logger)
	session := middleware.Session(h.sessions, cfg.SecureCookies, logger)

	r.With(timeout).Post("/payment-confirmation/webhook", h.Webhook)
	r.With(timeout).Get("/view-secure-image", h.ViewSecureImage)

	r.Group(func(r chi.Router) {
		r.Use(timeout)
		r.Post("/admin/login", h.AdminLogin)
		r.Post("/admin/logout", h.AdminLogout)
		r.With(middleware.RequireAdmin(h.adminAuth, logger)).Post("/download", h.AdminDownload)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowedIPs(cfg.AllowedIPs, logger))

		r.With(session).Get("/ws/payment-status", h.PaymentStatusStream)

		r.Group(func(r chi.Router) {
			r.Use(timeout, session)

			r.Post("/set_size", h.SetSize)
			r.Get("/payment-summary", h.PaymentSummary)
			r.Post("/save_image/{variant}", h.SaveImage)
			r.Post("/delete_photo", h.DeletePhoto)

			r.Post("/pay", h.Pay)
			r.Get("/payment-status", h.PaymentStatus)
			r.Get("/redirect", h.Redirect)
			r.Get("/success", h.Success)
			r.Get("/fail", h.Fail)
			r.Get("/exit", h.Exit)
		})
	})

	return r
}
