package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/auth"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/hitpay"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/metrics"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/qrcode"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/securelink"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/session"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/storage"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/photobooth/internal/interfaces/ws"
	"github.com/DanielPopoola/photobooth/internal/worker"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	var noWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the kiosk HTTP server and the sweep worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, !noWorker)
		},
	}
	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "do not start the background sweep worker")
	return cmd
}

func runServe(ctx context.Context, configPath string, startWorker bool) error {

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, logger := a.cfg, a.logger
	logger.Info("starting photobooth service",
		"port", cfg.Server.Port,
		"env", cfg.Primary.Env,
		"log_level", cfg.Logger.Level,
	)

	catalog, err := cfg.FrameCatalog()
	if err != nil {
		return err
	}

	redisClient, err := session.NewClient(ctx, cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		return err
	}
	defer redisClient.Close()

	artifacts, err := storage.NewOSStore(cfg.Storage)
	if err != nil {
		return err
	}

	metrics.MustRegister()
	recorder := metrics.NewRecorder()

	photoRepo := postgres.NewPhotoRepository(a.db)
	paymentRepo := postgres.NewPaymentRepository(a.db)
	webhookRepo := postgres.NewWebhookEventRepository(a.db)

	gateway := hitpay.NewClient(cfg.HitPay, logger)
	links := securelink.NewIssuer(cfg.SecureLink.Secret, cfg.Server.BaseURL)
	hub := ws.NewHub(logger)

	fulfillment := services.NewFulfillmentService(
		photoRepo,
		paymentRepo,
		webhookRepo,
		gateway,
		links,
		qrcode.NewRenderer(),
		artifacts,
		catalog,
		services.FulfillmentOptions{
			BaseURL:    cfg.Server.BaseURL,
			Currency:   cfg.HitPay.Currency,
			PaymentTTL: cfg.HitPay.PaymentTTL,
		},
		logger,
	).WithNotifier(hub).WithMetrics(recorder)

	capture := services.NewCaptureService(photoRepo, artifacts, catalog, logger).WithMetrics(recorder)
	sweeper, err := a.sweepService(photoRepo)
	if err != nil {
		return err
	}
	sweeper.WithMetrics(recorder)

	production := cfg.Primary.Env == "production"
	h := handlers.NewHandlers(handlers.Dependencies{
		Capture:   capture,
		Checkout:  fulfillment,
		Admin:     services.NewAdminService(photoRepo, links, logger),
		Downloads: services.NewDownloadService(photoRepo, links, artifacts, logger),
		AdminAuth: auth.NewAdminAuth(cfg.Admin, production),
		Sessions:  session.NewStore(redisClient, cfg.Redis.SessionTTL),
		Status:    hub,
		Health:    a.db,
		Logger:    logger,
	})

	router := handlers.NewRouter(h, handlers.RouterConfig{
		AllowedIPs:     cfg.Server.AllowedIPs,
		SecureCookies:  production,
		RequestTimeout: cfg.Server.ReadTimeout,
		MetricsPath:    cfg.Metrics.Path,
	}, logger)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go hub.Run(workerCtx)
	if startWorker {
		go worker.NewSweepWorker(sweeper, cfg.Worker.Interval, logger).Start(workerCtx)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
	return nil
}
