package metrics

import (
	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		checkoutsStartedTotal,
		checkoutsFailedTotal,
		webhooksReceivedTotal,
		paymentStatusTotal,
		photosFinalizedTotal,
		artifactsPurgedTotal,
	)
}

var (
	checkoutsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_started_total",
			Help:      "Payment requests created with the gateway, by frame.",
		},
		[]string{"frame"},
	)

	checkoutsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_failed_total",
			Help:      "Checkout attempts that could not reach the gateway or were refused.",
		},
		[]string{"reason"},
	)

	webhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_received_total",
			Help:      "Gateway webhook deliveries by outcome.",
		},
		[]string{"outcome"}, // 'applied', 'duplicate', 'unknown_request', 'bad_signature', 'malformed'
	)

	paymentStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_status_changes_total",
			Help:      "Persisted payment status transitions.",
		},
		[]string{"status"},
	)

	photosFinalizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_finalized_total",
			Help:      "Photos moved out of PENDING, by resulting status.",
		},
		[]string{"status"},
	)

	artifactsPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_purged_total",
			Help:      "Image files removed by exits, retakes and the sweeper.",
		},
	)
)

// Recorder is the application.Metrics backed by the package collectors.
type Recorder struct{}

var _ application.Metrics = Recorder{}

func NewRecorder() Recorder { return Recorder{} }

func (Recorder) CheckoutStarted(frame string) {
	checkoutsStartedTotal.WithLabelValues(frame).Inc()
}

func (Recorder) CheckoutFailed(reason string) {
	checkoutsFailedTotal.WithLabelValues(reason).Inc()
}

func (Recorder) WebhookReceived(outcome string) {
	webhooksReceivedTotal.WithLabelValues(outcome).Inc()
}

func (Recorder) PaymentStatusChanged(status domain.PaymentStatus) {
	paymentStatusTotal.WithLabelValues(string(status)).Inc()
}

func (Recorder) PhotoFinalized(status domain.PhotoStatus) {
	photosFinalizedTotal.WithLabelValues(string(status)).Inc()
}

func (Recorder) ArtifactsPurged(n int) {
	if n > 0 {
		artifactsPurgedTotal.Add(float64(n))
	}
}
