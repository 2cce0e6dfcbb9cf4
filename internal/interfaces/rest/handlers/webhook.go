package handlers

import (
	"io"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
)

const maxWebhookBytes = 1 << 20

const (
	headerSignature   = "Hitpay-Signature"
	headerEventType   = "Hitpay-Event-Type"
	headerEventObject = "Hitpay-Event-Object"
)

type webhookResponse struct {
	PaymentRequestID string               `json:"payment_request_id,omitempty"`
	Status           domain.PaymentStatus `json:"status,omitempty"`
	Changed          bool                 `json:"changed"`
	Ignored          bool                 `json:"ignored"`
}

// Webhook hands the raw body to the orchestrator untouched: the signature is
// computed over the exact bytes the gateway sent.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		rest.WriteError(w, domain.NewValidationError("unreadable webhook body"), h.logger)
		return
	}

	result, err := h.checkout.HandleWebhook(r.Context(), services.WebhookDelivery{
		Body:        body,
		Signature:   r.Header.Get(headerSignature),
		EventType:   r.Header.Get(headerEventType),
		EventObject: r.Header.Get(headerEventObject),
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, webhookResponse{
		PaymentRequestID: result.PaymentRequestID,
		Status:           result.Status,
		Changed:          result.Changed,
		Ignored:          result.Ignored,
	})
}
