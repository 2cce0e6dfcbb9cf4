package handlers

import (
	"errors"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
	"github.com/DanielPopoola/photobooth/internal/interfaces/ws"
)

type payResponse struct {
	RedirectURL  string `json:"redirect_url"`
	PaymentToken string `json:"payment_token"`
}

func (h *Handlers) Pay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := h.checkout.InitiateCheckout(r.Context(), sess)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	rest.WriteData(w, http.StatusOK, payResponse{
		RedirectURL:  result.RedirectURL,
		PaymentToken: result.PaymentToken,
	})
}

// Redirect is where the hosted checkout page sends the visitor back to.
func (h *Handlers) Redirect(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	result, err := h.checkout.HandleRedirect(r.Context(), sess, q.Get("reference"), q.Get("status"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	http.Redirect(w, r, result.Next, http.StatusSeeOther)
}

type successResponse struct {
	PaymentRequestID string `json:"payment_request_id"`
	UniqueCode       string `json:"unique_code"`
	DownloadURL      string `json:"download_url"`
	QRCode           string `json:"qr_code"`
}

func (h *Handlers) Success(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	result, err := h.checkout.FinalizeSuccess(r.Context(), sess, q.Get("status"), q.Get("payment_request_id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	if result.FailureRedirect != "" {
		http.Redirect(w, r, result.FailureRedirect, http.StatusSeeOther)
		return
	}

	rest.WriteData(w, http.StatusOK, successResponse{
		PaymentRequestID: result.PaymentRequestID,
		UniqueCode:       result.UniqueCode,
		DownloadURL:      result.DownloadURL,
		QRCode:           result.QRCode,
	})
}

type failureResponse struct {
	PaymentRequestID string `json:"payment_request_id"`
	Status           string `json:"status"`
	Message          string `json:"message"`
}

func (h *Handlers) Fail(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	result, err := h.checkout.HandleFailure(r.Context(), sess, q.Get("status"), q.Get("payment_request_id"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	if result.Next != "" {
		http.Redirect(w, r, result.Next, http.StatusSeeOther)
		return
	}

	message := "Payment failed."
	if result.Status == services.RedirectCanceled {
		message = "Payment was canceled."
	}
	rest.WriteData(w, http.StatusOK, failureResponse{
		PaymentRequestID: result.PaymentRequestID,
		Status:           result.Status,
		Message:          message,
	})
}

// Exit ends the visit. The unpaid capture is discarded; the camera state
// stays on the session for the next visitor.
func (h *Handlers) Exit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.checkout.Abandon(r.Context(), sess); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	rest.WriteData(w, http.StatusOK, messageResponse{Message: "Session reset"})
}

type statusResponse struct {
	PaymentRequestID string               `json:"payment_request_id"`
	Status           domain.PaymentStatus `json:"status"`
}

func (h *Handlers) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("payment_request_id")

	payment, err := h.checkout.PaymentStatus(r.Context(), requestID)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, statusResponse{
		PaymentRequestID: payment.PaymentRequestID,
		Status:           payment.Status,
	})
}

// PaymentStatusStream upgrades to a websocket that receives every status
// change of the payment request, starting with the current one.
func (h *Handlers) PaymentStatusStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	requestID := r.URL.Query().Get("payment_request_id")
	if requestID == "" {
		requestID = sess.PaymentRequestID
	}
	if requestID == "" {
		rest.WriteError(w, domain.NewMissingRequiredFieldError("payment_request_id"), h.logger)
		return
	}

	var initial *ws.StatusUpdate
	payment, err := h.checkout.PaymentStatus(r.Context(), requestID)
	switch {
	case err == nil:
		initial = &ws.StatusUpdate{PaymentRequestID: requestID, Status: payment.Status}
	case !errors.Is(err, domain.ErrPaymentNotFound):
		rest.WriteError(w, err, h.logger)
		return
	}

	if err := h.status.Serve(w, r, requestID, initial); err != nil {
		h.logger.Warn("status stream not opened", "payment_request_id", requestID, "error", err)
	}
}
