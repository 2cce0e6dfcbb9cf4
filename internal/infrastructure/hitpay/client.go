package hitpay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/config"
	"github.com/DanielPopoola/photobooth/internal/domain"
)

const paymentRequestsPath = "/v1/payment-requests"

// Client talks to the HitPay payment-requests API. Calls are bounded by the
// configured timeout and are never retried.
type Client struct {
	baseURL    string
	apiKey     string
	salt       string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.HitPayConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		salt:    cfg.Salt,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

var _ application.PaymentGateway = (*Client)(nil)

func (c *Client) CreatePaymentRequest(ctx context.Context, in application.CreatePaymentInput) (*application.PaymentRequest, error) {
	if !in.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount must be positive")
	}
	if in.ReferenceID == "" {
		return nil, domain.NewMissingRequiredFieldError("reference id")
	}

	form := url.Values{}
	form.Set("amount", in.Amount.StringFixed(2))
	form.Set("currency", in.Currency)
	form.Set("purpose", in.Purpose)
	form.Set("redirect_url", in.RedirectURL)
	form.Set("webhook", in.WebhookURL)
	form.Set("reference", in.ReferenceID)
	form.Set("send_email", strconv.FormatBool(false))

	resp, err := sendRequest[createPaymentRequestResponse](c, ctx, http.MethodPost, c.baseURL+paymentRequestsPath, form)
	if err != nil {
		c.logger.Error("payment request creation failed",
			"reference_id", in.ReferenceID,
			"error", err,
		)
		return nil, err
	}
	if resp.ID == "" || resp.URL == "" {
		return nil, &application.GatewayError{
			StatusCode: http.StatusCreated,
			Message:    "response is missing id or url",
		}
	}

	c.logger.Info("payment request created",
		"payment_request_id", resp.ID,
		"reference_id", in.ReferenceID,
	)
	return &application.PaymentRequest{ID: resp.ID, URL: resp.URL}, nil
}

func (c *Client) VerifySignature(rawBody []byte, signature string) bool {
	return VerifySignature(rawBody, signature, c.salt)
}

// ParseWebhook decodes a notification body. It requires id,
// payment_request_id and a status from the payment vocabulary.
func (c *Client) ParseWebhook(rawBody []byte) (*application.WebhookPayload, error) {
	return ParseWebhook(rawBody)
}

func ParseWebhook(rawBody []byte) (*application.WebhookPayload, error) {
	if len(rawBody) == 0 {
		return nil, domain.NewValidationError("no payload received")
	}

	var body webhookBody
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, domain.NewValidationError("malformed webhook payload: %v", err)
	}
	if body.ID == "" {
		return nil, domain.NewMissingRequiredFieldError("id")
	}
	if body.PaymentRequestID == "" {
		return nil, domain.NewMissingRequiredFieldError("payment_request_id")
	}
	status, err := domain.ParsePaymentStatus(strings.ToLower(body.Status))
	if err != nil {
		return nil, err
	}

	return &application.WebhookPayload{
		PaymentID:        body.ID,
		PaymentRequestID: body.PaymentRequestID,
		Status:           status,
	}, nil
}

func sendRequest[Resp any](c *Client, ctx context.Context, method, endpoint string, form url.Values) (*Resp, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("X-BUSINESS-API-KEY", c.apiKey)
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewGatewayUnavailableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewGatewayUnavailableError(err)
	}

	if resp.StatusCode != http.StatusCreated {
		gwErr := &application.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			gwErr.Message = errResp.Message
		}
		return nil, gwErr
	}

	var out Resp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &application.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    "error decoding json response",
			Body:       string(body),
		}
	}

	return &out, nil
}
