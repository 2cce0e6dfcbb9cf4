package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/jackc/pgx/v5"
)

// WebhookEventRepository keeps the audit trail of gateway deliveries. It
// never touches photos or payments.
type WebhookEventRepository struct {
	db *DB
}

func NewWebhookEventRepository(db *DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Record(ctx context.Context, event *domain.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (
			payment_request_id, gateway_payment_id, event_type, event_object,
			payload, signature_valid, processing_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, received_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		event.PaymentRequestID,
		event.GatewayPaymentID,
		event.EventType,
		event.EventObject,
		event.Payload,
		event.SignatureValid,
		event.ProcessingError,
	).Scan(&event.ID, &event.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}

func (r *WebhookEventRepository) SetProcessingError(ctx context.Context, id int64, message string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE webhook_events SET processing_error = $1 WHERE id = $2`, message, id)
	if err != nil {
		return fmt.Errorf("failed to update webhook event %d: %w", id, err)
	}
	return nil
}

func (r *WebhookEventRepository) ListByRequestID(ctx context.Context, requestID string) ([]*domain.WebhookEvent, error) {
	query := `
		SELECT id, payment_request_id, gateway_payment_id, event_type, event_object,
		       payload, signature_valid, processing_error, received_at
		FROM webhook_events
		WHERE payment_request_id = $1
		ORDER BY id
	`
	rows, err := r.db.Pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("query webhook events: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.WebhookEvent, error) {
		var m WebhookEventModel
		err := row.Scan(
			&m.ID, &m.PaymentRequestID, &m.GatewayPaymentID, &m.EventType, &m.EventObject,
			&m.Payload, &m.SignatureValid, &m.ProcessingError, &m.ReceivedAt,
		)
		return toWebhookEvent(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning webhook rows: %w", err)
	}
	return results, nil
}

func (r *WebhookEventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM webhook_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count webhook events: %w", err)
	}
	return n, nil
}
