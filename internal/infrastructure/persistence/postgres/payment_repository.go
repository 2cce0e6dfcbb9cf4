package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/jackc/pgx/v5"
)

const constraintPendingPaymentPerPhoto = "uq_payments_pending_photo"

type PaymentRepository struct {
	db  *DB
	now func() time.Time
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a pending payment. A second pending payment for the same
// photo is rejected with ErrActivePaymentExists.
func (r *PaymentRepository) Create(ctx context.Context, params application.CreatePaymentParams) (*domain.Payment, error) {
	payment, err := domain.NewPayment(
		params.RequestID,
		params.ReferenceID,
		params.PhotoID,
		params.Frame,
		params.Price,
		params.Currency,
		params.CheckoutURL,
		r.now(),
		params.TTL,
	)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO payments (
			payment_request_id, reference_id, photo_id, status, frame,
			price, currency, checkout_url, start_time, end_time
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10)
		RETURNING id
	`
	err = r.db.Pool.QueryRow(ctx, query,
		payment.PaymentRequestID,
		payment.ReferenceID,
		payment.PhotoID,
		string(payment.Status),
		payment.Frame,
		payment.Price.StringFixed(2),
		payment.Currency,
		payment.CheckoutURL,
		payment.StartTime,
		payment.EndTime,
	).Scan(&payment.ID)
	if err != nil {
		if violatedConstraint(err) == constraintPendingPaymentPerPhoto {
			return nil, domain.ErrActivePaymentExists
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

func (r *PaymentRepository) FindByRequestID(ctx context.Context, requestID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_request_id = $1`
	return findPayment(ctx, r.db.Pool, query, requestID, requestID)
}

// FindActiveByPhotoID returns the photo's pending payment, if any.
func (r *PaymentRepository) FindActiveByPhotoID(ctx context.Context, photoID int64) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE photo_id = $1 AND status = 'pending'
		ORDER BY start_time DESC
		LIMIT 1
	`
	return findPayment(ctx, r.db.Pool, query, fmt.Sprintf("photo_id=%d", photoID), photoID)
}

// ApplyStatus locks the payment row, runs the domain transition and writes it
// back in one transaction. Concurrent deliveries for the same request
// serialize on the row lock; the loser sees the winner's status and reports
// changed=false.
func (r *PaymentRepository) ApplyStatus(
	ctx context.Context,
	requestID string,
	gatewayPaymentID string,
	status domain.PaymentStatus,
) (*domain.Payment, bool, error) {
	var (
		payment *domain.Payment
		changed bool
	)

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_request_id = $1 FOR UPDATE`
		p, err := findPayment(ctx, tx, query, requestID, requestID)
		if err != nil {
			return err
		}

		changed, err = p.ApplyStatus(status, gatewayPaymentID, r.now())
		if err != nil {
			payment = p
			return err
		}

		update := `
			UPDATE payments
			SET status = $1, payment_id = $2, end_time = $3
			WHERE id = $4
		`
		if _, err := tx.Exec(ctx, update, string(p.Status), p.PaymentID, p.EndTime, p.ID); err != nil {
			return fmt.Errorf("failed to update payment %s: %w", requestID, err)
		}

		payment = p
		return nil
	})
	if err != nil {
		return payment, false, err
	}

	return payment, changed, nil
}

func findPayment(ctx context.Context, q Executor, query, key string, args ...any) (*domain.Payment, error) {
	m, err := scanPaymentModel(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(key)
		}
		return nil, fmt.Errorf("failed to load payment %s: %w", key, err)
	}
	return toPayment(m)
}
