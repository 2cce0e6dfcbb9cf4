package postgres

import (
	"fmt"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const photoColumns = `id, unique_code, filename, path, type, original_path, preview_path,
		frame, date_of_save, status, purged_at`

const paymentColumns = `id, payment_request_id, payment_id, reference_id, photo_id, status,
		frame, price::text, currency, checkout_url, start_time, end_time`

func toPhoto(m PhotoModel) *domain.Photo {
	return &domain.Photo{
		ID:           m.ID,
		UniqueCode:   m.UniqueCode,
		Filename:     m.Filename,
		Path:         m.Path,
		Type:         domain.PhotoType(m.Type),
		OriginalPath: m.OriginalPath,
		PreviewPath:  m.PreviewPath,
		Frame:        m.Frame,
		SavedAt:      m.SavedAt,
		Status:       domain.PhotoStatus(m.Status),
		PurgedAt:     m.PurgedAt,
	}
}

func toPayment(m PaymentModel) (*domain.Payment, error) {
	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return nil, fmt.Errorf("payment %s has unreadable price %q: %w", m.PaymentRequestID, m.Price, err)
	}
	return &domain.Payment{
		ID:               m.ID,
		PaymentRequestID: m.PaymentRequestID,
		PaymentID:        m.PaymentID,
		ReferenceID:      m.ReferenceID,
		PhotoID:          m.PhotoID,
		Status:           domain.PaymentStatus(m.Status),
		Frame:            m.Frame,
		Price:            price,
		Currency:         m.Currency,
		CheckoutURL:      m.CheckoutURL,
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
	}, nil
}

func toWebhookEvent(m WebhookEventModel) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:               m.ID,
		PaymentRequestID: m.PaymentRequestID,
		GatewayPaymentID: m.GatewayPaymentID,
		EventType:        m.EventType,
		EventObject:      m.EventObject,
		Payload:          m.Payload,
		SignatureValid:   m.SignatureValid,
		ProcessingError:  m.ProcessingError,
		ReceivedAt:       m.ReceivedAt,
	}
}

func scanPhotoModel(row pgx.Row) (PhotoModel, error) {
	var m PhotoModel
	err := row.Scan(
		&m.ID, &m.UniqueCode, &m.Filename, &m.Path, &m.Type, &m.OriginalPath, &m.PreviewPath,
		&m.Frame, &m.SavedAt, &m.Status, &m.PurgedAt,
	)
	return m, err
}

func scanPaymentModel(row pgx.Row) (PaymentModel, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.PaymentRequestID, &m.PaymentID, &m.ReferenceID, &m.PhotoID, &m.Status,
		&m.Frame, &m.Price, &m.Currency, &m.CheckoutURL, &m.StartTime, &m.EndTime,
	)
	return m, err
}
