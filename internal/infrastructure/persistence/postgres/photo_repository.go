package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/jackc/pgx/v5"
)

const constraintPhotoUniqueCode = "photos_unique_code_key"

type PhotoRepository struct {
	db *DB
}

func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a new PENDING photo and fills in its id.
func (r *PhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	validated, err := domain.NewPhoto(photo.UniqueCode, photo.Filename, photo.Path, photo.Frame, photo.Type, photo.SavedAt)
	if err != nil {
		return err
	}
	if validated.SavedAt.IsZero() {
		validated.SavedAt = time.Now().UTC()
	}
	if photo.OriginalPath != "" {
		validated.OriginalPath = photo.OriginalPath
	}
	validated.PreviewPath = photo.PreviewPath

	query := `
		INSERT INTO photos (unique_code, filename, path, type, original_path, preview_path, frame, date_of_save, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = r.db.Pool.QueryRow(ctx, query,
		validated.UniqueCode,
		validated.Filename,
		validated.Path,
		string(validated.Type),
		validated.OriginalPath,
		validated.PreviewPath,
		validated.Frame,
		validated.SavedAt,
		string(domain.PhotoPending),
	).Scan(&validated.ID)
	if err != nil {
		if violatedConstraint(err) == constraintPhotoUniqueCode {
			return domain.ErrUniqueCodeTaken
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}

	*photo = *validated
	return nil
}

func (r *PhotoRepository) FindByID(ctx context.Context, id int64) (*domain.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	return r.findOne(ctx, query, fmt.Sprintf("id=%d", id), id)
}

func (r *PhotoRepository) FindByUniqueCode(ctx context.Context, code string) (*domain.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE unique_code = $1`
	return r.findOne(ctx, query, code, domain.NormalizeUniqueCode(code))
}

// FindByFilename returns the most recent photo stored under filename,
// optionally restricted to one status.
func (r *PhotoRepository) FindByFilename(ctx context.Context, filename string, status *domain.PhotoStatus) (*domain.Photo, error) {
	if status != nil {
		query := `SELECT ` + photoColumns + ` FROM photos WHERE filename = $1 AND status = $2 ORDER BY id DESC LIMIT 1`
		return r.findOne(ctx, query, filename, filename, string(*status))
	}
	query := `SELECT ` + photoColumns + ` FROM photos WHERE filename = $1 ORDER BY id DESC LIMIT 1`
	return r.findOne(ctx, query, filename, filename)
}

func (r *PhotoRepository) findOne(ctx context.Context, query, key string, args ...any) (*domain.Photo, error) {
	m, err := scanPhotoModel(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPhotoNotFoundError(key)
		}
		return nil, fmt.Errorf("failed to load photo %s: %w", key, err)
	}
	return toPhoto(m), nil
}

// Transition moves the photo to CANCELED or FAILED with a compare-and-set on
// its current status. PAID is only reachable through MarkPaid.
func (r *PhotoRepository) Transition(ctx context.Context, photo *domain.Photo, target domain.PhotoStatus) error {
	if target == domain.PhotoPaid {
		return domain.NewInvalidTransitionError(string(photo.Status), string(target))
	}
	if err := photo.CanTransitionTo(target); err != nil {
		return err
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE photos SET status = $1 WHERE id = $2 AND status = $3`,
		string(target), photo.ID, string(photo.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to update photo %d: %w", photo.ID, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.FindByID(ctx, photo.ID)
		if err != nil {
			return err
		}
		*photo = *current
		return domain.NewInvalidTransitionError(string(current.Status), string(target))
	}

	photo.Status = target
	return nil
}

// MarkPaid is the single writer of PAID. The update only lands when a payment
// for this photo with the given request id is persisted as succeeded.
func (r *PhotoRepository) MarkPaid(ctx context.Context, photoID int64, paymentRequestID string) error {
	query := `
		UPDATE photos SET status = 'PAID'
		WHERE id = $1
		  AND status = 'PENDING'
		  AND EXISTS (
			SELECT 1 FROM payments
			WHERE payment_request_id = $2
			  AND photo_id = $1
			  AND status = 'succeeded'
		  )
	`
	tag, err := r.db.Pool.Exec(ctx, query, photoID, paymentRequestID)
	if err != nil {
		return fmt.Errorf("failed to mark photo %d paid: %w", photoID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, photoID)
	if err != nil {
		return err
	}
	switch current.Status {
	case domain.PhotoPaid:
		return nil
	case domain.PhotoPending:
		return domain.NewPaymentNotConfirmedError(paymentRequestID, "no succeeded payment recorded for this photo")
	default:
		return domain.NewInvalidTransitionError(string(current.Status), string(domain.PhotoPaid))
	}
}

// Delete removes a photo that never reached a financial outcome.
func (r *PhotoRepository) Delete(ctx context.Context, photo *domain.Photo) error {
	if err := photo.CanDelete(); err != nil {
		return err
	}

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM photos WHERE id = $1 AND status = 'PENDING'`, photo.ID)
	if err != nil {
		return fmt.Errorf("failed to delete photo %d: %w", photo.ID, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.FindByID(ctx, photo.ID)
		if err != nil {
			return err
		}
		return current.CanDelete()
	}
	return nil
}

// ReplaceArtifact points a PENDING photo at a different deliverable file.
func (r *PhotoRepository) ReplaceArtifact(ctx context.Context, photo *domain.Photo, filename, path string, photoType domain.PhotoType) error {
	if filename == "" || path == "" {
		return domain.NewMissingRequiredFieldError("filename and path")
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE photos SET filename = $1, path = $2, type = $3 WHERE id = $4 AND status = 'PENDING'`,
		filename, path, string(photoType), photo.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace artifact of photo %d: %w", photo.ID, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.FindByID(ctx, photo.ID)
		if err != nil {
			return err
		}
		return &domain.DomainError{
			Code:    domain.ErrCodeInvalidTransition,
			Message: "only pending photos can change artifact, photo is " + string(current.Status),
		}
	}

	photo.Filename, photo.Path, photo.Type = filename, path, photoType
	return nil
}

// AttachPreview records the preview written for a PENDING photo so the
// sweeper can reclaim it with the capture.
func (r *PhotoRepository) AttachPreview(ctx context.Context, photo *domain.Photo, path string) error {
	if path == "" {
		return domain.NewMissingRequiredFieldError("preview path")
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE photos SET preview_path = $1 WHERE id = $2 AND status = 'PENDING'`,
		path, photo.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach preview to photo %d: %w", photo.ID, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := r.FindByID(ctx, photo.ID)
		if err != nil {
			return err
		}
		return current.CanDelete()
	}

	photo.PreviewPath = path
	return nil
}

// FindAbandoned lists PENDING photos saved before cutoff that have no open
// or succeeded checkout.
func (r *PhotoRepository) FindAbandoned(ctx context.Context, cutoff, now time.Time, limit int) ([]*domain.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos p
		WHERE p.status = 'PENDING'
		  AND p.date_of_save < $1
		  AND NOT EXISTS (
			SELECT 1 FROM payments pay
			WHERE pay.photo_id = p.id
			  AND (pay.status = 'succeeded' OR (pay.status = 'pending' AND pay.end_time > $2))
		  )
		ORDER BY p.date_of_save
		LIMIT $3
	`
	return r.list(ctx, query, cutoff, now, limit)
}

// DeleteIfAbandoned re-checks the abandonment condition inside the DELETE so a
// checkout started after FindAbandoned keeps the photo alive.
func (r *PhotoRepository) DeleteIfAbandoned(ctx context.Context, photoID int64, now time.Time) (bool, error) {
	query := `
		DELETE FROM photos p
		WHERE p.id = $1
		  AND p.status = 'PENDING'
		  AND NOT EXISTS (
			SELECT 1 FROM payments pay
			WHERE pay.photo_id = p.id
			  AND (pay.status = 'succeeded' OR (pay.status = 'pending' AND pay.end_time > $2))
		  )
	`
	tag, err := r.db.Pool.Exec(ctx, query, photoID, now)
	if err != nil {
		return false, fmt.Errorf("failed to delete abandoned photo %d: %w", photoID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindUnpurgedFailures lists CANCELED and FAILED photos whose files are still on disk.
func (r *PhotoRepository) FindUnpurgedFailures(ctx context.Context, limit int) ([]*domain.Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE status IN ('CANCELED', 'FAILED') AND purged_at IS NULL
		ORDER BY id
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *PhotoRepository) MarkPurged(ctx context.Context, photoID int64, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE photos SET purged_at = $1 WHERE id = $2 AND status IN ('CANCELED', 'FAILED')`,
		at, photoID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark photo %d purged: %w", photoID, err)
	}
	return nil
}

func (r *PhotoRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Photo, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Photo, error) {
		m, err := scanPhotoModel(row)
		return toPhoto(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("error occurred while scanning photo rows: %w", err)
	}
	return results, nil
}
