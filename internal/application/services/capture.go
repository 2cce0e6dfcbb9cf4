package services

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/oklog/ulid/v2"
)

const maxUniqueCodeAttempts = 5

type CaptureService struct {
	photos    application.PhotoRepository
	artifacts application.ArtifactStore
	catalog   domain.FrameCatalog
	metrics   application.Metrics
	now       func() time.Time
	logger    *slog.Logger
}

func NewCaptureService(
	photos application.PhotoRepository,
	artifacts application.ArtifactStore,
	catalog domain.FrameCatalog,
	logger *slog.Logger,
) *CaptureService {
	return &CaptureService{
		photos:    photos,
		artifacts: artifacts,
		catalog:   catalog,
		metrics:   application.NopMetrics{},
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

func (s *CaptureService) WithMetrics(m application.Metrics) *CaptureService {
	s.metrics = m
	return s
}

// SetSize records the chosen print size on the session.
func (s *CaptureService) SetSize(sess *domain.Session, frameKey string) (domain.Frame, error) {
	frame, err := s.catalog.Lookup(frameKey)
	if err != nil {
		return domain.Frame{}, err
	}
	sess.SelectFrame(frame)
	return frame, nil
}

type PaymentSummary struct {
	FrameKey        string
	FrameLabel      string
	Price           string
	Width           int
	Height          int
	PreviewFilename string
	PreviewPath     string
}

func (s *CaptureService) Summary(sess *domain.Session) (*PaymentSummary, error) {
	if sess.FrameKey == "" {
		return nil, application.NewSessionMissingError("photo size")
	}
	if sess.Width == 0 || sess.Height == 0 || sess.PreviewFilename == "" {
		return nil, application.NewSessionMissingError("photo dimensions or preview")
	}

	return &PaymentSummary{
		FrameKey:        sess.FrameKey,
		FrameLabel:      sess.FrameLabel,
		Price:           sess.Price,
		Width:           sess.Width,
		Height:          sess.Height,
		PreviewFilename: sess.PreviewFilename,
		PreviewPath:     sess.PreviewPath,
	}, nil
}

type SavedImage struct {
	Variant    domain.ArtifactVariant
	Filename   string
	Path       string
	UniqueCode string
}

// SaveImage stores a captured image sent as a data URL. The full capture
// creates the PENDING photo; an AI rendition becomes its deliverable.
func (s *CaptureService) SaveImage(ctx context.Context, sess *domain.Session, variant domain.ArtifactVariant, dataURL string) (*SavedImage, error) {
	data, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	switch variant {
	case domain.VariantOriginal:
		if sess.FrameLabel == "" {
			return nil, domain.NewMissingRequiredFieldError("frame selection")
		}
	case domain.VariantAI:
		if sess.OriginalFilename == "" {
			return nil, domain.NewValidationError("no captured photo to stylize")
		}
	}

	filename := artifactFilename(variant)
	path, err := s.artifacts.Save(variant, filename, data)
	if err != nil {
		return nil, err
	}

	saved := &SavedImage{Variant: variant, Filename: filename, Path: path}

	switch variant {
	case domain.VariantOriginal:
		photo, err := s.createPhoto(ctx, sess, filename, path)
		if err != nil {
			s.removeQuietly(path)
			return nil, err
		}
		saved.UniqueCode = photo.UniqueCode
	case domain.VariantAI:
		pending := domain.PhotoPending
		photo, err := s.photos.FindByFilename(ctx, sess.DeliverableFilename(), &pending)
		if err == nil {
			err = s.photos.ReplaceArtifact(ctx, photo, filename, path, domain.PhotoAI)
		}
		if err != nil {
			s.removeQuietly(path)
			return nil, err
		}
		saved.UniqueCode = photo.UniqueCode
	case domain.VariantPreview:
		code, err := s.attachPreview(ctx, sess, path)
		if err != nil {
			s.removeQuietly(path)
			return nil, err
		}
		saved.UniqueCode = code
	}

	sess.RecordArtifact(variant, filename, path)

	s.logger.Info("image saved",
		"variant", variant,
		"filename", filename,
		"unique_code", saved.UniqueCode)

	return saved, nil
}

func (s *CaptureService) createPhoto(ctx context.Context, sess *domain.Session, filename, path string) (*domain.Photo, error) {
	for attempt := 1; attempt <= maxUniqueCodeAttempts; attempt++ {
		code, err := domain.GenerateUniqueCode()
		if err != nil {
			return nil, application.NewInternalError(err)
		}

		photo, err := domain.NewPhoto(code, filename, path, sess.FrameLabel, domain.PhotoOriginal, s.now())
		if err != nil {
			return nil, err
		}
		photo.PreviewPath = sess.PreviewPath

		err = s.photos.Create(ctx, photo)
		if err == nil {
			return photo, nil
		}
		if !errors.Is(err, domain.ErrUniqueCodeTaken) {
			return nil, err
		}
		s.logger.Warn("unique code collision, retrying", "attempt", attempt)
	}
	return nil, domain.ErrUniqueCodeTaken
}

// attachPreview links a preview written after the full capture to its
// PENDING photo. A preview that arrives first is picked up by createPhoto.
func (s *CaptureService) attachPreview(ctx context.Context, sess *domain.Session, path string) (string, error) {
	filename := sess.DeliverableFilename()
	if filename == "" {
		return "", nil
	}

	pending := domain.PhotoPending
	photo, err := s.photos.FindByFilename(ctx, filename, &pending)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			return "", nil
		}
		return "", err
	}

	previous := photo.PreviewPath
	if err := s.photos.AttachPreview(ctx, photo, path); err != nil {
		return "", err
	}
	if previous != "" && previous != path {
		s.removeQuietly(previous)
	}
	return photo.UniqueCode, nil
}

// DeletePhoto discards the current capture so the visitor can retake it.
// The frame selection stays on the session.
func (s *CaptureService) DeletePhoto(ctx context.Context, sess *domain.Session) error {
	if sess.OriginalFilename == "" || sess.PreviewPath == "" {
		return domain.NewValidationError("no photo to delete")
	}

	removed, err := discardCapture(ctx, s.photos, s.artifacts, sess, s.logger)
	s.metrics.ArtifactsPurged(removed)
	if err != nil && !errors.Is(err, domain.ErrPhotoNotFound) {
		return err
	}

	sess.ClearCapture()
	return nil
}

func (s *CaptureService) removeQuietly(path string) {
	if err := s.artifacts.Remove(path); err != nil {
		s.logger.Error("failed to remove orphaned artifact", "path", path, "error", err)
	}
}

// discardCapture deletes the session's PENDING photo and the files the
// session wrote. Files are only removed when no photo record claims them or
// the claiming photo was deleted, so a paid artifact is never touched. It
// returns ErrPhotoNotFound for unrecorded captures and an invalid transition
// error when the photo already left PENDING.
func discardCapture(
	ctx context.Context,
	photos application.PhotoRepository,
	artifacts application.ArtifactStore,
	sess *domain.Session,
	logger *slog.Logger,
) (int, error) {
	filename := sess.DeliverableFilename()
	if filename == "" {
		return removeAll(artifacts, sess.ArtifactPaths(), logger), nil
	}

	photo, err := photos.FindByFilename(ctx, filename, nil)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			removed := removeAll(artifacts, sess.ArtifactPaths(), logger)
			return removed, err
		}
		return 0, application.NewInternalError(err)
	}

	if err := photo.CanDelete(); err != nil {
		logger.Info("keeping capture that left pending",
			"photo_id", photo.ID,
			"status", photo.Status)
		return 0, err
	}

	if err := photos.Delete(ctx, photo); err != nil {
		return 0, err
	}
	logger.Info("pending photo deleted",
		"photo_id", photo.ID,
		"unique_code", photo.UniqueCode)

	return removeAll(artifacts, sess.ArtifactPaths(), logger), nil
}

func removeAll(artifacts application.ArtifactStore, paths []string, logger *slog.Logger) int {
	removed := 0
	for _, p := range paths {
		if err := artifacts.Remove(p); err != nil {
			logger.Error("failed to remove artifact", "path", p, "error", err)
			continue
		}
		removed++
	}
	return removed
}

// decodeDataURL accepts "data:image/png;base64,<payload>" as produced by a
// canvas toDataURL call.
func decodeDataURL(dataURL string) ([]byte, error) {
	if dataURL == "" {
		return nil, domain.NewValidationError("no image provided")
	}
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, domain.NewValidationError("invalid base64 image format")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.NewValidationError("invalid base64 image format")
	}
	if len(data) == 0 {
		return nil, domain.NewValidationError("no image provided")
	}
	return data, nil
}

func artifactFilename(variant domain.ArtifactVariant) string {
	ext := ".png"
	if variant == domain.VariantPreview {
		ext = ".jpeg"
	}
	return "photo_" + strings.ToLower(ulid.Make().String()) + ext
}
