package services

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
)

type DownloadService struct {
	photos    application.PhotoRepository
	links     application.LinkIssuer
	artifacts application.ArtifactStore
	logger    *slog.Logger
}

func NewDownloadService(
	photos application.PhotoRepository,
	links application.LinkIssuer,
	artifacts application.ArtifactStore,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{photos: photos, links: links, artifacts: artifacts, logger: logger}
}

type Download struct {
	Filename string
	Body     io.ReadCloser
}

// Open resolves a secure link token to the deliverable file. A valid token
// for a file that is gone is reported as NOT_FOUND and logged loudly, since
// it means storage and records disagree.
func (s *DownloadService) Open(ctx context.Context, token string) (*Download, error) {
	if token == "" {
		return nil, domain.NewMissingRequiredFieldError("token")
	}

	filename, err := s.links.Resolve(token)
	if err != nil {
		return nil, err
	}

	photo, err := s.photos.FindByFilename(ctx, filename, nil)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			s.logger.Error("secure link for unknown photo", "filename", filename)
			return nil, &domain.DomainError{Code: domain.ErrCodeNotFound, Message: "image not found"}
		}
		return nil, application.NewInternalError(err)
	}
	if err := photo.DownloadEligibility(); err != nil {
		return nil, err
	}

	variant := domain.VariantOriginal
	if photo.Type == domain.PhotoAI {
		variant = domain.VariantAI
	}

	body, err := s.artifacts.Open(variant, filename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("secure link resolved but file is missing",
				"filename", filename,
				"photo_id", photo.ID)
		}
		return nil, err
	}

	return &Download{Filename: filename, Body: body}, nil
}
