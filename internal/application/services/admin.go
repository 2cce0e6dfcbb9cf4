package services

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
)

type AdminService struct {
	photos application.PhotoRepository
	links  application.LinkIssuer
	logger *slog.Logger
}

func NewAdminService(photos application.PhotoRepository, links application.LinkIssuer, logger *slog.Logger) *AdminService {
	return &AdminService{photos: photos, links: links, logger: logger}
}

type AdminDownload struct {
	UniqueCode  string
	Status      domain.PhotoStatus
	DownloadURL string
}

// LookupDownload resolves a code typed by staff. Only PAID photos get a link,
// and that link does not expire.
func (s *AdminService) LookupDownload(ctx context.Context, code string) (*AdminDownload, error) {
	code = domain.NormalizeUniqueCode(code)
	if code == "" {
		return nil, domain.NewMissingRequiredFieldError("unique code")
	}

	photo, err := s.photos.FindByUniqueCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := photo.DownloadEligibility(); err != nil {
		s.logger.Info("admin download refused",
			"unique_code", code,
			"status", photo.Status)
		return nil, err
	}

	link, err := s.links.Issue(photo.Filename, false, true)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("admin download issued", "unique_code", code, "photo_id", photo.ID)

	return &AdminDownload{
		UniqueCode:  photo.UniqueCode,
		Status:      photo.Status,
		DownloadURL: link,
	}, nil
}
