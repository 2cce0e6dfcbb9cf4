package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
)

type SweepOptions struct {
	AbandonAfter time.Duration
	BatchSize    int
}

// SweepService reclaims storage: abandoned PENDING captures are deleted
// outright, CANCELED and FAILED photos lose their files but keep their record.
type SweepService struct {
	photos    application.PhotoRepository
	artifacts application.ArtifactStore
	metrics   application.Metrics
	opts      SweepOptions
	logger    *slog.Logger
}

func NewSweepService(
	photos application.PhotoRepository,
	artifacts application.ArtifactStore,
	opts SweepOptions,
	logger *slog.Logger,
) *SweepService {
	return &SweepService{
		photos:    photos,
		artifacts: artifacts,
		metrics:   application.NopMetrics{},
		opts:      opts,
		logger:    logger,
	}
}

func (s *SweepService) WithMetrics(m application.Metrics) *SweepService {
	s.metrics = m
	return s
}

type SweepReport struct {
	Deleted int
	Purged  int
	Failed  int
}

func (s *SweepService) Run(ctx context.Context, now time.Time) (*SweepReport, error) {
	report := &SweepReport{}

	abandoned, err := s.photos.FindAbandoned(ctx, now.Add(-s.opts.AbandonAfter), now, s.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	for _, photo := range abandoned {
		deleted, err := s.photos.DeleteIfAbandoned(ctx, photo.ID, now)
		if err != nil {
			s.logger.Error("failed to delete abandoned photo", "photo_id", photo.ID, "error", err)
			report.Failed++
			continue
		}
		if !deleted {
			continue
		}
		if !s.removeArtifacts(photo) {
			report.Failed++
			continue
		}
		report.Deleted++
	}

	failures, err := s.photos.FindUnpurgedFailures(ctx, s.opts.BatchSize)
	if err != nil {
		return report, err
	}
	for _, photo := range failures {
		if !photo.IsFailure() {
			continue
		}
		if !s.removeArtifacts(photo) {
			report.Failed++
			continue
		}
		if err := s.photos.MarkPurged(ctx, photo.ID, now); err != nil {
			s.logger.Error("failed to mark photo purged", "photo_id", photo.ID, "error", err)
			report.Failed++
			continue
		}
		report.Purged++
	}

	s.metrics.ArtifactsPurged(report.Deleted + report.Purged)
	return report, nil
}

// removeArtifacts deletes every file recorded for the photo and reports
// whether all of them are gone.
func (s *SweepService) removeArtifacts(photo *domain.Photo) bool {
	ok := true
	for _, p := range photo.ArtifactPaths() {
		if err := s.artifacts.Remove(p); err != nil {
			s.logger.Error("failed to remove artifact",
				"photo_id", photo.ID,
				"status", photo.Status,
				"path", p,
				"error", err)
			ok = false
		}
	}
	return ok
}
