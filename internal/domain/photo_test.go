package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoto(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		photo, err := domain.NewPhoto("ABC234", "a.png", "/images/full/a.png", "frame1", domain.PhotoOriginal, time.Now())

		require.NoError(t, err)
		assert.Equal(t, domain.PhotoPending, photo.Status)
		assert.Nil(t, photo.PurgedAt)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := domain.NewPhoto("ABC234", "a.png", "/images/full/a.png", "frame1", domain.PhotoType("RAW"), time.Now())

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects missing filename", func(t *testing.T) {
		_, err := domain.NewPhoto("ABC234", "", "/images/full/a.png", "frame1", domain.PhotoOriginal, time.Now())

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "filename is required")
	})
}

func TestGenerateUniqueCode(t *testing.T) {
	code, err := domain.GenerateUniqueCode()

	require.NoError(t, err)
	assert.Len(t, code, domain.UniqueCodeLength)
	assert.False(t, strings.ContainsAny(code, "01IO"))
	assert.Equal(t, code, domain.NormalizeUniqueCode(" "+strings.ToLower(code)+" "))
}

func TestPhoto_Transitions(t *testing.T) {
	t.Run("pending photo may leave for any outcome", func(t *testing.T) {
		photo := &domain.Photo{Status: domain.PhotoPending}

		for _, target := range []domain.PhotoStatus{domain.PhotoPaid, domain.PhotoCanceled, domain.PhotoFailed} {
			assert.NoError(t, photo.CanTransitionTo(target), target)
		}
		assert.ErrorIs(t, photo.CanTransitionTo(domain.PhotoExpired), domain.ErrInvalidTransition)
	})

	t.Run("settled photo never moves again", func(t *testing.T) {
		for _, status := range []domain.PhotoStatus{domain.PhotoPaid, domain.PhotoCanceled, domain.PhotoFailed} {
			photo := &domain.Photo{Status: status}
			assert.ErrorIs(t, photo.CanTransitionTo(domain.PhotoPaid), domain.ErrInvalidTransition)
			assert.ErrorIs(t, photo.CanTransitionTo(domain.PhotoFailed), domain.ErrInvalidTransition)
		}
	})
}

func TestPhoto_ArtifactPaths(t *testing.T) {
	photo, err := domain.NewPhoto("ABC234", "full.png", "/images/full/full.png", "7 cm x 10 cm", domain.PhotoOriginal, time.Now())
	require.NoError(t, err)
	photo.PreviewPath = "/images/preview/full.jpeg"

	assert.Equal(t, []string{"/images/full/full.png", "/images/preview/full.jpeg"}, photo.ArtifactPaths())

	photo.Path = "/images/ai/ai.png"
	assert.Equal(t,
		[]string{"/images/ai/ai.png", "/images/full/full.png", "/images/preview/full.jpeg"},
		photo.ArtifactPaths())
}

func TestPhoto_IsFailure(t *testing.T) {
	assert.True(t, (&domain.Photo{Status: domain.PhotoCanceled}).IsFailure())
	assert.True(t, (&domain.Photo{Status: domain.PhotoFailed}).IsFailure())
	assert.False(t, (&domain.Photo{Status: domain.PhotoPaid}).IsFailure())
	assert.False(t, (&domain.Photo{Status: domain.PhotoPending}).IsFailure())
}

func TestPhoto_CanDelete(t *testing.T) {
	for _, status := range []domain.PhotoStatus{
		domain.PhotoPaid, domain.PhotoCanceled, domain.PhotoFailed, domain.PhotoExpired, domain.PhotoRefunded,
	} {
		t.Run(string(status), func(t *testing.T) {
			photo := &domain.Photo{Status: status}
			assert.ErrorIs(t, photo.CanDelete(), domain.ErrInvalidTransition)
		})
	}

	assert.NoError(t, (&domain.Photo{Status: domain.PhotoPending}).CanDelete())
}

func TestPhoto_DownloadEligibility(t *testing.T) {
	tests := []struct {
		status  domain.PhotoStatus
		message string
	}{
		{domain.PhotoExpired, "The Photo has Expired. Unable to Download."},
		{domain.PhotoFailed, "The Photo's Payment Failed. Unable to Download."},
		{domain.PhotoCanceled, "The Photo's Payment was Canceled. Unable to Download."},
		{domain.PhotoRefunded, "The Photo's Payment was Refunded. Unable to Download."},
		{domain.PhotoPending, "The Photo has not been Paid. Unable to Download."},
		{domain.PhotoStatus("LOST"), "Invalid Photo Status. Unable to Download."},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := (&domain.Photo{Status: tt.status}).DownloadEligibility()

			assert.ErrorIs(t, err, domain.ErrDownloadRejected)
			assert.EqualError(t, err, tt.message)
		})
	}

	assert.NoError(t, (&domain.Photo{Status: domain.PhotoPaid}).DownloadEligibility())
}
