package domain

import (
	"crypto/rand"
	"slices"
	"strings"
	"time"
)

// PhotoStatus governs whether a captured artifact may ever be downloaded.
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "PENDING"
	PhotoCanceled PhotoStatus = "CANCELED"
	PhotoPaid     PhotoStatus = "PAID"
	PhotoFailed   PhotoStatus = "FAILED"
	PhotoExpired  PhotoStatus = "EXPIRED"
	PhotoRefunded PhotoStatus = "REFUNDED"
)

type PhotoType string

const (
	PhotoOriginal PhotoType = "ORIGINAL"
	PhotoAI       PhotoType = "AI"
)

// UniqueCodeLength is the length of the code a visitor reads out to staff.
const UniqueCodeLength = 6

// uniqueCodeAlphabet leaves out 0/O and 1/I so codes survive being typed by hand.
const uniqueCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type Photo struct {
	ID         int64
	UniqueCode string
	Filename   string
	Path       string
	Type       PhotoType
	// OriginalPath is the full capture; it stays when an AI rendition
	// replaces Path. PreviewPath is the watermarked preview, if any.
	OriginalPath string
	PreviewPath  string
	Frame        string
	SavedAt      time.Time
	Status       PhotoStatus
	PurgedAt     *time.Time
}

func NewPhoto(uniqueCode, filename, path, frame string, photoType PhotoType, savedAt time.Time) (*Photo, error) {
	if uniqueCode == "" {
		return nil, NewMissingRequiredFieldError("unique code")
	}
	if filename == "" {
		return nil, NewMissingRequiredFieldError("filename")
	}
	if path == "" {
		return nil, NewMissingRequiredFieldError("path")
	}
	if frame == "" {
		return nil, NewMissingRequiredFieldError("frame")
	}
	if photoType != PhotoOriginal && photoType != PhotoAI {
		return nil, NewValidationError("unknown photo type %q", photoType)
	}

	return &Photo{
		UniqueCode:   uniqueCode,
		Filename:     filename,
		Path:         path,
		Type:         photoType,
		OriginalPath: path,
		Frame:        frame,
		SavedAt:      savedAt,
		Status:       PhotoPending,
	}, nil
}

// GenerateUniqueCode returns a random code drawn from an alphabet without
// look-alike characters. Collisions are resolved by the caller retrying.
func GenerateUniqueCode() (string, error) {
	buf := make([]byte, UniqueCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, UniqueCodeLength)
	for i, b := range buf {
		code[i] = uniqueCodeAlphabet[int(b)%len(uniqueCodeAlphabet)]
	}
	return string(code), nil
}

// NormalizeUniqueCode trims and upper-cases a code typed by a human.
func NormalizeUniqueCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CanTransitionTo reports whether the photo may move to target.
// A photo leaves PENDING exactly once; every other state is terminal for the flow.
func (p *Photo) CanTransitionTo(target PhotoStatus) error {
	switch p.Status {
	case PhotoPending:
		if slices.Contains([]PhotoStatus{PhotoCanceled, PhotoFailed, PhotoPaid}, target) {
			return nil
		}
	}
	return NewInvalidTransitionError(string(p.Status), string(target))
}

// CanDelete only allows removing records that never reached a financial outcome.
func (p *Photo) CanDelete() error {
	if p.Status != PhotoPending {
		return &DomainError{
			Code:    ErrCodeInvalidTransition,
			Message: "only pending photos can be deleted, photo is " + string(p.Status),
		}
	}
	return nil
}

// ArtifactPaths lists every file written for the photo, deliverable first.
func (p *Photo) ArtifactPaths() []string {
	paths := make([]string, 0, 3)
	for _, path := range []string{p.Path, p.OriginalPath, p.PreviewPath} {
		if path != "" && !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	return paths
}

// IsFailure reports the terminal-failure states whose artifacts may be reclaimed.
func (p *Photo) IsFailure() bool {
	return p.Status == PhotoCanceled || p.Status == PhotoFailed
}

// DownloadEligibility decides whether staff may hand out the artifact.
func (p *Photo) DownloadEligibility() error {
	switch p.Status {
	case PhotoPaid:
		return nil
	case PhotoExpired:
		return NewDownloadRejectedError("The Photo has Expired. Unable to Download.")
	case PhotoFailed:
		return NewDownloadRejectedError("The Photo's Payment Failed. Unable to Download.")
	case PhotoCanceled:
		return NewDownloadRejectedError("The Photo's Payment was Canceled. Unable to Download.")
	case PhotoRefunded:
		return NewDownloadRejectedError("The Photo's Payment was Refunded. Unable to Download.")
	case PhotoPending:
		return NewDownloadRejectedError("The Photo has not been Paid. Unable to Download.")
	default:
		return NewDownloadRejectedError("Invalid Photo Status. Unable to Download.")
	}
}
