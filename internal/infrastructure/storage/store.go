// Package storage keeps captured image files on an afero filesystem, one
// directory per artifact variant.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/config"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/spf13/afero"
)

type Store struct {
	fs   afero.Fs
	dirs map[domain.ArtifactVariant]string
}

var _ application.ArtifactStore = (*Store)(nil)

// NewStore creates the variant directories on fs if they are missing.
func NewStore(fsys afero.Fs, cfg config.StorageConfig) (*Store, error) {
	s := &Store{
		fs: fsys,
		dirs: map[domain.ArtifactVariant]string{
			domain.VariantOriginal: filepath.Clean(cfg.OriginalDir),
			domain.VariantPreview:  filepath.Clean(cfg.PreviewDir),
			domain.VariantAI:       filepath.Clean(cfg.AIDir),
		},
	}
	for _, dir := range s.dirs {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir %s: %w", dir, err)
		}
	}
	return s, nil
}

func NewOSStore(cfg config.StorageConfig) (*Store, error) {
	return NewStore(afero.NewOsFs(), cfg)
}

// Save writes data under the variant directory and returns the stored path.
func (s *Store) Save(variant domain.ArtifactVariant, filename string, data []byte) (string, error) {
	p, err := s.pathFor(variant, filename)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domain.NewValidationError("image data is empty")
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", p, err)
	}
	return p, nil
}

func (s *Store) Open(variant domain.ArtifactVariant, filename string) (io.ReadCloser, error) {
	p, err := s.pathFor(variant, filename)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.DomainError{Code: domain.ErrCodeNotFound, Message: "image file not found"}
		}
		return nil, fmt.Errorf("open artifact %s: %w", p, err)
	}
	return f, nil
}

// Remove deletes a stored file. Paths outside the artifact directories are
// refused and a missing file is not an error.
func (s *Store) Remove(p string) error {
	if p == "" {
		return nil
	}
	clean := filepath.Clean(p)
	if !s.owns(clean) {
		return domain.NewValidationError("refusing to remove %s outside artifact storage", p)
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", clean, err)
	}
	return nil
}

func (s *Store) pathFor(variant domain.ArtifactVariant, filename string) (string, error) {
	dir, ok := s.dirs[variant]
	if !ok {
		return "", domain.NewValidationError("unknown artifact variant %q", variant)
	}
	if filename == "" || filename != path.Base(filename) || strings.ContainsAny(filename, `/\`) || filename == ".." {
		return "", domain.NewValidationError("invalid filename %q", filename)
	}
	return filepath.Join(dir, filename), nil
}

func (s *Store) owns(p string) bool {
	for _, dir := range s.dirs {
		if filepath.Dir(p) == dir {
			return true
		}
	}
	return false
}
