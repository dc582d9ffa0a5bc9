package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Compile-time check that LocalStorage implements Stager.
var _ Stager = (*LocalStorage)(nil)

// LocalStorage stages plain file paths and owns the staging directory.
// It rejects s3:// references unless wrapped by S3Storage.
type LocalStorage struct {
	tempDir string
}

// NewLocalStorage creates a new LocalStorage instance.
// If tempDir is empty, a "stillcut" directory under os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalStorage(tempDir string) (*LocalStorage, error) {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "stillcut")
	}

	if err := os.MkdirAll(tempDir, 0750); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	return &LocalStorage{tempDir: tempDir}, nil
}

// TempDir returns the staging directory path.
func (s *LocalStorage) TempDir() string {
	return s.tempDir
}

// Stage returns plain paths unchanged.
func (s *LocalStorage) Stage(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyReference
	}
	if IsS3URI(ref) {
		return "", fmt.Errorf("%w: %s", ErrS3NotConfigured, ref)
	}
	return ref, nil
}

// Release removes the given paths that live inside the staging directory.
func (s *LocalStorage) Release(ctx context.Context, paths []string) error {
	var staged []string
	for _, p := range paths {
		if s.owns(p) {
			staged = append(staged, p)
		}
	}
	return s.CleanupTemp(ctx, staged)
}

// SaveTemp saves data to a file in the staging directory and returns its path.
// The extension of name is kept so the host can detect the media type.
func (s *LocalStorage) SaveTemp(ctx context.Context, name string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(filepath.Base(name), ext)
	f, err := os.CreateTemp(s.tempDir, base+"_*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	fileName := f.Name()
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(fileName)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(fileName)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return fileName, nil
}

// CleanupTemp removes the specified files.
// It continues cleanup even if some files fail to delete,
// returning the first error encountered.
func (s *LocalStorage) CleanupTemp(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove temp file %s: %w", p, err)
			}
		}
	}
	return firstErr
}

func (s *LocalStorage) owns(path string) bool {
	rel, err := filepath.Rel(s.tempDir, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}
