// Package storage resolves input references into paths the host can import.
// Local paths pass through untouched; s3:// URIs are downloaded into a
// staging directory first.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Static errors for storage operations.
var (
	// ErrS3NotConfigured is returned when an s3:// reference is staged without S3 configuration.
	ErrS3NotConfigured = errors.New("storage: S3 storage is not configured")
	// ErrInvalidS3URI is returned when an s3:// reference has no bucket or key.
	ErrInvalidS3URI = errors.New("storage: invalid S3 URI")
	// ErrEmptyReference is returned when an empty reference is staged.
	ErrEmptyReference = errors.New("storage: empty reference")
)

// Stager turns input references into host-importable local paths.
type Stager interface {
	// Stage returns a local path for ref. Plain paths are returned unchanged and
	// are not checked for existence; the host import is the validation.
	Stage(ctx context.Context, ref string) (path string, err error)

	// Release removes staged copies. Paths that were not staged are ignored.
	Release(ctx context.Context, paths []string) error
}

// IsS3URI reports whether ref uses the s3:// scheme.
func IsS3URI(ref string) bool {
	return strings.HasPrefix(ref, "s3://")
}

// ParseS3URI splits s3://bucket/key into bucket and key.
func ParseS3URI(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrInvalidS3URI, ref, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, ref)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URI, ref)
	}
	return u.Host, key, nil
}
