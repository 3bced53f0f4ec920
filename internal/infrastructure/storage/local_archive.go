package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openaccounting/backend/internal/application/reporting"
)

// Ensure LocalBillArchive implements BillArchive
var _ reporting.BillArchive = (*LocalBillArchive)(nil)

// LocalBillArchive stores rendered bills on the local filesystem.
// Used for development setups without S3-compatible storage.
type LocalBillArchive struct {
	baseDir string
}

// NewLocalBillArchive creates a new LocalBillArchive rooted at baseDir
func NewLocalBillArchive(baseDir string) (*LocalBillArchive, error) {
	if baseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalBillArchive{baseDir: baseDir}, nil
}

// Store writes a rendered bill below the base directory and returns its path
func (a *LocalBillArchive) Store(_ context.Context, key, _ string, data []byte) (string, error) {
	if key == "" {
		return "", errors.New("object key is required")
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("object key %q escapes the archive directory", key)
	}

	path := filepath.Join(a.baseDir, cleaned)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to store object %q: %w", key, err)
	}
	return path, nil
}
