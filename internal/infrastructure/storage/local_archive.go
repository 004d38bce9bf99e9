package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LocalArchive keeps original upload bytes on the local filesystem.
type LocalArchive struct {
	basePath string
	log      zerolog.Logger
}

// NewLocalArchive creates the base directory if needed.
func NewLocalArchive(basePath string, log zerolog.Logger) (*LocalArchive, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("local archive path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	logger := log.With().Str("component", "local-archive").Logger()
	logger.Info().Str("path", basePath).Msg("local archive initialized")
	return &LocalArchive{basePath: basePath, log: logger}, nil
}

func (l *LocalArchive) path(key string) (string, error) {
	full := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive key %q escapes base path", key)
	}
	return full, nil
}

func (l *LocalArchive) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	l.log.Debug().Str("key", key).Int64("bytes", written).Msg("archived upload")
	return nil
}

func (l *LocalArchive) Delete(_ context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	_ = os.Remove(filepath.Dir(fullPath))
	return nil
}

// Health checks that the archive directory is writable.
func (l *LocalArchive) Health(context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("archive directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}
