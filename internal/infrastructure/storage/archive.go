package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"framelink-support/internal/config"
)

// Backend is an upload archive with a health probe.
type Backend interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

// NewArchive builds the configured backend. It returns nil when archiving is off.
func NewArchive(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Backend, error) {
	switch cfg.ArchiveBackend {
	case config.ArchiveBackendS3:
		archive, err := NewS3Archive(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return archive, nil
	case config.ArchiveBackendLocal:
		archive, err := NewLocalArchive(cfg.ArchiveLocalPath, log)
		if err != nil {
			return nil, err
		}
		return archive, nil
	case config.ArchiveBackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported archive backend %q", cfg.ArchiveBackend)
	}
}
