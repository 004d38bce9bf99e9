package handlers

import (
	"github.com/rs/zerolog"

	"framelink-support/internal/config"
)

// Provider wires HTTP handlers.
type Provider struct {
	Upload  *UploadHandler
	Contact *ContactHandler
}

func NewProvider(cfg *config.Config, uploads UploadService, contacts ContactService, log zerolog.Logger) *Provider {
	return &Provider{
		Upload:  NewUploadHandler(cfg, uploads, log),
		Contact: NewContactHandler(contacts, log),
	}
}
