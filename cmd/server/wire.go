//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"framelink-support/internal/config"
)

var infrastructureSet = wire.NewSet(
	newDatabaseConfig,
	newGormDB,
	provideArchive,
	provideUploadArchive,
	provideHandleStore,
	provideOpenAIClient,
	provideUploadRepository,
	provideContactRepository,
)

var domainSet = wire.NewSet(
	provideUploadService,
	provideAssistantProvider,
	provideFallback,
	provideContactService,
)

// BuildApplication assembles the support service with Wire.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		providePages,
		provideReadinessChecks,
		provideHTTPServer,
		NewApplication,
	)
	return nil, nil, nil
}
