package main

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"framelink-support/internal/config"
	"framelink-support/internal/domain/assistant"
	"framelink-support/internal/domain/contact"
	"framelink-support/internal/domain/upload"
	"framelink-support/internal/infrastructure/cache"
	"framelink-support/internal/infrastructure/database"
	"framelink-support/internal/infrastructure/openaiclient"
	"framelink-support/internal/infrastructure/repository/contactrepo"
	"framelink-support/internal/infrastructure/repository/uploadrepo"
	"framelink-support/internal/infrastructure/storage"
	"framelink-support/internal/interfaces/httpserver"
	"framelink-support/internal/interfaces/web"
)

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Driver:          cfg.DatabaseDriver,
		DSN:             cfg.DatabaseDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func provideArchive(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Backend, error) {
	return storage.NewArchive(ctx, cfg, log)
}

// provideUploadArchive keeps a disabled archive as a nil interface.
func provideUploadArchive(backend storage.Backend) upload.Archive {
	if backend == nil {
		return nil
	}
	return backend
}

// provideHandleStore shares the assistant id through Redis when configured.
func provideHandleStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (assistant.HandleStore, func(), error) {
	if !cfg.RedisConfigured() {
		return assistant.NewMemoryStore(), func() {}, nil
	}
	store, err := cache.NewAssistantStore(ctx, cfg.RedisURL, log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}, nil
}

func provideOpenAIClient(cfg *config.Config, log zerolog.Logger) *openaiclient.Client {
	return openaiclient.New(cfg, log)
}

func provideUploadRepository(db *gorm.DB) *uploadrepo.Repository {
	return uploadrepo.NewRepository(db)
}

func provideContactRepository(db *gorm.DB) *contactrepo.Repository {
	return contactrepo.NewRepository(db)
}

func provideUploadService(cfg *config.Config, repo *uploadrepo.Repository, remote *openaiclient.Client, archive upload.Archive, log zerolog.Logger) *upload.Service {
	return upload.NewService(cfg, repo, remote, archive, log)
}

func provideAssistantProvider(cfg *config.Config, client *openaiclient.Client, store assistant.HandleStore, log zerolog.Logger) *assistant.Provider {
	def := assistant.Definition{
		Model:        cfg.AssistantModel,
		Name:         cfg.AssistantName,
		Instructions: cfg.AssistantInstructions,
	}
	return assistant.NewProvider(def, cfg.AssistantID, client, store, log)
}

func provideFallback(cfg *config.Config) (*contact.FallbackGenerator, error) {
	return contact.LoadFallback(cfg.FallbackRulesFile)
}

func provideContactService(
	cfg *config.Config,
	repo *contactrepo.Repository,
	files *upload.Service,
	assistants *assistant.Provider,
	client *openaiclient.Client,
	fallback *contact.FallbackGenerator,
	log zerolog.Logger,
) (*contact.Service, error) {
	return contact.NewService(cfg, repo, files, assistants, client, fallback, client.Configured(), log)
}

func providePages(cfg *config.Config, log zerolog.Logger) (*web.Pages, error) {
	return web.NewPages(cfg, log)
}

func provideReadinessChecks(db *gorm.DB, archive storage.Backend, store assistant.HandleStore) []httpserver.ReadinessCheck {
	checks := []httpserver.ReadinessCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	}}
	if archive != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "archive", Check: archive.Health})
	}
	if hc, ok := store.(healthChecker); ok {
		checks = append(checks, httpserver.ReadinessCheck{Name: "redis", Check: hc.HealthCheck})
	}
	return checks
}

func provideHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	uploads *upload.Service,
	contacts *contact.Service,
	pages *web.Pages,
	checks []httpserver.ReadinessCheck,
) *httpserver.HttpServer {
	return httpserver.New(cfg, log, uploads, contacts, pages, checks)
}
