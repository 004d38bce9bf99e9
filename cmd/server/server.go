package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"framelink-support/internal/config"
	"framelink-support/internal/infrastructure/logger"
	"framelink-support/internal/infrastructure/observability"
	"framelink-support/internal/interfaces/httpserver"
)

// @title FrameLink Support API
// @version 1.0
// @description Support questions answered by an assistant over uploaded documents
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build application")
	}
	defer cleanup()

	if !cfg.OpenAIConfigured() {
		log.Warn().Msg("OPENAI_API_KEY is not set; contact and upload endpoints will answer 503")
	}

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication mirrors BuildApplication in wire.go.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	db, err := newGormDB(ctx, newDatabaseConfig(cfg), log)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}

	archive, err := provideArchive(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("archive: %w", err)
	}

	store, closeStore, err := provideHandleStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("assistant store: %w", err)
	}

	openai := provideOpenAIClient(cfg, log)
	uploads := provideUploadService(cfg, provideUploadRepository(db), openai, provideUploadArchive(archive), log)
	assistants := provideAssistantProvider(cfg, openai, store, log)

	fallback, err := provideFallback(cfg)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("fallback rules: %w", err)
	}

	contacts, err := provideContactService(cfg, provideContactRepository(db), uploads, assistants, openai, fallback, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	pages, err := providePages(cfg, log)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	server := provideHTTPServer(cfg, log, uploads, contacts, pages, provideReadinessChecks(db, archive, store))
	return NewApplication(server, log), closeStore, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
