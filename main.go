package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/config"
	"github.com/nijaru/yt-brief/handlers/api"
	"github.com/nijaru/yt-brief/logger"
	"github.com/nijaru/yt-brief/repository/sqlite"
	"github.com/nijaru/yt-brief/resolver"
	"github.com/nijaru/yt-brief/scripts"
	"github.com/nijaru/yt-brief/services/summary"
	"github.com/nijaru/yt-brief/services/transcript"
	"github.com/nijaru/yt-brief/services/video"
	"github.com/nijaru/yt-brief/storage"
	"github.com/nijaru/yt-brief/transcription"
	"github.com/nijaru/yt-brief/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	// Initialize database
	dbConfig := sqlite.DefaultDBConfig()
	dbConfig.MaxConnections = cfg.Database.MaxConnections
	dbConfig.MaxIdleConnections = cfg.Database.MaxIdleConnections
	dbConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

	db, err := sqlite.Open(ctx, cfg.Database.Path, dbConfig)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	repo := sqlite.NewRepository(db)
	validator := validation.New(cfg.Download.AllowedHosts)
	runner := scripts.NewExecRunner(appLogger, nil)

	// Video acquisition
	videoService := video.NewService(
		repo,
		scripts.NewExtractor(runner, scripts.Config{
			ExtractorPath: cfg.Download.ExtractorPath,
			Format:        cfg.Download.Format,
		}),
		resolver.New(cfg.Download.Dir, cfg.Download.Extensions, cfg.Download.RecentWindow),
		validator,
		video.Config{
			DownloadDir:    cfg.Download.Dir,
			ProcessTimeout: cfg.Download.Timeout,
			MaxConcurrent:  cfg.Download.MaxConcurrent,
		},
		appLogger,
	)

	if _, err := videoService.RecoverStale(ctx); err != nil {
		appLogger.WithError(err).Warn("Failed to recover stale jobs")
	}

	// Transcription
	router := transcription.NewRouter(
		transcription.NewHosted(cfg.Transcription.APIKey, cfg.Transcription.BaseURL, cfg.Transcription.Model),
		transcription.NewLocal(runner, cfg.Transcription.LocalBinary, cfg.Transcription.LocalModel),
		cfg.Transcription.MaxUploadBytes,
		appLogger,
	)

	transcriptService := transcript.NewService(
		repo,
		router,
		newArchiver(ctx, cfg.Archive, appLogger),
		transcript.Config{ProcessTimeout: cfg.Transcription.Timeout},
		appLogger,
	)

	// Summaries
	summaryService := summary.NewService(
		repo,
		newSummarizer(cfg.Summary),
		summary.Config{ProcessTimeout: cfg.Summary.Timeout},
		appLogger,
	)

	server := api.NewServer(cfg,
		api.WithLogger(appLogger),
		api.WithServices(videoService, transcriptService, summaryService, validator),
	)

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.WithError(err).Error("Server shutdown error")
		}
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		appLogger.WithError(err).Fatal("Server error")
	}
}

// newArchiver returns nil when no bucket is configured or the client cannot
// be built; transcripts are then kept in the database only.
func newArchiver(ctx context.Context, cfg config.ArchiveConfig, logger *logrus.Logger) transcript.Archiver {
	if !cfg.Enabled() {
		return nil
	}

	client, err := storage.NewSpacesClient(ctx, storage.SpacesConfig{
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		Bucket:    cfg.Bucket,
	})
	if err != nil {
		logger.WithError(err).Warn("Transcript archive disabled")
		return nil
	}

	logger.WithField("bucket", cfg.Bucket).Info("Archiving transcripts")
	return client
}

func newSummarizer(cfg config.SummaryConfig) summary.Summarizer {
	if cfg.Provider == "gemini" {
		return summary.NewGeminiSummarizer(cfg.GeminiAPIKey, cfg.Model, "")
	}
	return summary.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
}
