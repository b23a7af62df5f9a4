// Package app wires configuration, storage, clients, and services into the
// shared core used by cmd/echo-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/echo-journal/echo/internal/clients/gemini"
	"github.com/echo-journal/echo/internal/clients/mailer"
	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
	"github.com/echo-journal/echo/internal/services/analytics"
	"github.com/echo-journal/echo/internal/services/coping"
	"github.com/echo-journal/echo/internal/services/digest"
	"github.com/echo-journal/echo/internal/services/insights"
	"github.com/echo-journal/echo/internal/services/journal"
	"github.com/echo-journal/echo/internal/services/triggers"
	"github.com/echo-journal/echo/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	GeminiClient     *gemini.Client
	JournalService   interfaces.JournalService
	InsightsService  *insights.Service
	AnalyticsService interfaces.AnalyticsService
	DigestService    interfaces.DigestService
	CopingService    interfaces.CopingService
	TriggersService  interfaces.TriggersService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, ECHO_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("ECHO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "echo.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/echo.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to binary directory
	if config.Storage.Entries.Path != "" && !filepath.IsAbs(config.Storage.Entries.Path) {
		config.Storage.Entries.Path = filepath.Join(binDir, config.Storage.Entries.Path)
	}
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	// Initialize logger
	logger := common.NewLoggerFromConfig(config.Logging)

	// Initialize storage
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()

	geminiKey, err := common.ResolveAPIKey(ctx, storageManager.InternalStore(), "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - classification falls back to the lexicon analyzer")
	}

	var geminiClient *gemini.Client
	if geminiKey != "" {
		geminiClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		}
	}

	var mail interfaces.Mailer
	if config.Digest.SMTPAddr != "" {
		mail = mailer.NewSMTPMailer(config.Digest.SMTPAddr, config.Digest.From, config.Digest.SMTPUser, config.Digest.SMTPPass, logger)
	} else {
		mail = mailer.NewLogMailer(logger)
	}

	// Initialize services. The Gemini client serves both classification and
	// summary writing; a nil client means deterministic fallbacks throughout.
	var classifier interfaces.EmotionClassifier
	var writer interfaces.SummaryWriter
	if geminiClient != nil {
		classifier = geminiClient
		writer = geminiClient
	}

	journalService := journal.NewService(storageManager, classifier, logger)
	insightsService := insights.NewService(storageManager, writer, logger)
	analyticsService := analytics.NewService(storageManager, logger)
	copingService := coping.NewService(storageManager, logger)
	triggersService := triggers.NewService(storageManager, logger)
	digestService := digest.NewService(storageManager, insightsService, copingService, mail, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		GeminiClient:     geminiClient,
		JournalService:   journalService,
		InsightsService:  insightsService,
		AnalyticsService: analyticsService,
		DigestService:    digestService,
		CopingService:    copingService,
		TriggersService:  triggersService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
