package pkg

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/survey-assistant/internal/assistant"
	"github.com/SAP-F-2025/survey-assistant/internal/cache"
	"github.com/SAP-F-2025/survey-assistant/internal/config"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill/httpdriver"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories/memory"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories/postgres"
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/go-resty/resty/v2"
)

// NewQuestionSource picks the configured question source: an extraction
// endpoint, then a question file, then the built-in sample questions.
func NewQuestionSource(cfg *config.Config) source.QuestionSource {
	switch {
	case cfg.QuestionSourceURL != "":
		return source.NewHTTPSource(cfg.QuestionSourceURL, cfg.FetchTimeout)
	case cfg.QuestionSourceFile != "":
		return source.FileSource{Path: cfg.QuestionSourceFile}
	default:
		return source.StaticSource{Questions: survey.SampleQuestions()}
	}
}

// NewAsker returns the Gemini client, or nil when no API key is configured.
func NewAsker(cfg *config.Config) assistant.Asker {
	if cfg.GeminiAPIKey == "" {
		return nil
	}
	return assistant.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, 0)
}

// NewDriverFactory opens HTTP form drivers sharing one client.
func NewDriverFactory(client *resty.Client) services.DriverFactory {
	return func(formURL string, qs models.QuestionSet) (formfill.Driver, error) {
		if _, err := httpdriver.ResponseURL(formURL); err != nil {
			return nil, fmt.Errorf("invalid form url %q: %w", formURL, err)
		}
		return httpdriver.New(client, formURL, qs), nil
	}
}

// BuildServiceDeps connects the stores named by cfg. Postgres and Redis are
// used when their URLs are set; otherwise sessions live in memory. The
// returned cleanup closes whatever was opened. Validator is left for the
// caller to set.
func BuildServiceDeps(cfg *config.Config, logger *slog.Logger) (services.ManagerDeps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repo repositories.SessionRepository = memory.NewSessionMemory()
	if cfg.DatabaseURL != "" {
		db, err := InitDatabase(cfg)
		if err != nil {
			return services.ManagerDeps{}, func() {}, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		repo = postgres.NewSessionPostgreSQL(db)
		logger.Info("Using PostgreSQL session repository")
	} else {
		logger.Warn("DATABASE_URL not set, sessions are kept in memory")
	}

	var backing cache.CacheService = cache.NewMemoryCache()
	if cfg.RedisURL != "" {
		client, err := NewRedisClient(cfg)
		if err != nil {
			cleanup()
			return services.ManagerDeps{}, func() {}, err
		}
		closers = append(closers, func() { _ = client.Close() })
		backing = cache.NewRedisCache(client, logger)
		logger.Info("Using Redis session cache")
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		cleanup()
		return services.ManagerDeps{}, func() {}, fmt.Errorf("failed to create event publisher: %w", err)
	}
	closers = append(closers, func() { _ = publisher.Close() })

	formClient := httpdriver.NewClient(cfg.FetchTimeout)
	deps := services.ManagerDeps{
		Repo:      repo,
		Cache:     cache.NewSessionCache(backing, cfg.SessionCacheTTL),
		Source:    NewQuestionSource(cfg),
		CSV:       storage.NewCSVStore(cfg.ResponsesDir),
		Publisher: publisher,
		Logger:    logger,
		Titles: func(ctx context.Context, formURL string) (string, error) {
			return httpdriver.FetchTitle(ctx, formClient, formURL)
		},
		Asker:        NewAsker(cfg),
		FetchTimeout: cfg.FetchTimeout,
	}
	if cfg.FormSubmitEnabled {
		deps.Submitter = formfill.NewSubmitter(utils.NewSlogLogger(logger), cfg.FormSubmitTimeout)
		deps.Drivers = NewDriverFactory(httpdriver.NewClient(cfg.FormSubmitTimeout))
	}
	if deps.Asker == nil {
		logger.Info("GEMINI_API_KEY not set, text suggestions disabled")
	}

	return deps, cleanup, nil
}
