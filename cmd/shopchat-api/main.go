package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shopchat/shopchat/internal/answer"
	"github.com/shopchat/shopchat/internal/api"
	"github.com/shopchat/shopchat/internal/chat"
	"github.com/shopchat/shopchat/internal/config"
	"github.com/shopchat/shopchat/internal/llm"
	"github.com/shopchat/shopchat/internal/nlsql"
	"github.com/shopchat/shopchat/internal/observability"
	"github.com/shopchat/shopchat/internal/store"
	"github.com/shopchat/shopchat/internal/store/jsonstore"
	"github.com/shopchat/shopchat/internal/store/postgres"
)

func main() {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("shopchat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	deps := api.Dependencies{
		Logger:           logger,
		DependencyTimout: time.Second,
	}

	var repo *postgres.Repository
	switch {
	case cfg.Database.DSN != "":
		db, err := postgres.Open(context.Background(), postgres.DBConfig{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			logger.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()

		repo = postgres.NewRepository(db)
		deps.Catalog = repo
		deps.Readiness = api.CheckDatabase(repo)
	case cfg.Database.StaticDataPath != "":
		static, err := jsonstore.Load(cfg.Database.StaticDataPath)
		if err != nil {
			logger.Error("failed to load static catalog", slog.Any("error", err))
			os.Exit(1)
		}
		deps.Catalog = static
		logger.Info("serving static catalog; chat pipeline disabled",
			slog.String("path", cfg.Database.StaticDataPath))
	default:
		logger.Error("no catalog configured; set SHOPCHAT_DB_DSN or SHOPCHAT_STATIC_DATA_PATH")
		os.Exit(1)
	}

	// The chat pipeline needs both an SQL store to ground queries against
	// and a model credential to generate them.
	if repo != nil {
		var generator chat.QueryGenerator
		var formatter chat.AnswerFormatter
		if cfg.AI.Enabled && cfg.AI.APIKey != "" {
			client, err := llm.NewClient(llm.Config{
				BaseURL:     cfg.AI.BaseURL,
				APIKey:      cfg.AI.APIKey,
				Temperature: cfg.AI.Temperature,
				Timeout:     cfg.AI.Timeout,
			})
			if err != nil {
				logger.Error("failed to initialize model client", slog.Any("error", err))
				os.Exit(1)
			}
			generator = nlsql.NewGenerator(client, cfg.AI.SQLModel, cfg.Chat.DefaultRowLimit)
			formatter = answer.NewModelFormatter(client, cfg.AI.AnswerModel)
		} else {
			logger.Warn("no model credential configured; chat will report the AI service unavailable")
		}

		var introspector store.Introspector = repo
		var querier store.Querier = repo
		deps.Chat = chat.NewService(introspector, querier, generator, formatter, logger, chat.Config{
			SchemaSampleRows: cfg.Chat.SchemaSampleRows,
			AllowWriteSQL:    cfg.Chat.AllowWriteSQL,
			RequestTimeout:   cfg.Chat.RequestTimeout,
		})
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
