package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopchat/shopchat/internal/chat"
	"github.com/shopchat/shopchat/internal/config"
	"github.com/shopchat/shopchat/internal/observability"
	"github.com/shopchat/shopchat/internal/store"
)

type ReadinessCheck func(ctx context.Context) error

type ChatService interface {
	Answer(ctx context.Context, turns []chat.Turn) (string, error)
}

type Dependencies struct {
	Logger           *slog.Logger
	Readiness        ReadinessCheck
	DependencyTimout time.Duration
	Catalog          store.Catalog
	Chat             ChatService
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "reason": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(deps, w, r)
	})
	mux.HandleFunc("GET /v1/products", func(w http.ResponseWriter, r *http.Request) {
		handleListProducts(deps, w, r)
	})
	mux.HandleFunc("GET /v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetProduct(deps, w, r)
	})
	mux.HandleFunc("GET /v1/categories", func(w http.ResponseWriter, r *http.Request) {
		handleListCategories(deps, w, r)
	})
	mux.HandleFunc("GET /v1/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetCategory(deps, w, r)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckDatabase(repo interface {
	HealthCheck(ctx context.Context) error
}) ReadinessCheck {
	return func(ctx context.Context) error {
		return repo.HealthCheck(ctx)
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
