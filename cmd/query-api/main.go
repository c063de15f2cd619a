package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lumenforge/supply-risk-platform/internal/config"
	"github.com/lumenforge/supply-risk-platform/internal/httpx"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
	"github.com/lumenforge/supply-risk-platform/internal/platform/logging"
	"github.com/lumenforge/supply-risk-platform/internal/risk"
	"github.com/lumenforge/supply-risk-platform/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.New("query-api", cfg.Dev)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.RunMigrations(ctx, dbPool); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	repo := storage.NewRepository(dbPool)
	graphCache := risk.NewGraphCache(repo)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(15 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "query-api"})
	})

	router.Get("/v1/risk-events", func(w http.ResponseWriter, r *http.Request) {
		severityBand := r.URL.Query().Get("severity_band")
		limit := parseLimit(r.URL.Query().Get("limit"), 100)

		events, err := repo.ListRiskEvents(r.Context(), severityBand, limit)
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": events})
	})

	router.Get("/v1/alerts", func(w http.ResponseWriter, r *http.Request) {
		unacked := r.URL.Query().Get("unacknowledged") == "true"
		limit := parseLimit(r.URL.Query().Get("limit"), 100)

		alerts, err := repo.ListAlerts(r.Context(), unacked, limit)
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": alerts})
	})

	router.Patch("/v1/alerts/{id}/ack", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		by := r.URL.Query().Get("by")
		if err := repo.AcknowledgeAlert(r.Context(), id, by); err != nil {
			handleStatusUpdateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": "acknowledged"})
	})

	router.Patch("/v1/alerts/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.ResolveAlert(r.Context(), id); err != nil {
			handleStatusUpdateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": "resolved"})
	})

	router.Get("/v1/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		summary, err := repo.Summary(r.Context())
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, summary)
	})

	router.Get("/v1/dashboard/hotspots", func(w http.ResponseWriter, r *http.Request) {
		hours := parseLimit(r.URL.Query().Get("hours"), 24)
		limit := parseLimit(r.URL.Query().Get("limit"), 20)

		hotspots, err := repo.Hotspots(r.Context(), hours, limit)
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": hotspots})
	})

	router.Get("/v1/dashboard/critical-nodes", func(w http.ResponseWriter, r *http.Request) {
		topN := parseLimit(r.URL.Query().Get("top"), 10)
		suppliers, err := repo.ListSuppliers(r.Context())
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": risk.CriticalNodes(suppliers, topN)})
	})

	router.Get("/v1/dashboard/single-source-materials", func(w http.ResponseWriter, r *http.Request) {
		suppliers, err := repo.ListSuppliers(r.Context())
		if err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": risk.SingleSourceMaterials(suppliers)})
	})

	router.Put("/v1/suppliers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req httpx.SupplierUpsertRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		if err := req.Validate(); err != nil {
			httpx.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
			return
		}

		if err := repo.UpsertSupplier(r.Context(), req.ToSupplier(id)); err != nil {
			httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		graphCache.Invalidate()
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": "upserted"})
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if n <= 0 {
		return fallback
	}
	return n
}

func handleStatusUpdateError(w http.ResponseWriter, err error) {
	if errors.Is(err, errs.MissingReference) {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]any{"error": "alert not found"})
		return
	}
	httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}
