// Package server is the daemon's admin surface: a chi HTTP router for
// health, metrics, runs and ingestion, and the gRPC health monitor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/amenity-parser/internal/repository"
	"github.com/joseph-ayodele/amenity-parser/internal/scheduler"
)

// Pinger is satisfied by every catalog store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminConfig struct {
	PingTimeout time.Duration
}

type Admin struct {
	cfg      AdminConfig
	base     context.Context
	runner   *scheduler.Runner
	ingest   *IngestionService
	jobs     repository.DocumentJobRepository
	catalog  Pinger // nil when uploads are disabled
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewAdmin wires the admin handlers. Background runs started over HTTP
// derive from base so daemon shutdown cancels them.
func NewAdmin(
	base context.Context,
	cfg AdminConfig,
	runner *scheduler.Runner,
	ingest *IngestionService,
	jobs repository.DocumentJobRepository,
	catalog Pinger,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Admin {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Admin{
		cfg:      cfg,
		base:     base,
		runner:   runner,
		ingest:   ingest,
		jobs:     jobs,
		catalog:  catalog,
		gatherer: gatherer,
		logger:   logger,
	}
}

func (a *Admin) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", a.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	r.Post("/runs", a.startRun)
	r.Get("/runs/last", a.lastRun)
	r.Get("/jobs", a.listJobs)
	if a.ingest != nil {
		r.Post("/ingest", a.ingest.Handle)
	}
	return r
}

func (a *Admin) healthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "catalog": "disabled"}
	if a.catalog != nil {
		ctx, cancel := context.WithTimeout(r.Context(), a.cfg.PingTimeout)
		defer cancel()
		if err := a.catalog.Ping(ctx); err != nil {
			a.logger.Warn("admin.healthz.catalog_unavailable", "error", err)
			resp["catalog"] = "unavailable"
		} else {
			resp["catalog"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *Admin) startRun(w http.ResponseWriter, _ *http.Request) {
	if a.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "runs are not configured")
		return
	}
	if err := a.runner.Go(a.base); err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (a *Admin) lastRun(w http.ResponseWriter, _ *http.Request) {
	if a.runner == nil {
		writeError(w, http.StatusNotFound, "no runs yet")
		return
	}
	last, ok := a.runner.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "no runs yet")
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (a *Admin) listJobs(w http.ResponseWriter, r *http.Request) {
	if a.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "ledger is not configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be 1..1000")
			return
		}
		limit = n
	}
	jobs, err := a.jobs.List(r.Context(), limit)
	if err != nil {
		a.logger.Error("admin.jobs.list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list jobs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *Admin) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Info("admin.http.request",
			"req_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
