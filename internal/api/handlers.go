// ABOUTME: HTTP handlers for errsift API endpoints
// ABOUTME: Provides report submission, record queries, health, and metrics

package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sinugotshifhiwa4/errsift/internal/archive"
	"github.com/sinugotshifhiwa4/errsift/internal/observability"
	"github.com/sinugotshifhiwa4/errsift/internal/queue"
	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
)

// maxBodySize bounds report payloads.
const maxBodySize = 1 << 20

// Handler provides HTTP handlers for the API.
type Handler struct {
	reports *queue.Handler
	archive *archive.Archive
	metrics *observability.PipelineMetrics
}

// HandlerConfig holds configuration for API handlers.
type HandlerConfig struct {
	Reports *queue.Handler
	Archive *archive.Archive
	Metrics *observability.PipelineMetrics
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		reports: cfg.Reports,
		archive: cfg.Archive,
		metrics: cfg.Metrics,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/reports", h.HandleSubmitReport)
	mux.HandleFunc("POST /api/v1/reports/batch", h.HandleSubmitBatch)
	mux.HandleFunc("GET /api/v1/records", h.HandleListRecords)
	mux.HandleFunc("GET /api/v1/records/{id}", h.HandleGetRecord)
	mux.HandleFunc("GET /api/v1/health", h.HandleHealth)
	mux.HandleFunc("GET /api/v1/metrics", h.HandleMetrics)
}

// HandleSubmitReport handles a single error report.
// POST /api/v1/reports
func (h *Handler) HandleSubmitReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req queue.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	resp := h.reports.ProcessRequest(r.Context(), req)
	if resp.Status == queue.StatusError {
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSubmitBatch handles a batch of error reports.
// POST /api/v1/reports/batch
func (h *Handler) HandleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var reqs []queue.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "batch is empty")
		return
	}

	resps := h.reports.ProcessBatch(r.Context(), reqs)
	writeJSON(w, http.StatusOK, map[string]any{
		"results": resps,
		"count":   len(resps),
	})
}

// HandleListRecords handles record queries.
// GET /api/v1/records?category=NETWORK&source=apiClient&limit=50
func (h *Handler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "record archive is not enabled")
		return
	}

	opts := archive.ListOptions{
		Source: r.URL.Query().Get("source"),
	}

	if cat := r.URL.Query().Get("category"); cat != "" {
		parsed, err := taxonomy.Parse(cat)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category: %s", cat))
			return
		}
		opts.Category = parsed
		opts.FilterCategory = true
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %s", limitStr))
			return
		}
		opts.Limit = limit
	}

	recs, err := h.archive.List(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("listing records: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": recs,
		"count":   len(recs),
	})
}

// HandleGetRecord handles single-record lookup.
// GET /api/v1/records/{id}
func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "record archive is not enabled")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "record ID is required")
		return
	}

	rec, err := h.archive.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("getting record: %v", err))
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// HandleHealth handles health check requests.
// GET /api/v1/health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := make(map[string]any)

	if h.archive != nil {
		stats, err := h.archive.Stats(r.Context())
		if err != nil {
			status = "degraded"
			checks["archive"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["archive"] = fmt.Sprintf("ok (records: %d)", stats.RecordCount)
		}
	}

	if h.metrics != nil {
		checks["pipeline"] = h.metrics.Snapshot().String()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// HandleMetrics handles metrics requests.
// GET /api/v1/metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics are not enabled")
		return
	}

	snapshot := h.metrics.Snapshot()
	percentiles := h.metrics.LatencyPercentiles()

	writeJSON(w, http.StatusOK, map[string]any{
		"captured":         snapshot.Captured,
		"duplicates":       snapshot.Duplicates,
		"expected":         snapshot.Expected,
		"handler_failures": snapshot.HandlerFailures,
		"archived":         snapshot.Archived,
		"in_flight":        snapshot.InFlight,
		"queue_depth":      snapshot.QueueDepth,
		"latency": map[string]any{
			"p50": percentiles.P50.String(),
			"p95": percentiles.P95.String(),
			"p99": percentiles.P99.String(),
			"max": percentiles.Max.String(),
		},
		"sources": h.metrics.SourceStats(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// LoggingMiddleware logs requests at debug level, skipping health checks.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		if strings.HasSuffix(r.URL.Path, "/health") {
			return
		}
		logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
			slog.String("correlation_id", observability.FromContext(r.Context()).String()),
		)
	})
}
