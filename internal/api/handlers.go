package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ignite/planner-ranker/internal/alert"
	"github.com/ignite/planner-ranker/internal/cache"
	"github.com/ignite/planner-ranker/internal/config"
	"github.com/ignite/planner-ranker/internal/datanorm"
	"github.com/ignite/planner-ranker/internal/domain"
	"github.com/ignite/planner-ranker/internal/pkg/distlock"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
	"github.com/ignite/planner-ranker/internal/planner"
	"github.com/ignite/planner-ranker/internal/store"
	"github.com/ignite/planner-ranker/internal/workbook"
)

// HistoryRepository is the slice of the Postgres repository the handlers
// need. It stays optional; without a database the handlers fall back to the
// in-memory history buffer.
type HistoryRepository interface {
	SaveBatch(ctx context.Context, records []domain.HistoricalRecord) error
	LoadWindow(ctx context.Context, since, until time.Time) ([]domain.HistoricalRecord, error)
	LatestDate(ctx context.Context) (time.Time, error)
}

// Handlers holds the wired services behind the HTTP endpoints.
type Handlers struct {
	cfg        *config.Config
	store      *store.Store
	cache      cache.RankingsCache
	history    HistoryRepository
	notifier   *alert.Notifier
	classifier *datanorm.Classifier
	runLock    distlock.Lock

	mu sync.RWMutex
	// history uploaded while no database is configured
	memHistory []domain.HistoricalRecord
	// metrics from the most recent processing run, for the performance report
	lastMetrics map[string]domain.AggregatedMetrics
}

// NewHandlers creates the handler set.
func NewHandlers(cfg *config.Config, st *store.Store, c cache.RankingsCache, notifier *alert.Notifier) *Handlers {
	return &Handlers{
		cfg:        cfg,
		store:      st,
		cache:      c,
		notifier:   notifier,
		classifier: datanorm.NewClassifier(),
		runLock:    &distlock.LocalLock{},
	}
}

// SetRunLock swaps in a distributed lock so concurrent processing runs are
// serialized across instances, not just within this process.
func (h *Handlers) SetRunLock(l distlock.Lock) {
	h.runLock = l
}

// SetHistoryRepository wires the optional Postgres history repository.
func (h *Handlers) SetHistoryRepository(repo HistoryRepository) {
	h.history = repo
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck reports service status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"saved_plans": h.store.Count(),
	})
}

// GetRankings returns the most recently computed ranking result.
func (h *Handlers) GetRankings(w http.ResponseWriter, r *http.Request) {
	result, err := h.cache.Get(r.Context())
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			respondError(w, http.StatusNotFound, "no rankings available; run /api/process-data first")
			return
		}
		logger.Error("reading rankings cache", "error", err)
		respondError(w, http.StatusInternalServerError, "could not read rankings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"all_publishers": result.AllPublishers,
		"by_publisher":   result.ByPublisher,
	})
}

// ListPlans returns every saved plan.
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := h.store.ListPlans(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"plans": plans,
		"count": len(plans),
	})
}

// validateRequest mirrors the process-data body.
type validateRequest struct {
	HistoricalData []datanorm.RawRow `json:"historical_data"`
	UserInput      []datanorm.RawRow `json:"user_input"`
}

// ValidateData normalizes a payload without persisting or ranking anything,
// so an operator can preview what a processing run would accept.
func (h *Handlers) ValidateData(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	records, skippedHistory := datanorm.NormalizeHistory(req.HistoricalData, time.Now().UTC())
	plans, skippedPlans := datanorm.NormalizePlans(r.Context(), req.UserInput, h.store.Lookup())

	var incomplete []domain.IncompleteField
	for _, p := range plans {
		incomplete = append(incomplete, planner.Validate(p)...)
	}

	const sampleSize = 5
	historySample := records
	if len(historySample) > sampleSize {
		historySample = historySample[:sampleSize]
	}
	planSample := plans
	if len(planSample) > sampleSize {
		planSample = planSample[:sampleSize]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"historical_data": map[string]interface{}{
			"columns":     columnNames(req.HistoricalData),
			"total_rows":  len(req.HistoricalData),
			"good_rows":   len(records),
			"skipped":     skippedHistory,
			"sample_data": historySample,
		},
		"user_input": map[string]interface{}{
			"columns":     columnNames(req.UserInput),
			"total_rows":  len(req.UserInput),
			"good_rows":   len(plans),
			"skipped":     skippedPlans,
			"sample_data": planSample,
		},
		"incomplete_fields": incomplete,
	})
}

// columnNames collects the distinct column names across rows, sorted so the
// preview is stable.
func columnNames(rows []datanorm.RawRow) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// DownloadRankings streams the latest rankings as an Excel workbook.
func (h *Handlers) DownloadRankings(w http.ResponseWriter, r *http.Request) {
	result, err := h.cache.Get(r.Context())
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			respondError(w, http.StatusNotFound, "no rankings available; run /api/process-data first")
			return
		}
		logger.Error("reading rankings cache", "error", err)
		respondError(w, http.StatusInternalServerError, "could not read rankings")
		return
	}

	name := workbook.RankingsFilename(time.Now().UTC())
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := workbook.WriteRankings(w, result); err != nil {
		logger.Error("writing rankings workbook", "error", err)
	}
}

// DownloadPerformance streams the per-plan aggregation from the latest run
// as an Excel workbook.
func (h *Handlers) DownloadPerformance(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	metrics := h.lastMetrics
	h.mu.RUnlock()

	if metrics == nil {
		respondError(w, http.StatusNotFound, "no performance data available; run /api/process-data first")
		return
	}

	name := workbook.PerformanceFilename(time.Now().UTC())
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := workbook.WritePerformance(w, metrics); err != nil {
		logger.Error("writing performance workbook", "error", err)
	}
}

// loadHistory returns the history the ranking run should use when the
// request did not carry any: the database window when one is configured,
// otherwise whatever uploads accumulated in memory.
func (h *Handlers) loadHistory(ctx context.Context) []domain.HistoricalRecord {
	if h.history != nil {
		latest, err := h.history.LatestDate(ctx)
		if err != nil {
			return nil
		}
		lookback := h.cfg.Planner.LookbackDays
		since := latest.AddDate(0, 0, -(lookback - 1))
		records, err := h.history.LoadWindow(ctx, since, latest)
		if err != nil {
			logger.Error("loading history window", "error", err)
			return nil
		}
		return records
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.HistoricalRecord(nil), h.memHistory...)
}

// saveHistory persists normalized history in the database or, absent one,
// the in-memory buffer.
func (h *Handlers) saveHistory(ctx context.Context, records []domain.HistoricalRecord) error {
	if len(records) == 0 {
		return nil
	}
	if h.history != nil {
		return h.history.SaveBatch(ctx, records)
	}

	h.mu.Lock()
	h.memHistory = append(h.memHistory, records...)
	h.mu.Unlock()
	return nil
}
