package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/planner-ranker/internal/datanorm"
	"github.com/ignite/planner-ranker/internal/domain"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
	"github.com/ignite/planner-ranker/internal/planner"
	"github.com/ignite/planner-ranker/internal/workbook"
)

// processRequest is the process-data body. Both row arrays are optional;
// an empty array falls back to previously uploaded or saved data.
type processRequest struct {
	HistoricalData []datanorm.RawRow   `json:"historical_data"`
	UserInput      []datanorm.RawRow   `json:"user_input"`
	Weights        domain.WeightConfig `json:"weights"`
}

// ProcessData runs the full pipeline: normalize, persist, aggregate, score,
// rank, cache the result, archive a workbook, and fire threshold alerts.
func (h *Handlers) ProcessData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	runID := uuid.NewString()
	ctx := r.Context()

	acquired, err := h.runLock.Acquire(ctx)
	if err != nil {
		logger.Error("acquiring run lock", "run_id", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not acquire run lock")
		return
	}
	if !acquired {
		respondError(w, http.StatusConflict, "a processing run is already in progress")
		return
	}
	defer func() {
		if err := h.runLock.Release(ctx); err != nil {
			logger.Error("releasing run lock", "run_id", runID, "error", err)
		}
	}()

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	records, skippedHistory := datanorm.NormalizeHistory(req.HistoricalData, time.Now().UTC())
	plans, skippedPlans := datanorm.NormalizePlans(ctx, req.UserInput, h.store.Lookup())

	if err := h.store.SavePlans(ctx, plans); err != nil {
		logger.Error("saving plans", "run_id", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not save plans")
		return
	}
	if err := h.saveHistory(ctx, records); err != nil {
		logger.Error("saving history", "run_id", runID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not save history")
		return
	}

	// Requests may carry only one side of the data and rely on what the
	// server already has.
	if len(plans) == 0 {
		plans = h.store.ListPlans(ctx)
	}
	if len(records) == 0 {
		records = h.loadHistory(ctx)
	}

	weights := h.resolveWeights(req.Weights)
	result, incomplete := planner.Run(plans, records, weights)
	metrics := planner.Aggregate(plans, records)

	if err := h.cache.Put(ctx, result); err != nil {
		logger.Error("caching rankings", "run_id", runID, "error", err)
	}
	h.mu.Lock()
	h.lastMetrics = metrics
	h.mu.Unlock()

	workbookPath := h.archiveRankings(ctx, result)

	var alerts []interface{}
	if h.notifier != nil {
		fired, err := h.notifier.EvaluateAndSend(ctx, metrics)
		if err != nil {
			logger.Error("delivering alerts", "run_id", runID, "error", err)
		}
		for _, a := range fired {
			alerts = append(alerts, a)
		}
	}

	logger.Info("processing run complete",
		"run_id", runID,
		"plans", len(plans),
		"records", len(records),
		"ranked", len(result.AllPublishers),
		"duration", time.Since(start).String())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":         runID,
		"all_publishers": result.AllPublishers,
		"by_publisher":   result.ByPublisher,
		"counts": map[string]int{
			"plans":           len(plans),
			"records":         len(records),
			"skipped_plans":   skippedPlans,
			"skipped_history": skippedHistory,
		},
		"incomplete_fields": incomplete,
		"alerts":            alerts,
		"workbook":          workbookPath,
	})
}

// resolveWeights layers the request weights over the configured defaults.
// An omitted request key decodes to 0, so a zero weight means "unspecified"
// and the configured (or stock) value applies.
func (h *Handlers) resolveWeights(req domain.WeightConfig) domain.WeightConfig {
	weights := h.cfg.Weights.ToWeightConfig()
	if req.CTR != 0 {
		weights.CTR = req.CTR
	}
	if req.EPC != 0 {
		weights.EPC = req.EPC
	}
	if req.Revenue != 0 {
		weights.Revenue = req.Revenue
	}
	return weights
}

// archiveRankings writes the rankings workbook into storage. Archival is
// best-effort; a failure never fails the run.
func (h *Handlers) archiveRankings(ctx context.Context, result domain.RankingResult) string {
	var buf bytes.Buffer
	if err := workbook.WriteRankings(&buf, result); err != nil {
		logger.Error("building rankings workbook", "error", err)
		return ""
	}

	name := workbook.RankingsFilename(time.Now().UTC())
	path, err := h.store.ArchiveWorkbook(ctx, name, buf.Bytes())
	if err != nil {
		logger.Error("archiving rankings workbook", "error", err)
		return ""
	}
	return path
}
