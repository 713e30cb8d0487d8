package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/pkg/logger"
)

// Runner triggers one pipeline run
type Runner interface {
	Run(ctx context.Context, cfg pipeline.RunConfig) (*pipeline.RunResult, error)
}

// RunHandler triggers ranking runs; runs are serialized by the orchestrator
type RunHandler struct {
	runner  Runner
	timeout time.Duration
	logger  *logger.Logger
}

// NewRunHandler creates a run trigger handler
func NewRunHandler(runner Runner, timeout time.Duration, log *logger.Logger) *RunHandler {
	return &RunHandler{
		runner:  runner,
		timeout: timeout,
		logger:  log,
	}
}

// RunRequest is the optional body of POST /api/runs
type RunRequest struct {
	Date string `json:"date"` // YYYY-MM-DD; empty = today
}

// Create runs the pipeline and returns the summary without items
// POST /api/runs
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg := pipeline.RunConfig{}
	if req.Date != "" {
		date, err := contracts.ParseRunDate(req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		cfg.Date = date
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.runner.Run(ctx, cfg)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, contracts.ErrSnapshotLoad):
		h.logger.WithError(err).Error("Triggered run could not load snapshots")
		respondError(w, http.StatusBadGateway, "Snapshot source unavailable")
		return
	case err != nil:
		h.logger.WithError(err).Error("Triggered run failed")
		respondError(w, http.StatusInternalServerError, "Run failed")
		return
	}

	respondJSON(w, http.StatusOK, toResponse(result, 0).summary())
}

// summary drops the item list for trigger responses
func (r RankingResponse) summary() RankingResponse {
	r.Items = nil
	return r
}
