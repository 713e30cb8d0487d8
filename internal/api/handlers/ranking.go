package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/pipeline"
	"github.com/wonny/equityrank/pkg/logger"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// RankingHandler serves cached run results
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	store  *pipeline.ResultStore
	logger *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(store *pipeline.ResultStore, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		store:  store,
		logger: log,
	}
}

// RankingResponse is one run's top-N view
type RankingResponse struct {
	RunID       string                   `json:"run_id"`
	Date        string                   `json:"date"`
	Outcome     contracts.Outcome        `json:"outcome"`
	StrategyID  string                   `json:"strategy_id"`
	ConfigHash  string                   `json:"config_hash"`
	Counts      pipeline.Counts          `json:"counts"`
	ExportError string                   `json:"export_error,omitempty"`
	CompletedAt time.Time                `json:"completed_at"`
	Items       []contracts.RankedEntity `json:"items,omitempty"`
}

// GetLatest returns the most recent run
// GET /api/ranking/latest?limit=N
func (h *RankingHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultLimit, maxLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	result, found, err := h.store.Latest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read latest run")
		respondError(w, http.StatusInternalServerError, "Failed to read latest run")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "No ranking run recorded yet")
		return
	}

	respondJSON(w, http.StatusOK, toResponse(result, limit))
}

// GetByDate returns the run recorded for a date
// GET /api/ranking/{date}?limit=N
func (h *RankingHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	date, err := contracts.ParseRunDate(mux.Vars(r)["date"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	limit, ok := queryInt(r, "limit", defaultLimit, maxLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	result, found, err := h.store.ForDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read run")
		respondError(w, http.StatusInternalServerError, "Failed to read run")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "No ranking run recorded for "+date.Format(contracts.DateLayout))
		return
	}

	respondJSON(w, http.StatusOK, toResponse(result, limit))
}

func toResponse(result *pipeline.RunResult, limit int) RankingResponse {
	items := result.Top(limit)
	return RankingResponse{
		RunID:       result.RunID,
		Date:        result.Date.Format(contracts.DateLayout),
		Outcome:     result.Outcome,
		StrategyID:  result.StrategyID,
		ConfigHash:  result.ConfigHash,
		Counts:      result.Counts,
		ExportError: result.ExportErrorMessage,
		CompletedAt: result.StartedAt.Add(result.Duration),
		Items:       items,
	}
}
