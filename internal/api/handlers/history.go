package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/logger"
)

// HistoryHandler serves a ticker's ledger rows
type HistoryHandler struct {
	ledger contracts.Ledger
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(ledger contracts.Ledger, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		ledger: ledger,
		logger: log,
	}
}

// HistoryPoint is one ledger row in API form
type HistoryPoint struct {
	Date       string  `json:"date"`
	TotalScore float64 `json:"total_score"`
	Rank       float64 `json:"rank"`
}

// GetTicker returns every recorded date for a ticker, oldest first.
// Tickers match exactly as the snapshot source supplied them.
// GET /api/history/{ticker}
func (h *HistoryHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	rows, err := h.ledger.History(r.Context(), ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to read history")
		respondError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}
	if len(rows) == 0 {
		respondError(w, http.StatusNotFound, "No history for "+ticker)
		return
	}

	points := make([]HistoryPoint, len(rows))
	for i, row := range rows {
		points[i] = HistoryPoint{
			Date:       row.Date.Format(contracts.DateLayout),
			TotalScore: row.TotalScore,
			Rank:       row.Rank,
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"count":  len(points),
		"items":  points,
	})
}
