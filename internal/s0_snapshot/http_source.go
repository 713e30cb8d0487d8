package s0_snapshot

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/pkg/httputil"
	"github.com/wonny/equityrank/pkg/logger"
)

// HTTPSource fetches snapshot rows from a JSON service at {baseURL}/snapshots?date=YYYY-MM-DD
// ⭐ SSOT: 외부 스냅샷 서비스 호출은 이 소스에서만
type HTTPSource struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewHTTPSource creates an HTTP snapshot source
func NewHTTPSource(client *httputil.Client, baseURL string, log *logger.Logger) *HTTPSource {
	return &HTTPSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithStage(contracts.StageSnapshot.String()),
	}
}

// Load implements contracts.SnapshotSource
func (s *HTTPSource) Load(ctx context.Context, date time.Time) ([]contracts.EntitySnapshot, error) {
	params := url.Values{}
	if !date.IsZero() {
		params.Set("date", date.Format(contracts.DateLayout))
	}
	endpoint := s.baseURL + "/snapshots"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, err := s.client.GetBytes(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrSnapshotLoad, err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrSnapshotLoad, err)
	}

	kept, dropped := dedupe(rows)
	s.logger.WithFields(map[string]interface{}{
		"url":      endpoint,
		"entities": len(kept),
		"dropped":  dropped,
	}).Info("Snapshots fetched")

	return kept, nil
}
