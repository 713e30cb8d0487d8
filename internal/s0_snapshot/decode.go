package s0_snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wonny/equityrank/internal/contracts"
)

var errEmptyDocument = errors.New("empty document")

// decodeRows accepts a single object, an array of objects, or an {"entities": [...]} envelope
func decodeRows(data []byte) ([]contracts.EntitySnapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errEmptyDocument
	}

	switch data[0] {
	case '[':
		var rows []contracts.EntitySnapshot
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return rows, nil
	case '{':
		var envelope struct {
			Entities *[]contracts.EntitySnapshot `json:"entities"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Entities != nil {
			return *envelope.Entities, nil
		}
		var row contracts.EntitySnapshot
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		return []contracts.EntitySnapshot{row}, nil
	default:
		return nil, fmt.Errorf("unexpected leading byte %q", data[0])
	}
}

// dedupe drops rows without a ticker and keeps the first row per ticker
func dedupe(rows []contracts.EntitySnapshot) (kept []contracts.EntitySnapshot, dropped int) {
	seen := make(map[string]struct{}, len(rows))
	kept = make([]contracts.EntitySnapshot, 0, len(rows))
	for _, r := range rows {
		if r.Ticker == "" {
			dropped++
			continue
		}
		if _, dup := seen[r.Ticker]; dup {
			dropped++
			continue
		}
		seen[r.Ticker] = struct{}{}
		kept = append(kept, r)
	}
	return kept, dropped
}
