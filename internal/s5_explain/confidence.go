package s5_explain

import "github.com/wonny/equityrank/internal/contracts"

// Grade rates data completeness by how many normalized metrics were unknown
func Grade(missingMetrics int) contracts.Confidence {
	switch {
	case missingMetrics <= 1:
		return contracts.ConfidenceHigh
	case missingMetrics <= 3:
		return contracts.ConfidenceMedium
	default:
		return contracts.ConfidenceLow
	}
}
