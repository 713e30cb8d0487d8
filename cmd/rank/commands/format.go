package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/pipeline"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	ruleHeavy = "═══════════════════════════════════════════════════════════"
	ruleLight = "───────────────────────────────────────────────────────────"
)

// today returns the current date in the configured run time zone
func (a *app) today() time.Time {
	return contracts.RunDate(time.Now().In(a.cfg.Location()))
}

// PrintRunHeader prints a formatted run header
func PrintRunHeader(strategyID, configHash string, date time.Time) {
	fmt.Println()
	fmt.Println(ruleHeavy)
	fmt.Printf("  Equity Ranking  %s\n", date.Format(contracts.DateLayout))
	fmt.Println(ruleLight)
	fmt.Printf("  Strategy  : %s\n", strategyID)
	fmt.Printf("  Config    : %s\n", shortHash(configHash))
	fmt.Println(ruleLight)
}

// PrintRunCounts prints the per-stage funnel
func PrintRunCounts(r *pipeline.RunResult) {
	fmt.Printf("[S0] Loaded     : %d\n", r.Counts.Loaded)
	fmt.Printf("[S1] Eligible   : %d%s\n", r.Counts.Filtered, formatExcluded(r.Counts.Excluded))
	if len(r.Counts.FallbackSectors) > 0 {
		fmt.Printf("[S2] Fallback   : %s\n", strings.Join(r.Counts.FallbackSectors, ", "))
	}
	if r.Outcome == contracts.OutcomeNoEligibleEntities {
		fmt.Println()
		fmt.Println("⚠️  No eligible entities; nothing ranked or recorded")
		return
	}
	fmt.Printf("[S4] Ranked     : %d\n", r.Counts.Ranked)
	fmt.Println()
}

// PrintRunFooter prints export status and timing
func PrintRunFooter(r *pipeline.RunResult, exportPath string) {
	fmt.Println()
	switch {
	case r.ExportError != nil:
		fmt.Printf("⚠️  Export failed: %v (ranking and history were saved)\n", r.ExportError)
	case r.Counts.Exported > 0:
		fmt.Printf("[S6] Exported %d rows → %s\n", r.Counts.Exported, exportPath)
	}
	fmt.Printf("✅ Run %s completed in %.2fs\n", r.RunID, r.Duration.Seconds())
	fmt.Println(ruleHeavy)
}

// PrintFailure prints a failed run
func PrintFailure(err error) {
	fmt.Println()
	fmt.Printf("❌ Run failed: %v\n", err)
	fmt.Println(ruleHeavy)
}

func formatExcluded(excluded map[contracts.ExclusionReason]int) string {
	if len(excluded) == 0 {
		return ""
	}
	parts := make([]string, 0, len(excluded))
	for reason, n := range excluded {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
	}
	sort.Strings(parts)
	return "  (excluded " + strings.Join(parts, " ") + ")"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
