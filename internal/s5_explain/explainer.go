package s5_explain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/equityrank/internal/contracts"
)

// RulesVersion tags every explanation produced by RuleExplainer
const RulesVersion = "rules-v3"

// RuleExplainer builds a thesis plus business, value and timing notes from fixed thresholds
type RuleExplainer struct{}

// NewRuleExplainer creates the default explainer
func NewRuleExplainer() *RuleExplainer {
	return &RuleExplainer{}
}

// Explain never reads or writes scores beyond formatting them
func (r *RuleExplainer) Explain(e *contracts.RankedEntity) contracts.Explanation {
	parts := []string{
		thesis(e),
		business(&e.EntitySnapshot),
		valuation(&e.EntitySnapshot),
		timing(&e.EntitySnapshot),
	}

	return contracts.Explanation{
		Narrative: strings.Join(parts, " "),
		RiskNote:  riskNote(&e.EntitySnapshot),
		Version:   RulesVersion,
	}
}

func thesis(e *contracts.RankedEntity) string {
	sector := e.Sector
	if sector == "" {
		sector = "Market"
	}
	out := fmt.Sprintf("Ranked #%s in %s.", FormatRank(e.Rank), sector)

	s := e.Scores
	switch {
	case s.Quality > 70 && s.Valuation > 70:
		out += " A rare double threat offering both high quality and deep value."
	case s.Quality > 80:
		out += " A premium quality compounder with industry-leading fundamentals."
	case s.Valuation > 80:
		out += " A deep value play trading at a significant discount."
	case s.Technicals > 80:
		out += " Showing strong momentum; technicals suggest accumulation."
	}
	return out
}

func business(e *contracts.EntitySnapshot) string {
	var notes []string
	if contracts.Known(e.RevenueGrowth) {
		g := *e.RevenueGrowth
		switch {
		case g > 0.15:
			notes = append(notes, fmt.Sprintf("Hyper-growth (%s)", pct(g)))
		case g > 0.05:
			notes = append(notes, fmt.Sprintf("Steady growth (%s)", pct(g)))
		}
	}
	if contracts.Known(e.ROIC) && *e.ROIC > 0.15 {
		notes = append(notes, fmt.Sprintf("Wide moat (ROIC %s)", pct(*e.ROIC)))
	}

	if len(notes) == 0 {
		return "Business: Reliable steady-state metrics."
	}
	return "Business: " + strings.Join(notes, " & ") + "."
}

func valuation(e *contracts.EntitySnapshot) string {
	var notes []string
	if contracts.Known(e.ForwardPE) {
		pe := *e.ForwardPE
		switch {
		case pe < 15:
			notes = append(notes, fmt.Sprintf("Cheap P/E (%.1fx)", pe))
		case pe > 30:
			notes = append(notes, fmt.Sprintf("Premium P/E (%.1fx)", pe))
		}
	}
	if contracts.Known(e.PEGRatio) && *e.PEGRatio > 0 && *e.PEGRatio < 1 {
		notes = append(notes, fmt.Sprintf("Undervalued PEG (%.2f)", *e.PEGRatio))
	}

	if len(notes) > 0 {
		return "Value: " + strings.Join(notes, ", ") + "."
	}
	if contracts.Known(e.ForwardPE) {
		return fmt.Sprintf("Value: Fairly priced (P/E %.1fx).", *e.ForwardPE)
	}
	return "Value: Fairly priced."
}

func timing(e *contracts.EntitySnapshot) string {
	var notes []string
	if contracts.Known(e.MA200) {
		if contracts.Known(e.Price) && *e.Price > *e.MA200 {
			notes = append(notes, "Uptrend (>200DMA)")
		} else {
			notes = append(notes, "Below 200DMA (Caution)")
		}
	}
	if contracts.Known(e.Momentum) && *e.Momentum < 35 {
		notes = append(notes, "Oversold (Bounce potential)")
	}

	if len(notes) == 0 {
		return "Timing: Neutral setup."
	}
	return "Timing: " + strings.Join(notes, ", ") + "."
}

func riskNote(e *contracts.EntitySnapshot) string {
	if !contracts.Known(e.Beta) {
		return "Beta: n/a"
	}
	return fmt.Sprintf("Beta: %.2f", *e.Beta)
}

// FormatRank prints whole ranks without decimals and shared ranks with one
func FormatRank(rank float64) string {
	if rank == float64(int64(rank)) {
		return strconv.FormatInt(int64(rank), 10)
	}
	return strconv.FormatFloat(rank, 'f', 1, 64)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
