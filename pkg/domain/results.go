package domain

import "time"

// TrueResult carries the ground-truth vote shares for one constituency.
type TrueResult struct {
	Constituency string            `json:"constituency"`
	Name         string            `json:"constituency_name,omitempty"`
	Share        map[Party]float64 `json:"share"`
}

// Estimate is the aggregated model estimate for one constituency: the sum of
// weighted cell predictions per party, in percentage points.
type Estimate struct {
	Constituency string            `json:"constituency"`
	Share        map[Party]float64 `json:"share"`
}

// ScaleFactors holds true/estimated ratios keyed by constituency then party.
// A factor is the missing sentinel when the estimate is zero or either
// operand is unavailable.
type ScaleFactors map[string]map[Party]float64

// Factor returns the scale factor for a constituency and party, or missing
// when none was computed.
func (s ScaleFactors) Factor(constituency string, p Party) float64 {
	if byParty, ok := s[constituency]; ok {
		if f, ok := byParty[p]; ok {
			return f
		}
	}
	return Missing()
}

// ComparisonRow is one line of the constituency-level true-vs-estimated
// table. TrueShare and Factor are null in persisted form when the
// constituency had no ground-truth match.
type ComparisonRow struct {
	Constituency string   `json:"constituency"`
	Party        Party    `json:"party"`
	TrueShare    OptFloat `json:"true_share"`
	Estimated    OptFloat `json:"estimated_share"`
	Factor       OptFloat `json:"scale_factor"`
}

// CellResult is one final output row: the frame cell plus its turnout
// probability and, per party, raw predicted probability, weighted
// contribution, and scaled contribution. Scaled values are missing wherever
// the constituency's scale factor is missing.
type CellResult struct {
	Cell
	Turnout  float64           `json:"turnout"`
	Prob     map[Party]float64 `json:"prob"`
	Weighted map[Party]float64 `json:"weighted"`
	Scaled   map[Party]float64 `json:"scaled"`
}

// RunRecord is the persisted summary of one pipeline execution. Cell-level
// output is published as artifacts rather than persisted here.
type RunRecord struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Estimates  []Estimate      `json:"estimates"`
	Comparison []ComparisonRow `json:"comparison"`
	// Artifacts lists the artifact-store keys published for this run.
	Artifacts []string `json:"artifacts,omitempty"`
}
