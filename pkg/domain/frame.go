package domain

// Cell is one post-stratification stratum: a demographic combination within a
// single constituency, with its census population count and its percentage
// share of that constituency's voting-age population.
type Cell struct {
	Constituency string    `json:"constituency"`
	Name         string    `json:"constituency_name,omitempty"`
	Age          AgeBand   `json:"age"`
	Education    Education `json:"education"`
	Female       bool      `json:"female"`
	Count        float64   `json:"count"`
	// Perc is Count over the constituency total, expressed 0-100. For every
	// constituency the cell percentages sum to 100 within tolerance.
	Perc float64 `json:"perc"`
}

// Frame is the post-stratification frame: one Cell per surviving
// (constituency, age, education, sex) combination. It is immutable once
// built; later pipeline stages derive new tables instead of mutating it.
type Frame []Cell

// Constituencies returns the distinct constituency codes in first-seen order.
func (f Frame) Constituencies() []string {
	seen := make(map[string]struct{}, len(f))
	var codes []string
	for _, c := range f {
		if _, ok := seen[c.Constituency]; ok {
			continue
		}
		seen[c.Constituency] = struct{}{}
		codes = append(codes, c.Constituency)
	}
	return codes
}

// HasConstituency reports whether code appears in the frame.
func (f Frame) HasConstituency(code string) bool {
	for _, c := range f {
		if c.Constituency == code {
			return true
		}
	}
	return false
}

// PercTotals returns the per-constituency sum of cell percentages.
// Used by the frame integrity check and by tests.
func (f Frame) PercTotals() map[string]float64 {
	totals := make(map[string]float64)
	for _, c := range f {
		totals[c.Constituency] += c.Perc
	}
	return totals
}
