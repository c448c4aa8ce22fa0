// Package survey normalizes the two raw survey datasets into the categorical
// schema of the post-stratification frame. Each survey uses its own source
// coding scheme; both recode into the same age bands, education levels, and
// sex indicator. Rows with unmappable codes are dropped, never imputed.
package survey

import "psephos/pkg/domain"

// Drops counts rows removed during recoding, by reason. Dropping is a
// data-quality policy, not a fault; callers log the totals.
type Drops struct {
	UnknownConstituency int
	Outcome             int
	Education           int
	Sex                 int
}

// Total returns the number of dropped rows across all reasons.
func (d Drops) Total() int {
	return d.UnknownConstituency + d.Outcome + d.Education + d.Sex
}

// ConstituencySet returns the set of constituency codes known to the frame.
// Respondents outside this set are dropped by both recoders.
func ConstituencySet(f domain.Frame) map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range f {
		set[c.Constituency] = struct{}{}
	}
	return set
}

func femaleFromSexCode(code int) (female, ok bool) {
	switch code {
	case 1:
		return false, true
	case 2:
		return true, true
	default:
		return false, false
	}
}
