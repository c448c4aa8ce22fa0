package pipeline

import "psephos/pkg/domain"

// Factors computes per-constituency, per-party scale factors as true share
// over estimated share. Truth rows join onto estimates by constituency code;
// estimates without a ground-truth match, zero estimated shares, and missing
// operands all produce the missing sentinel, never an infinity or an error.
func Factors(estimates []domain.Estimate, truth []domain.TrueResult) domain.ScaleFactors {
	truthByCode := make(map[string]domain.TrueResult, len(truth))
	for _, t := range truth {
		truthByCode[t.Constituency] = t
	}
	factors := make(domain.ScaleFactors, len(estimates))
	for _, est := range estimates {
		byParty := make(map[domain.Party]float64, len(est.Share))
		t, matched := truthByCode[est.Constituency]
		for party, estimated := range est.Share {
			byParty[party] = factor(t, party, matched, estimated)
		}
		factors[est.Constituency] = byParty
	}
	return factors
}

func factor(t domain.TrueResult, party domain.Party, matched bool, estimated float64) float64 {
	if !matched || estimated == 0 || domain.IsMissing(estimated) {
		return domain.Missing()
	}
	trueShare, ok := t.Share[party]
	if !ok || domain.IsMissing(trueShare) {
		return domain.Missing()
	}
	return trueShare / estimated
}

// Scale applies each constituency's scale factor to every one of its cells'
// weighted contributions. Scaling is a pure linear transform per cell; cells
// in a constituency with a missing factor yield missing scaled values, which
// downstream consumers rely on to flag unscaled constituencies.
func Scale(f domain.Frame, w Weighted, factors domain.ScaleFactors) Weighted {
	scaled := make(Weighted, len(w))
	for party, vals := range w {
		out := make([]float64, len(vals))
		for i, cell := range f {
			out[i] = vals[i] * factors.Factor(cell.Constituency, party)
		}
		scaled[party] = out
	}
	return scaled
}
