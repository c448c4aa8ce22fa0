package pipeline

import "psephos/pkg/domain"

// Weighted holds per-cell weighted vote-share contributions aligned with the
// frame: predicted probability x percentage share x turnout probability, in
// (unnormalized) percentage points.
type Weighted map[domain.Party][]float64

// Weight computes every cell's weighted contribution for every party.
func Weight(p Predictions) Weighted {
	w := make(Weighted, len(p.Prob))
	for party, probs := range p.Prob {
		vals := make([]float64, len(p.Frame))
		for i, cell := range p.Frame {
			vals[i] = probs[i] * cell.Perc * p.Turnout[i]
		}
		w[party] = vals
	}
	return w
}

// Aggregate sums weighted cell contributions within each constituency,
// yielding one estimate per constituency with one share per party. The sum is
// missing-propagating: a missing cell contribution poisons its constituency
// total rather than being treated as zero, so an undercounted share can never
// masquerade as a real estimate. (Predictions are always computable, so this
// path is not exercised by real data.)
func Aggregate(f domain.Frame, w Weighted) []domain.Estimate {
	index := make(map[string]int)
	var estimates []domain.Estimate
	for _, code := range f.Constituencies() {
		index[code] = len(estimates)
		estimates = append(estimates, domain.Estimate{
			Constituency: code,
			Share:        make(map[domain.Party]float64, len(w)),
		})
	}
	for party, vals := range w {
		for i, cell := range f {
			est := &estimates[index[cell.Constituency]]
			est.Share[party] += vals[i]
		}
	}
	return estimates
}
