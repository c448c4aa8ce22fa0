package pipeline

import "psephos/pkg/domain"

// Comparison builds the constituency-level true-vs-estimated table, one row
// per (constituency, party) in frame order. True shares and factors are
// missing for constituencies without a ground-truth match.
func Comparison(estimates []domain.Estimate, truth []domain.TrueResult, factors domain.ScaleFactors) []domain.ComparisonRow {
	truthByCode := make(map[string]domain.TrueResult, len(truth))
	for _, t := range truth {
		truthByCode[t.Constituency] = t
	}
	rows := make([]domain.ComparisonRow, 0, len(estimates)*len(domain.Parties()))
	for _, est := range estimates {
		t, matched := truthByCode[est.Constituency]
		for _, party := range domain.Parties() {
			trueShare := domain.Missing()
			if matched {
				if s, ok := t.Share[party]; ok {
					trueShare = s
				}
			}
			rows = append(rows, domain.ComparisonRow{
				Constituency: est.Constituency,
				Party:        party,
				TrueShare:    domain.OptFloat(trueShare),
				Estimated:    domain.OptFloat(est.Share[party]),
				Factor:       domain.OptFloat(factors.Factor(est.Constituency, party)),
			})
		}
	}
	return rows
}
