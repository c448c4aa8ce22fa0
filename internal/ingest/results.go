package ingest

import (
	"fmt"
	"io"
	"strings"

	"psephos/pkg/domain"
)

// mainPartyColumns are the ground-truth share columns with their own party.
// Every other *_share column is a minor party; their sum becomes the
// "others" share.
var mainPartyColumns = map[string]domain.Party{
	"con_share": domain.PartyConservative,
	"lab_share": domain.PartyLabour,
	"ld_share":  domain.PartyLiberalDemocrat,
}

// ReadResults parses ground-truth constituency results. Expected columns:
// constituency_code, constituency_name, con_share, lab_share, ld_share, and
// any number of minor-party *_share columns.
func ReadResults(r io.Reader) ([]domain.TrueResult, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	return resultRows(t)
}

// LoadResults reads ground-truth results from a CSV file.
func LoadResults(path string) ([]domain.TrueResult, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()
	return resultRows(t)
}

func resultRows(t *table) ([]domain.TrueResult, error) {
	code, err := t.column("constituency_code")
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	name, err := t.column("constituency_name")
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	main := make(map[domain.Party]int, len(mainPartyColumns))
	for col, party := range mainPartyColumns {
		idx, err := t.column(col)
		if err != nil {
			return nil, fmt.Errorf("results: %w", err)
		}
		main[party] = idx
	}
	var minor []int
	for col, idx := range t.header {
		if !strings.HasSuffix(col, "_share") {
			continue
		}
		if _, ok := mainPartyColumns[col]; ok {
			continue
		}
		minor = append(minor, idx)
	}

	results := make([]domain.TrueResult, 0, len(t.rows))
	for i, row := range t.rows {
		share := make(map[domain.Party]float64, len(domain.Parties()))
		for party, idx := range main {
			v, err := t.floatVal(row, idx)
			if err != nil {
				return nil, fmt.Errorf("results row %d: %w", i+2, err)
			}
			share[party] = v
		}
		others := 0.0
		for _, idx := range minor {
			v, err := t.floatVal(row, idx)
			if err != nil {
				return nil, fmt.Errorf("results row %d: %w", i+2, err)
			}
			others += v
		}
		share[domain.PartyOther] = others
		results = append(results, domain.TrueResult{
			Constituency: t.str(row, code),
			Name:         t.str(row, name),
			Share:        share,
		})
	}
	return results, nil
}
