package ingest

import (
	"fmt"
	"io"

	"psephos/internal/frame"
	"psephos/pkg/domain"
)

// ageLabels maps the census age-bucket labels onto the shared band scheme.
var ageLabels = map[string]domain.AgeBand{
	"0-15":  domain.AgeUnder16,
	"16-24": domain.Age16To24,
	"25-34": domain.Age25To34,
	"35-49": domain.Age35To49,
	"50-64": domain.Age50To64,
	"65+":   domain.Age65Plus,
}

// ReadCensus parses raw census rows. Expected columns: constituency_code,
// constituency_name, age_band, education_code, sex, count.
func ReadCensus(r io.Reader) ([]frame.CensusRow, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	return censusRows(t)
}

// LoadCensus reads census rows from a CSV file.
func LoadCensus(path string) ([]frame.CensusRow, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()
	return censusRows(t)
}

func censusRows(t *table) ([]frame.CensusRow, error) {
	code, err := t.column("constituency_code")
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	name, err := t.column("constituency_name")
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	age, err := t.column("age_band")
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	education, err := t.column("education_code")
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	sex, err := t.column("sex")
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	count, err := t.column("count")
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}

	rows := make([]frame.CensusRow, 0, len(t.rows))
	for i, row := range t.rows {
		band, ok := ageLabels[t.str(row, age)]
		if !ok {
			return nil, fmt.Errorf("census row %d: unknown age band %q", i+2, t.str(row, age))
		}
		eduCode, err := t.intVal(row, education)
		if err != nil {
			return nil, fmt.Errorf("census row %d: %w", i+2, err)
		}
		n, err := t.floatVal(row, count)
		if err != nil {
			return nil, fmt.Errorf("census row %d: %w", i+2, err)
		}
		rows = append(rows, frame.CensusRow{
			Constituency:  t.str(row, code),
			Name:          t.str(row, name),
			Age:           band,
			EducationCode: eduCode,
			Sex:           t.str(row, sex),
			Count:         n,
		})
	}
	return rows, nil
}
