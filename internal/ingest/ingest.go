// Package ingest reads the four raw tabular inputs (census, vote panel,
// turnout survey, true results) from CSV. Inputs are header-addressed;
// a missing column or an unparsable value aborts the run, since the
// pipeline is a one-shot batch computation with no recovery semantics.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// table is a header-indexed CSV held in memory.
type table struct {
	header map[string]int
	rows   [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}
	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &table{header: header, rows: records[1:]}, nil
}

func (t *table) column(name string) (int, error) {
	idx, ok := t.header[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return idx, nil
}

func (t *table) str(row []string, idx int) string {
	return strings.TrimSpace(row[idx])
}

func (t *table) intVal(row []string, idx int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(row[idx]))
	if err != nil {
		return 0, fmt.Errorf("parse int %q: %w", row[idx], err)
	}
	return v, nil
}

func (t *table) floatVal(row []string, idx int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float %q: %w", row[idx], err)
	}
	return v, nil
}

func openTable(path string) (*table, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	t, err := readTable(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, f.Close, nil
}
