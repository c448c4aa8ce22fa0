package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"psephos/internal/artifact"
	"psephos/pkg/domain"
)

// Per-party output columns are generated from the party identifier rather
// than assembled by string concatenation at use sites, so every party always
// carries the same three columns: probability, weighted, scaled.
func partyColumns(p domain.Party) [3]string {
	return [3]string{
		string(p) + "_prob",
		string(p) + "_weighted",
		string(p) + "_scaled",
	}
}

// EncodeCellsCSV renders the final per-cell table. Missing values are
// written as empty fields so missingness survives into the artifact.
func EncodeCellsCSV(cells []domain.CellResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"constituency", "constituency_name", "age", "education", "female", "count", "perc", "turnout"}
	for _, p := range domain.Parties() {
		cols := partyColumns(p)
		header = append(header, cols[0], cols[1], cols[2])
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, c := range cells {
		row := []string{
			c.Constituency,
			c.Name,
			string(c.Age),
			string(c.Education),
			strconv.FormatBool(c.Female),
			formatFloat(c.Count),
			formatFloat(c.Perc),
			formatFloat(c.Turnout),
		}
		for _, p := range domain.Parties() {
			row = append(row, formatFloat(c.Prob[p]), formatFloat(c.Weighted[p]), formatFloat(c.Scaled[p]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// EncodeComparisonCSV renders the constituency-level true-vs-estimated table.
func EncodeComparisonCSV(rows []domain.ComparisonRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"constituency", "party", "true_share", "estimated_share", "scale_factor"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.Constituency,
			string(r.Party),
			formatFloat(float64(r.TrueShare)),
			formatFloat(float64(r.Estimated)),
			formatFloat(float64(r.Factor)),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Publish encodes and stores the run's output tables, returning the
// published artifact keys.
func Publish(ctx context.Context, store artifact.Store, runID string, res *Result) ([]string, error) {
	cells, err := EncodeCellsCSV(res.Cells)
	if err != nil {
		return nil, fmt.Errorf("encode cells: %w", err)
	}
	comparison, err := EncodeComparisonCSV(res.Comparison)
	if err != nil {
		return nil, fmt.Errorf("encode comparison: %w", err)
	}
	keys := []string{
		"runs/" + runID + "/cells.csv",
		"runs/" + runID + "/comparison.csv",
	}
	if _, err := store.Put(ctx, keys[0], cells, "text/csv"); err != nil {
		return nil, fmt.Errorf("publish cells: %w", err)
	}
	if _, err := store.Put(ctx, keys[1], comparison, "text/csv"); err != nil {
		return nil, fmt.Errorf("publish comparison: %w", err)
	}
	return keys, nil
}
