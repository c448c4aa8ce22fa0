package ingest

import (
	"fmt"
	"io"

	"psephos/internal/survey"
)

// ReadVotes parses raw vote-intention panel rows. Expected columns:
// constituency_code, vote, education, age, sex.
func ReadVotes(r io.Reader) ([]survey.VoteRow, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("votes: %w", err)
	}
	return voteRows(t)
}

// LoadVotes reads vote-panel rows from a CSV file.
func LoadVotes(path string) ([]survey.VoteRow, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()
	return voteRows(t)
}

func voteRows(t *table) ([]survey.VoteRow, error) {
	cols, err := intColumns(t, "votes", "vote", "education", "age", "sex")
	if err != nil {
		return nil, err
	}
	code, err := t.column("constituency_code")
	if err != nil {
		return nil, fmt.Errorf("votes: %w", err)
	}
	rows := make([]survey.VoteRow, 0, len(t.rows))
	for i, row := range t.rows {
		vals, err := intValues(t, row, cols)
		if err != nil {
			return nil, fmt.Errorf("votes row %d: %w", i+2, err)
		}
		rows = append(rows, survey.VoteRow{
			Constituency:  t.str(row, code),
			VoteCode:      vals[0],
			EducationCode: vals[1],
			Age:           vals[2],
			SexCode:       vals[3],
		})
	}
	return rows, nil
}

// ReadTurnout parses raw turnout-survey rows. Expected columns:
// constituency_code, voted, education, age, sex.
func ReadTurnout(r io.Reader) ([]survey.TurnoutRow, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, fmt.Errorf("turnout: %w", err)
	}
	return turnoutRows(t)
}

// LoadTurnout reads turnout-survey rows from a CSV file.
func LoadTurnout(path string) ([]survey.TurnoutRow, error) {
	t, closeFn, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeFn() }()
	return turnoutRows(t)
}

func turnoutRows(t *table) ([]survey.TurnoutRow, error) {
	cols, err := intColumns(t, "turnout", "voted", "education", "age", "sex")
	if err != nil {
		return nil, err
	}
	code, err := t.column("constituency_code")
	if err != nil {
		return nil, fmt.Errorf("turnout: %w", err)
	}
	rows := make([]survey.TurnoutRow, 0, len(t.rows))
	for i, row := range t.rows {
		vals, err := intValues(t, row, cols)
		if err != nil {
			return nil, fmt.Errorf("turnout row %d: %w", i+2, err)
		}
		rows = append(rows, survey.TurnoutRow{
			Constituency:  t.str(row, code),
			VotedCode:     vals[0],
			EducationCode: vals[1],
			Age:           vals[2],
			SexCode:       vals[3],
		})
	}
	return rows, nil
}

func intColumns(t *table, source string, names ...string) ([]int, error) {
	cols := make([]int, len(names))
	for i, name := range names {
		idx, err := t.column(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		cols[i] = idx
	}
	return cols, nil
}

func intValues(t *table, row []string, cols []int) ([]int, error) {
	vals := make([]int, len(cols))
	for i, idx := range cols {
		v, err := t.intVal(row, idx)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
