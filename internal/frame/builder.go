// Package frame constructs the post-stratification frame from raw census
// rows: one cell per (constituency, age band, education, sex) combination
// with population counts and within-constituency percentage shares.
package frame

import (
	"fmt"
	"strings"

	"psephos/pkg/domain"
)

// CensusRow is one raw census input row, as delivered by ingest.
type CensusRow struct {
	Constituency  string
	Name          string
	Age           domain.AgeBand
	EducationCode int
	Sex           string
	Count         float64
}

// Logger receives data-quality notices during frame construction. The
// integrity check reports constituencies that vanish after filtering; that is
// logged, not fatal, because prediction tolerates missing combinations.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Build derives the post-stratification frame from census rows. It drops the
// under-16 age bucket, recodes education codes 0-4 into the five named levels
// (anything else becomes "other"), derives the female indicator from the sex
// label, and computes each cell's percentage share of its constituency total.
func Build(rows []CensusRow, log Logger) (domain.Frame, error) {
	if log == nil {
		log = noopLogger{}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("frame: no census rows")
	}

	type key struct {
		constituency string
		age          domain.AgeBand
		education    domain.Education
		female       bool
	}

	counts := make(map[key]float64)
	names := make(map[string]string)
	order := make([]key, 0, len(rows))
	rawSeen := make(map[string]struct{})

	for _, row := range rows {
		rawSeen[row.Constituency] = struct{}{}
		if row.Name != "" {
			names[row.Constituency] = row.Name
		}
		if row.Age == domain.AgeUnder16 {
			continue
		}
		female, ok := femaleIndicator(row.Sex)
		if !ok {
			log.Warn("frame: dropping census row with unrecognised sex label",
				"constituency", row.Constituency, "sex", row.Sex)
			continue
		}
		k := key{
			constituency: row.Constituency,
			age:          row.Age,
			education:    recodeEducation(row.EducationCode),
			female:       female,
		}
		if _, exists := counts[k]; !exists {
			order = append(order, k)
		}
		counts[k] += row.Count
	}

	totals := make(map[string]float64)
	for k, c := range counts {
		totals[k.constituency] += c
	}

	// Integrity check: a constituency present in the raw input must survive
	// filtering. Downstream prediction falls back to fixed effects, so this
	// is a logged data-quality notice rather than a failure.
	for code := range rawSeen {
		if totals[code] <= 0 {
			log.Warn("frame: constituency vanished after filtering", "constituency", code)
		}
	}

	cells := make(domain.Frame, 0, len(order))
	for _, k := range order {
		total := totals[k.constituency]
		if total <= 0 {
			continue
		}
		count := counts[k]
		cells = append(cells, domain.Cell{
			Constituency: k.constituency,
			Name:         names[k.constituency],
			Age:          k.age,
			Education:    k.education,
			Female:       k.female,
			Count:        count,
			Perc:         count / total * 100,
		})
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("frame: all census rows filtered out")
	}
	return cells, nil
}

func recodeEducation(code int) domain.Education {
	switch code {
	case 0:
		return domain.EducationNone
	case 1:
		return domain.EducationLevel1
	case 2:
		return domain.EducationLevel2
	case 3:
		return domain.EducationLevel3
	case 4:
		return domain.EducationLevel4
	default:
		return domain.EducationOther
	}
}

func femaleIndicator(label string) (female, ok bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "female", "f":
		return true, true
	case "male", "m":
		return false, true
	default:
		return false, false
	}
}
