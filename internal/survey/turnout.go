package survey

import "psephos/pkg/domain"

// TurnoutRow is one raw row of the post-election random-probability survey.
type TurnoutRow struct {
	Constituency  string
	VotedCode     int
	EducationCode int
	Age           int
	SexCode       int
}

// turnoutEducation maps the turnout survey's qualification coding onto the
// frame's education levels. Negative codes are missing.
var turnoutEducation = map[int]domain.Education{
	0: domain.EducationNone,
	1: domain.EducationLevel1,
	2: domain.EducationLevel2,
	3: domain.EducationLevel3,
	4: domain.EducationLevel4,
	5: domain.EducationOther,
}

// RecodeTurnout converts raw turnout-survey rows into frame-schema
// respondents. The voted field is binary-coded with negative sentinels for
// missing; code 1 means the respondent voted. Rows with missing voted codes,
// unknown constituencies, or unmappable education or sex codes are dropped.
func RecodeTurnout(rows []TurnoutRow, known map[string]struct{}) ([]domain.TurnoutRespondent, Drops) {
	var out []domain.TurnoutRespondent
	var drops Drops
	for _, row := range rows {
		if _, ok := known[row.Constituency]; !ok {
			drops.UnknownConstituency++
			continue
		}
		if row.VotedCode < 0 {
			drops.Outcome++
			continue
		}
		education, ok := turnoutEducation[row.EducationCode]
		if !ok {
			drops.Education++
			continue
		}
		female, ok := femaleFromSexCode(row.SexCode)
		if !ok {
			drops.Sex++
			continue
		}
		out = append(out, domain.TurnoutRespondent{
			Constituency: row.Constituency,
			Age:          domain.AgeBandOf(row.Age),
			Education:    education,
			Female:       female,
			Voted:        row.VotedCode == 1,
		})
	}
	return out, drops
}
