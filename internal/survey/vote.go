package survey

import "psephos/pkg/domain"

// VoteRow is one raw row of the pre-election vote-intention panel.
type VoteRow struct {
	Constituency  string
	VoteCode      int
	EducationCode int
	Age           int
	SexCode       int
}

// voteEducation maps the vote panel's qualification coding onto the frame's
// education levels. The turnout survey uses a different source scheme; see
// turnoutEducation.
var voteEducation = map[int]domain.Education{
	1: domain.EducationNone,
	2: domain.EducationLevel1,
	3: domain.EducationLevel2,
	4: domain.EducationLevel3,
	5: domain.EducationLevel4,
	6: domain.EducationOther,
	7: domain.EducationOther,
}

// RecodeVotes converts raw vote-panel rows into frame-schema respondents.
// Vote-intention codes map 1/2/3 to the three main parties and 4-13 to
// "other"; anything else is missing and the row is dropped. Respondents
// outside the known constituency set, or with unmappable education or sex
// codes, are dropped as well.
func RecodeVotes(rows []VoteRow, known map[string]struct{}) ([]domain.VoteRespondent, Drops) {
	var out []domain.VoteRespondent
	var drops Drops
	for _, row := range rows {
		if _, ok := known[row.Constituency]; !ok {
			drops.UnknownConstituency++
			continue
		}
		choice, ok := voteChoice(row.VoteCode)
		if !ok {
			drops.Outcome++
			continue
		}
		education, ok := voteEducation[row.EducationCode]
		if !ok {
			drops.Education++
			continue
		}
		female, ok := femaleFromSexCode(row.SexCode)
		if !ok {
			drops.Sex++
			continue
		}
		out = append(out, domain.VoteRespondent{
			Constituency: row.Constituency,
			Age:          domain.AgeBandOf(row.Age),
			Education:    education,
			Female:       female,
			Choice:       choice,
		})
	}
	return out, drops
}

func voteChoice(code int) (domain.Party, bool) {
	switch {
	case code == 1:
		return domain.PartyConservative, true
	case code == 2:
		return domain.PartyLabour, true
	case code == 3:
		return domain.PartyLiberalDemocrat, true
	case code >= 4 && code <= 13:
		return domain.PartyOther, true
	default:
		return "", false
	}
}
