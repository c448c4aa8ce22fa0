package domain

// VoteRespondent is one recoded row of the pre-election vote-intention panel.
// Respondents with unmappable constituency, vote, or education codes never
// become VoteRespondents; recoding drops them.
type VoteRespondent struct {
	Constituency string    `json:"constituency"`
	Age          AgeBand   `json:"age"`
	Education    Education `json:"education"`
	Female       bool      `json:"female"`
	Choice       Party     `json:"choice"`
}

// ChoiceIs returns the binary outcome dummy for a party.
func (r VoteRespondent) ChoiceIs(p Party) bool { return r.Choice == p }

// TurnoutRespondent is one recoded row of the post-election random-probability
// turnout survey.
type TurnoutRespondent struct {
	Constituency string    `json:"constituency"`
	Age          AgeBand   `json:"age"`
	Education    Education `json:"education"`
	Female       bool      `json:"female"`
	Voted        bool      `json:"voted"`
}
