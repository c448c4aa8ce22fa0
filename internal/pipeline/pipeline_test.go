package pipeline

import (
	"context"
	"math"
	"testing"

	"psephos/internal/frame"
	"psephos/internal/survey"
	"psephos/pkg/domain"
)

// syntheticInputs builds a small but complete scenario: two constituencies,
// two age buckets, one education level, both sexes (8 frame cells), a 20-row
// vote panel, a 20-row turnout survey, and ground-truth results. C01 leans
// Conservative and turns out heavily; C02 leans Labour.
func syntheticInputs() Inputs {
	var census []frame.CensusRow
	for _, c := range []struct{ code, name string }{{"C01", "Northbridge"}, {"C02", "Southmoor"}} {
		for _, age := range []domain.AgeBand{domain.Age16To24, domain.Age65Plus} {
			for _, sex := range []string{"female", "male"} {
				census = append(census, frame.CensusRow{
					Constituency:  c.code,
					Name:          c.name,
					Age:           age,
					EducationCode: 0,
					Sex:           sex,
					Count:         100,
				})
			}
		}
	}

	vote := func(code, voteCode, age, sexCode int) survey.VoteRow {
		constituency := "C01"
		if code == 2 {
			constituency = "C02"
		}
		return survey.VoteRow{Constituency: constituency, VoteCode: voteCode, EducationCode: 1, Age: age, SexCode: sexCode}
	}
	votes := []survey.VoteRow{
		vote(1, 1, 20, 1), vote(1, 1, 70, 2), vote(1, 1, 20, 2), vote(1, 1, 70, 1),
		vote(1, 1, 20, 1), vote(1, 1, 70, 2), vote(1, 2, 20, 2), vote(1, 2, 70, 1),
		vote(1, 2, 20, 1), vote(1, 3, 70, 2),
		vote(2, 2, 20, 1), vote(2, 2, 70, 2), vote(2, 2, 20, 2), vote(2, 2, 70, 1),
		vote(2, 2, 20, 1), vote(2, 2, 70, 2), vote(2, 1, 20, 2), vote(2, 1, 70, 1),
		vote(2, 1, 20, 1), vote(2, 5, 70, 2),
	}

	turnoutRow := func(code, voted, age, sexCode int) survey.TurnoutRow {
		constituency := "C01"
		if code == 2 {
			constituency = "C02"
		}
		return survey.TurnoutRow{Constituency: constituency, VotedCode: voted, EducationCode: 0, Age: age, SexCode: sexCode}
	}
	turnout := []survey.TurnoutRow{
		turnoutRow(1, 1, 20, 1), turnoutRow(1, 1, 70, 2), turnoutRow(1, 1, 20, 2), turnoutRow(1, 1, 70, 1),
		turnoutRow(1, 1, 20, 1), turnoutRow(1, 1, 70, 2), turnoutRow(1, 1, 20, 2), turnoutRow(1, 1, 70, 1),
		turnoutRow(1, 0, 20, 1), turnoutRow(1, 0, 70, 2),
		turnoutRow(2, 1, 20, 1), turnoutRow(2, 1, 70, 2), turnoutRow(2, 1, 20, 2), turnoutRow(2, 1, 70, 1),
		turnoutRow(2, 1, 20, 1), turnoutRow(2, 1, 70, 2), turnoutRow(2, 0, 20, 2), turnoutRow(2, 0, 70, 1),
		turnoutRow(2, 0, 20, 1), turnoutRow(2, 0, 70, 2),
	}

	truth := []domain.TrueResult{
		{Constituency: "C01", Share: map[domain.Party]float64{
			domain.PartyConservative: 45, domain.PartyLabour: 30, domain.PartyLiberalDemocrat: 15, domain.PartyOther: 10,
		}},
		{Constituency: "C02", Share: map[domain.Party]float64{
			domain.PartyConservative: 25, domain.PartyLabour: 50, domain.PartyLiberalDemocrat: 10, domain.PartyOther: 15,
		}},
	}

	return Inputs{Census: census, Votes: votes, Turnout: turnout, Truth: truth}
}

func TestRunEndToEnd(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	res, err := Run(context.Background(), syntheticInputs(), Options{Metrics: rec})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Frame) != 8 {
		t.Fatalf("frame cells = %d, want 8", len(res.Frame))
	}
	if len(res.Cells) != len(res.Frame) {
		t.Fatalf("cell results = %d, want %d", len(res.Cells), len(res.Frame))
	}

	for code, total := range res.Frame.PercTotals() {
		if math.Abs(total-100) > 1e-9 {
			t.Fatalf("perc total for %s = %v, want 100", code, total)
		}
	}

	for i, p := range res.Predictions.Turnout {
		if p < 0 || p > 1 {
			t.Fatalf("turnout prediction %d = %v out of [0,1]", i, p)
		}
	}
	for party, probs := range res.Predictions.Prob {
		for i, p := range probs {
			if p < 0 || p > 1 {
				t.Fatalf("%s prediction %d = %v out of [0,1]", party, i, p)
			}
		}
	}

	if len(res.Estimates) != 2 {
		t.Fatalf("estimates = %d, want 2", len(res.Estimates))
	}
	for _, est := range res.Estimates {
		for _, party := range domain.Parties() {
			if est.Share[party] <= 0 {
				t.Fatalf("estimate %s/%s = %v, want positive", est.Constituency, party, est.Share[party])
			}
		}
	}

	// The dominant party in each leaning constituency should come out on top.
	byCode := make(map[string]domain.Estimate)
	for _, est := range res.Estimates {
		byCode[est.Constituency] = est
	}
	if byCode["C01"].Share[domain.PartyConservative] <= byCode["C01"].Share[domain.PartyLabour] {
		t.Fatalf("C01 shares: conservative %v <= labour %v",
			byCode["C01"].Share[domain.PartyConservative], byCode["C01"].Share[domain.PartyLabour])
	}
	if byCode["C02"].Share[domain.PartyLabour] <= byCode["C02"].Share[domain.PartyConservative] {
		t.Fatalf("C02 shares: labour %v <= conservative %v",
			byCode["C02"].Share[domain.PartyLabour], byCode["C02"].Share[domain.PartyConservative])
	}

	// Scaling is exact by construction: summing scaled contributions within a
	// constituency must reproduce the true share.
	scaledTotals := Aggregate(res.Frame, res.Scaled)
	truthByCode := map[string]domain.TrueResult{}
	for _, tr := range syntheticInputs().Truth {
		truthByCode[tr.Constituency] = tr
	}
	for _, est := range scaledTotals {
		want := truthByCode[est.Constituency]
		for _, party := range domain.Parties() {
			if math.Abs(est.Share[party]-want.Share[party]) > 1e-9 {
				t.Fatalf("scaled total %s/%s = %v, want %v", est.Constituency, party, est.Share[party], want.Share[party])
			}
		}
	}

	if want := 2 * len(domain.Parties()); len(res.Comparison) != want {
		t.Fatalf("comparison rows = %d, want %d", len(res.Comparison), want)
	}
	for _, row := range res.Comparison {
		if domain.IsMissing(float64(row.Factor)) {
			t.Fatalf("factor missing for %s/%s", row.Constituency, row.Party)
		}
	}

	snap := rec.Snapshot()
	for _, stage := range []string{"frame", "recode", "fit", "predict", "aggregate", "scale"} {
		if snap.Results[stage]["success"] != 1 {
			t.Fatalf("stage %s successes = %d, want 1", stage, snap.Results[stage]["success"])
		}
	}
}

// A frame constituency with no survey coverage still gets predictions: the
// models fall back to their fixed effects with a zero random intercept.
func TestPredictUnseenConstituencyFallback(t *testing.T) {
	in := syntheticInputs()
	in.Census = append(in.Census, frame.CensusRow{
		Constituency: "C99", Name: "Westhollow",
		Age: domain.Age16To24, EducationCode: 0, Sex: "female", Count: 100,
	})

	res, err := Run(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Models.Turnout.HasGroup("C99") {
		t.Fatalf("C99 should be unseen by the turnout model")
	}

	var unseen, seen *domain.CellResult
	for i := range res.Cells {
		c := &res.Cells[i]
		if c.Age != domain.Age16To24 || c.Education != domain.EducationNone || !c.Female {
			continue
		}
		switch c.Constituency {
		case "C99":
			unseen = c
		case "C01":
			seen = c
		}
	}
	if unseen == nil || seen == nil {
		t.Fatalf("expected matching cells in both C99 and C01")
	}
	if unseen.Turnout <= 0 || unseen.Turnout >= 1 {
		t.Fatalf("fallback turnout = %v, want in (0,1)", unseen.Turnout)
	}
	for _, party := range domain.Parties() {
		if p := unseen.Prob[party]; p <= 0 || p >= 1 {
			t.Fatalf("fallback %s probability = %v, want in (0,1)", party, p)
		}
	}
	// The seen cell carries a random intercept, the unseen one does not.
	want := res.Models.Turnout.Predict(true, domain.Age16To24, domain.EducationNone, "no-such-code")
	if unseen.Turnout != want {
		t.Fatalf("fallback turnout = %v, want fixed-effects value %v", unseen.Turnout, want)
	}
	if seen.Turnout == unseen.Turnout {
		t.Fatalf("seen and unseen constituencies should not share a turnout prediction")
	}

	// Without ground truth for C99 its factors, scaled values, and comparison
	// true shares are all missing.
	if f := res.Factors.Factor("C99", domain.PartyLabour); !domain.IsMissing(f) {
		t.Fatalf("factor for C99 = %v, want missing", f)
	}
	if !domain.IsMissing(unseen.Scaled[domain.PartyLabour]) {
		t.Fatalf("scaled value for C99 = %v, want missing", unseen.Scaled[domain.PartyLabour])
	}
}

func TestRunRejectsEmptySurveys(t *testing.T) {
	in := syntheticInputs()
	in.Votes = nil
	if _, err := Run(context.Background(), in, Options{}); err == nil {
		t.Fatalf("expected error for empty vote survey")
	}

	in = syntheticInputs()
	in.Turnout = nil
	if _, err := Run(context.Background(), in, Options{}); err == nil {
		t.Fatalf("expected error for empty turnout survey")
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	f := domain.Frame{
		{Constituency: "C01", Age: domain.Age16To24, Education: domain.EducationNone, Perc: 60},
		{Constituency: "C02", Age: domain.Age16To24, Education: domain.EducationNone, Perc: 100},
		{Constituency: "C01", Age: domain.Age65Plus, Education: domain.EducationNone, Perc: 40},
	}
	w := Weighted{domain.PartyLabour: {10, 20, 30}}

	reversed := domain.Frame{f[2], f[1], f[0]}
	wReversed := Weighted{domain.PartyLabour: {30, 20, 10}}

	a := Aggregate(f, w)
	b := Aggregate(reversed, wReversed)

	totals := func(ests []domain.Estimate) map[string]float64 {
		out := make(map[string]float64)
		for _, est := range ests {
			out[est.Constituency] = est.Share[domain.PartyLabour]
		}
		return out
	}
	ta, tb := totals(a), totals(b)
	for code, want := range ta {
		if math.Abs(tb[code]-want) > 1e-12 {
			t.Fatalf("aggregate for %s differs by order: %v vs %v", code, want, tb[code])
		}
	}
	if ta["C01"] != 40 || ta["C02"] != 20 {
		t.Fatalf("aggregate totals = %v, want C01=40 C02=20", ta)
	}
}

func TestAggregateMissingPoisonsConstituency(t *testing.T) {
	f := domain.Frame{
		{Constituency: "C01", Perc: 50},
		{Constituency: "C01", Perc: 50},
		{Constituency: "C02", Perc: 100},
	}
	w := Weighted{domain.PartyOther: {10, domain.Missing(), 25}}

	ests := Aggregate(f, w)
	byCode := make(map[string]float64)
	for _, est := range ests {
		byCode[est.Constituency] = est.Share[domain.PartyOther]
	}
	if !domain.IsMissing(byCode["C01"]) {
		t.Fatalf("C01 total = %v, want missing", byCode["C01"])
	}
	if byCode["C02"] != 25 {
		t.Fatalf("C02 total = %v, want 25", byCode["C02"])
	}
}

func TestFactorsMissingCases(t *testing.T) {
	estimates := []domain.Estimate{
		{Constituency: "C01", Share: map[domain.Party]float64{domain.PartyLabour: 40, domain.PartyOther: 0}},
		{Constituency: "C99", Share: map[domain.Party]float64{domain.PartyLabour: 10}},
	}
	truth := []domain.TrueResult{
		{Constituency: "C01", Share: map[domain.Party]float64{domain.PartyLabour: 50}},
	}

	factors := Factors(estimates, truth)

	if got := factors.Factor("C01", domain.PartyLabour); math.Abs(got-1.25) > 1e-12 {
		t.Fatalf("C01 labour factor = %v, want 1.25", got)
	}
	if got := factors.Factor("C01", domain.PartyOther); !domain.IsMissing(got) {
		t.Fatalf("zero estimate factor = %v, want missing", got)
	}
	if got := factors.Factor("C99", domain.PartyLabour); !domain.IsMissing(got) {
		t.Fatalf("unmatched constituency factor = %v, want missing", got)
	}
	if got := factors.Factor("C01", domain.PartyConservative); !domain.IsMissing(got) {
		t.Fatalf("party absent from truth factor = %v, want missing", got)
	}
}

func TestScaleIdentityAndLinearity(t *testing.T) {
	f := domain.Frame{
		{Constituency: "C01"},
		{Constituency: "C01"},
		{Constituency: "C02"},
	}
	w := Weighted{domain.PartyConservative: {4, 6, 8}}
	factors := domain.ScaleFactors{
		"C01": {domain.PartyConservative: 1},
		"C02": {domain.PartyConservative: 2.5},
	}

	scaled := Scale(f, w, factors)
	got := scaled[domain.PartyConservative]
	if got[0] != 4 || got[1] != 6 {
		t.Fatalf("identity factor changed values: %v", got[:2])
	}
	if got[2] != 20 {
		t.Fatalf("scaled value = %v, want 20", got[2])
	}
	if w[domain.PartyConservative][2] != 8 {
		t.Fatalf("Scale mutated its input: %v", w[domain.PartyConservative])
	}
}

func TestScaleMissingFactorPropagates(t *testing.T) {
	f := domain.Frame{{Constituency: "C01"}}
	w := Weighted{domain.PartyLabour: {12}}
	scaled := Scale(f, w, domain.ScaleFactors{})
	if !domain.IsMissing(scaled[domain.PartyLabour][0]) {
		t.Fatalf("scaled value = %v, want missing", scaled[domain.PartyLabour][0])
	}
}

func TestComparisonMissingTruth(t *testing.T) {
	estimates := []domain.Estimate{
		{Constituency: "C01", Share: map[domain.Party]float64{
			domain.PartyConservative: 30, domain.PartyLabour: 40, domain.PartyLiberalDemocrat: 20, domain.PartyOther: 10,
		}},
	}
	rows := Comparison(estimates, nil, Factors(estimates, nil))
	if len(rows) != len(domain.Parties()) {
		t.Fatalf("rows = %d, want %d", len(rows), len(domain.Parties()))
	}
	for _, row := range rows {
		if !domain.IsMissing(float64(row.TrueShare)) {
			t.Fatalf("true share = %v, want missing", float64(row.TrueShare))
		}
		if !domain.IsMissing(float64(row.Factor)) {
			t.Fatalf("factor = %v, want missing", float64(row.Factor))
		}
		if domain.IsMissing(float64(row.Estimated)) {
			t.Fatalf("estimated share unexpectedly missing for %s", row.Party)
		}
	}
}
