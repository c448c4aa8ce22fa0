package domain

import (
	"encoding/json"
	"testing"
)

func TestAgeBandOfBoundaries(t *testing.T) {
	cases := []struct {
		years int
		want  AgeBand
	}{
		{0, AgeUnder16},
		{15, AgeUnder16},
		{16, Age16To24},
		{24, Age16To24},
		{25, Age25To34},
		{34, Age25To34},
		{35, Age35To49},
		{49, Age35To49},
		{50, Age50To64},
		{64, Age50To64},
		{65, Age65Plus},
		{101, Age65Plus},
	}
	for _, tc := range cases {
		if got := AgeBandOf(tc.years); got != tc.want {
			t.Errorf("AgeBandOf(%d) = %s, want %s", tc.years, got, tc.want)
		}
	}
}

func TestFrameConstituenciesPreservesOrder(t *testing.T) {
	f := Frame{
		{Constituency: "E001", Age: Age16To24},
		{Constituency: "E002", Age: Age16To24},
		{Constituency: "E001", Age: Age25To34},
	}
	got := f.Constituencies()
	if len(got) != 2 || got[0] != "E001" || got[1] != "E002" {
		t.Fatalf("unexpected constituencies: %v", got)
	}
	if !f.HasConstituency("E002") {
		t.Fatalf("expected E002 to be present")
	}
	if f.HasConstituency("E999") {
		t.Fatalf("did not expect E999")
	}
}

func TestScaleFactorsMissingLookup(t *testing.T) {
	s := ScaleFactors{"E001": {PartyLabour: 1.25}}
	if got := s.Factor("E001", PartyLabour); got != 1.25 {
		t.Fatalf("expected 1.25, got %v", got)
	}
	if got := s.Factor("E001", PartyConservative); !IsMissing(got) {
		t.Fatalf("expected missing factor for absent party, got %v", got)
	}
	if got := s.Factor("E999", PartyLabour); !IsMissing(got) {
		t.Fatalf("expected missing factor for absent constituency, got %v", got)
	}
}

func TestOptFloatJSONRoundTrip(t *testing.T) {
	row := ComparisonRow{
		Constituency: "E001",
		Party:        PartyOther,
		TrueShare:    OptFloat(Missing()),
		Estimated:    OptFloat(12.5),
		Factor:       OptFloat(Missing()),
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ComparisonRow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !IsMissing(float64(back.TrueShare)) {
		t.Fatalf("expected missing true share after round trip, got %v", back.TrueShare)
	}
	if float64(back.Estimated) != 12.5 {
		t.Fatalf("expected estimated 12.5, got %v", back.Estimated)
	}
	if !IsMissing(float64(back.Factor)) {
		t.Fatalf("expected missing factor after round trip, got %v", back.Factor)
	}
}
