package frame

import (
	"math"
	"strings"
	"testing"

	"psephos/pkg/domain"
)

type captureLogger struct {
	warnings []string
}

func (l *captureLogger) Warn(msg string, _ ...any) { l.warnings = append(l.warnings, msg) }

func censusFixture() []CensusRow {
	return []CensusRow{
		{Constituency: "E001", Name: "Aldwych", Age: domain.Age16To24, EducationCode: 0, Sex: "female", Count: 100},
		{Constituency: "E001", Name: "Aldwych", Age: domain.Age16To24, EducationCode: 0, Sex: "male", Count: 150},
		{Constituency: "E001", Name: "Aldwych", Age: domain.Age65Plus, EducationCode: 4, Sex: "female", Count: 250},
		{Constituency: "E001", Name: "Aldwych", Age: domain.AgeUnder16, EducationCode: 0, Sex: "female", Count: 900},
		{Constituency: "E002", Name: "Brondesbury", Age: domain.Age35To49, EducationCode: 2, Sex: "male", Count: 60},
		{Constituency: "E002", Name: "Brondesbury", Age: domain.Age35To49, EducationCode: 9, Sex: "female", Count: 40},
	}
}

func TestBuildPercSumsToHundred(t *testing.T) {
	f, err := Build(censusFixture(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for code, total := range f.PercTotals() {
		if math.Abs(total-100) > 1e-9 {
			t.Errorf("constituency %s perc total = %v, want 100", code, total)
		}
	}
}

func TestBuildDropsUnderSixteen(t *testing.T) {
	f, err := Build(censusFixture(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, c := range f {
		if c.Age == domain.AgeUnder16 {
			t.Fatalf("under-16 cell survived: %+v", c)
		}
	}
	// E001 has 500 voting-age persons; the 16-24 female cell holds 100 of them.
	for _, c := range f {
		if c.Constituency == "E001" && c.Age == domain.Age16To24 && c.Female {
			if math.Abs(c.Perc-20) > 1e-9 {
				t.Fatalf("expected perc 20, got %v", c.Perc)
			}
		}
	}
}

func TestBuildRecodesEducation(t *testing.T) {
	f, err := Build(censusFixture(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var sawLevel4, sawOther bool
	for _, c := range f {
		if c.Education == domain.EducationLevel4 {
			sawLevel4 = true
		}
		if c.Education == domain.EducationOther {
			sawOther = true
		}
	}
	if !sawLevel4 {
		t.Fatalf("expected education code 4 to map to level4")
	}
	if !sawOther {
		t.Fatalf("expected unknown education code to map to other")
	}
}

func TestBuildLogsVanishedConstituency(t *testing.T) {
	rows := append(censusFixture(), CensusRow{
		Constituency: "E003", Name: "Caldervale",
		Age: domain.AgeUnder16, EducationCode: 0, Sex: "female", Count: 500,
	})
	log := &captureLogger{}
	f, err := Build(rows, log)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if f.HasConstituency("E003") {
		t.Fatalf("expected E003 to vanish after filtering")
	}
	found := false
	for _, w := range log.warnings {
		if strings.Contains(w, "vanished") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a vanished-constituency warning, got %v", log.warnings)
	}
}

func TestBuildDropsUnknownSexLabel(t *testing.T) {
	rows := censusFixture()
	rows = append(rows, CensusRow{Constituency: "E001", Age: domain.Age25To34, EducationCode: 1, Sex: "unknown", Count: 10})
	log := &captureLogger{}
	f, err := Build(rows, log)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, c := range f {
		if c.Age == domain.Age25To34 && c.Constituency == "E001" {
			t.Fatalf("row with unknown sex label survived")
		}
	}
	if len(log.warnings) == 0 {
		t.Fatalf("expected a warning for the dropped row")
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	if _, err := Build(nil, nil); err == nil {
		t.Fatalf("expected error for empty census input")
	}
}
