// Package domain defines the categorical schema, post-stratification frame
// entities, survey respondent records, and run persistence contracts used by
// psephos.
package domain

// Party identifies a vote-choice outcome modelled by the pipeline.
type Party string

// Modelled parties. Everything outside the three main parties collapses into
// PartyOther during survey recoding.
const (
	// PartyConservative is the Conservative party outcome.
	PartyConservative Party = "conservative"
	// PartyLabour is the Labour party outcome.
	PartyLabour Party = "labour"
	// PartyLiberalDemocrat is the Liberal Democrat party outcome.
	PartyLiberalDemocrat Party = "liberal_democrat"
	// PartyOther aggregates all remaining parties.
	PartyOther Party = "other"
)

// Parties returns the modelled parties in canonical order.
func Parties() []Party {
	return []Party{PartyConservative, PartyLabour, PartyLiberalDemocrat, PartyOther}
}

// AgeBand is one of the six ordered age buckets shared by the census frame
// and both surveys.
type AgeBand string

// Census age buckets. AgeUnder16 exists in the raw census but is dropped from
// the frame (below voting age).
const (
	AgeUnder16 AgeBand = "0_15"
	Age16To24  AgeBand = "16_24"
	Age25To34  AgeBand = "25_34"
	Age35To49  AgeBand = "35_49"
	Age50To64  AgeBand = "50_64"
	Age65Plus  AgeBand = "65_plus"
)

// AgeBandOf buckets an age in years into the shared band scheme.
func AgeBandOf(years int) AgeBand {
	switch {
	case years < 16:
		return AgeUnder16
	case years <= 24:
		return Age16To24
	case years <= 34:
		return Age25To34
	case years <= 49:
		return Age35To49
	case years <= 64:
		return Age50To64
	default:
		return Age65Plus
	}
}

// VotingAgeBands returns the five bands that survive frame construction, in
// ascending order. Age16To24 is the model reference level.
func VotingAgeBands() []AgeBand {
	return []AgeBand{Age16To24, Age25To34, Age35To49, Age50To64, Age65Plus}
}

// Education is one of the five named qualification levels plus "other".
type Education string

// Education levels. EducationNone is the model reference level.
const (
	EducationNone   Education = "none"
	EducationLevel1 Education = "level1"
	EducationLevel2 Education = "level2"
	EducationLevel3 Education = "level3"
	EducationLevel4 Education = "level4"
	EducationOther  Education = "other"
)

// EducationLevels returns all education levels in canonical order.
func EducationLevels() []Education {
	return []Education{EducationNone, EducationLevel1, EducationLevel2, EducationLevel3, EducationLevel4, EducationOther}
}
