// Package glm fits mixed-effects binomial logistic regressions with one
// random intercept per grouping level, and predicts on new data including
// levels unseen during fitting.
package glm

import "psephos/pkg/domain"

// Fixed-effect column layout. All predictors are indicator variables, so a
// design row is fully described by the set of active column indices; every
// active column carries the value 1.
//
//	0       intercept
//	1       female
//	2..5    age dummies (reference band 16-24)
//	6..10   education dummies (reference level "none")
const numFixed = 11

var ageColumn = map[domain.AgeBand]int{
	domain.Age25To34: 2,
	domain.Age35To49: 3,
	domain.Age50To64: 4,
	domain.Age65Plus: 5,
}

var educationColumn = map[domain.Education]int{
	domain.EducationLevel1: 6,
	domain.EducationLevel2: 7,
	domain.EducationLevel3: 8,
	domain.EducationLevel4: 9,
	domain.EducationOther:  10,
}

// activeColumns returns the fixed-effect columns set to 1 for a predictor
// combination. Reference levels (age 16-24, education "none") contribute no
// dummy; the intercept column is always active.
func activeColumns(female bool, age domain.AgeBand, education domain.Education) []int {
	cols := make([]int, 0, 4)
	cols = append(cols, 0)
	if female {
		cols = append(cols, 1)
	}
	if c, ok := ageColumn[age]; ok {
		cols = append(cols, c)
	}
	if c, ok := educationColumn[education]; ok {
		cols = append(cols, c)
	}
	return cols
}
