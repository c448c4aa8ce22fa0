package glm

import (
	"math"

	"psephos/pkg/domain"
)

// Model is a fitted mixed-effects logistic regression: fixed-effect
// coefficients shared across all groups plus one shrunken intercept per
// grouping level seen during fitting.
type Model struct {
	fixed      []float64
	intercepts map[string]float64
	variance   float64
	groups     int
	obs        int
}

// Predict returns the probability of a positive outcome for the given
// predictor combination. Groups absent from the training data fall back to
// the population-level fixed effects with a zero random intercept.
func (m *Model) Predict(female bool, age domain.AgeBand, education domain.Education, group string) float64 {
	eta := 0.0
	for _, c := range activeColumns(female, age, education) {
		eta += m.fixed[c]
	}
	if u, ok := m.intercepts[group]; ok {
		eta += u
	}
	return sigmoid(eta)
}

// HasGroup reports whether the model estimated a random intercept for group.
func (m *Model) HasGroup(group string) bool {
	_, ok := m.intercepts[group]
	return ok
}

// Intercept returns the estimated random intercept for group, or 0 when the
// group was not in the training data (the fallback used by Predict).
func (m *Model) Intercept(group string) float64 {
	return m.intercepts[group]
}

// Variance returns the estimated random-intercept variance.
func (m *Model) Variance() float64 { return m.variance }

// Groups returns the number of grouping levels seen during fitting.
func (m *Model) Groups() int { return m.groups }

// Observations returns the number of training rows.
func (m *Model) Observations() int { return m.obs }

func sigmoid(eta float64) float64 {
	// Clamp to keep the fitted weights away from exact 0/1.
	if eta > 35 {
		eta = 35
	} else if eta < -35 {
		eta = -35
	}
	return 1.0 / (1.0 + math.Exp(-eta))
}
