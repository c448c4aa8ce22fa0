package pipeline

import "psephos/pkg/domain"

// Predictions holds per-cell predicted probabilities aligned with the frame:
// one turnout probability and one vote-choice probability per party for each
// cell. All values lie in [0,1]; constituencies unseen by a model receive its
// fixed-effects fallback, never a missing value.
type Predictions struct {
	Frame   domain.Frame
	Turnout []float64
	Prob    map[domain.Party][]float64
}

// Predict applies every fitted model to every frame cell.
func Predict(f domain.Frame, m Models) Predictions {
	p := Predictions{
		Frame:   f,
		Turnout: make([]float64, len(f)),
		Prob:    make(map[domain.Party][]float64, len(m.Vote)),
	}
	for party := range m.Vote {
		p.Prob[party] = make([]float64, len(f))
	}
	for i, cell := range f {
		p.Turnout[i] = m.Turnout.Predict(cell.Female, cell.Age, cell.Education, cell.Constituency)
		for party, model := range m.Vote {
			p.Prob[party][i] = model.Predict(cell.Female, cell.Age, cell.Education, cell.Constituency)
		}
	}
	return p
}
