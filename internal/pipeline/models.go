package pipeline

import (
	"fmt"
	"sync"

	"psephos/internal/glm"
	"psephos/pkg/domain"
)

// Models bundles the five fitted regressions: one vote-choice model per
// party and one turnout model.
type Models struct {
	Vote    map[domain.Party]*glm.Model
	Turnout *glm.Model
}

// FitModels fits the four vote-choice models and the turnout model. The five
// fits share no state and run concurrently; the first error wins.
func FitModels(votes []domain.VoteRespondent, turnout []domain.TurnoutRespondent, opts glm.Options) (Models, error) {
	voteObs := make(map[domain.Party][]glm.Observation, len(domain.Parties()))
	for _, p := range domain.Parties() {
		obs := make([]glm.Observation, len(votes))
		for i, r := range votes {
			obs[i] = glm.Observation{
				Female:    r.Female,
				Age:       r.Age,
				Education: r.Education,
				Group:     r.Constituency,
				Outcome:   r.ChoiceIs(p),
			}
		}
		voteObs[p] = obs
	}
	turnoutObs := make([]glm.Observation, len(turnout))
	for i, r := range turnout {
		turnoutObs[i] = glm.Observation{
			Female:    r.Female,
			Age:       r.Age,
			Education: r.Education,
			Group:     r.Constituency,
			Outcome:   r.Voted,
		}
	}

	models := Models{Vote: make(map[domain.Party]*glm.Model, len(domain.Parties()))}
	errs := make(map[string]error)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, p := range domain.Parties() {
		wg.Add(1)
		go func(p domain.Party) {
			defer wg.Done()
			m, err := glm.Fit(voteObs[p], opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[string(p)] = err
				return
			}
			models.Vote[p] = m
		}(p)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		m, err := glm.Fit(turnoutObs, opts)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs["turnout"] = err
			return
		}
		models.Turnout = m
	}()
	wg.Wait()

	for name, err := range errs {
		return Models{}, fmt.Errorf("fit %s model: %w", name, err)
	}
	return models, nil
}
