// Package pipeline implements the MRP estimation pipeline as an explicit
// chain of pure table transformations: frame construction, survey recoding,
// model fitting, per-cell prediction, weighted aggregation, and rescaling
// against ground-truth results. Each stage fully consumes its input and
// returns a new value; nothing is mutated across stages.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"psephos/internal/frame"
	"psephos/internal/glm"
	"psephos/internal/survey"
	"psephos/pkg/domain"
)

// Inputs carries the four raw tabular sources consumed by a run.
type Inputs struct {
	Census  []frame.CensusRow
	Votes   []survey.VoteRow
	Turnout []survey.TurnoutRow
	Truth   []domain.TrueResult
}

// Options configures a run. Zero values install noop observability and
// default fit settings.
type Options struct {
	Logger  Logger
	Metrics MetricsRecorder
	GLM     glm.Options
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = noopMetrics{}
	}
	return o
}

// Result is the full output of one run: every intermediate table plus the
// assembled per-cell output rows.
type Result struct {
	Frame       domain.Frame
	Votes       []domain.VoteRespondent
	Turnout     []domain.TurnoutRespondent
	Models      Models
	Predictions Predictions
	Weighted    Weighted
	Scaled      Weighted
	Estimates   []domain.Estimate
	Factors     domain.ScaleFactors
	Comparison  []domain.ComparisonRow
	Cells       []domain.CellResult
}

// Run executes the pipeline end to end. The stages are strictly sequential;
// only the five model fits inside FitModels run concurrently. Any stage error
// aborts the run.
func Run(ctx context.Context, in Inputs, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := &Result{}

	err := stage(ctx, opts, "frame", func() (int, error) {
		f, err := frame.Build(in.Census, opts.Logger)
		if err != nil {
			return 0, err
		}
		res.Frame = f
		return len(f), nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, opts, "recode", func() (int, error) {
		known := survey.ConstituencySet(res.Frame)
		var voteDrops, turnoutDrops survey.Drops
		res.Votes, voteDrops = survey.RecodeVotes(in.Votes, known)
		res.Turnout, turnoutDrops = survey.RecodeTurnout(in.Turnout, known)
		opts.Logger.Info("pipeline: surveys recoded",
			"vote_rows", len(res.Votes), "vote_dropped", voteDrops.Total(),
			"turnout_rows", len(res.Turnout), "turnout_dropped", turnoutDrops.Total())
		if len(res.Votes) == 0 {
			return 0, fmt.Errorf("pipeline: no usable vote respondents")
		}
		if len(res.Turnout) == 0 {
			return 0, fmt.Errorf("pipeline: no usable turnout respondents")
		}
		return len(res.Votes) + len(res.Turnout), nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, opts, "fit", func() (int, error) {
		m, err := FitModels(res.Votes, res.Turnout, opts.GLM)
		if err != nil {
			return 0, err
		}
		res.Models = m
		opts.Logger.Info("pipeline: models fitted",
			"turnout_groups", m.Turnout.Groups(), "frame_constituencies", len(res.Frame.Constituencies()))
		return len(domain.Parties()) + 1, nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, opts, "predict", func() (int, error) {
		res.Predictions = Predict(res.Frame, res.Models)
		return len(res.Frame), nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, opts, "aggregate", func() (int, error) {
		res.Weighted = Weight(res.Predictions)
		res.Estimates = Aggregate(res.Frame, res.Weighted)
		return len(res.Estimates), nil
	})
	if err != nil {
		return nil, err
	}

	err = stage(ctx, opts, "scale", func() (int, error) {
		res.Factors = Factors(res.Estimates, in.Truth)
		res.Scaled = Scale(res.Frame, res.Weighted, res.Factors)
		res.Comparison = Comparison(res.Estimates, in.Truth, res.Factors)
		return len(res.Comparison), nil
	})
	if err != nil {
		return nil, err
	}

	res.Cells = assembleCells(res)
	return res, nil
}

func stage(ctx context.Context, opts Options, name string, fn func() (int, error)) error {
	started := time.Now()
	rows, err := fn()
	opts.Metrics.ObserveStage(ctx, name, rows, err == nil, time.Since(started))
	if err != nil {
		opts.Logger.Error("pipeline: stage failed", "stage", name, "error", err)
		return err
	}
	opts.Logger.Debug("pipeline: stage complete", "stage", name, "rows", rows)
	return nil
}

func assembleCells(res *Result) []domain.CellResult {
	cells := make([]domain.CellResult, len(res.Frame))
	for i, cell := range res.Frame {
		out := domain.CellResult{
			Cell:     cell,
			Turnout:  res.Predictions.Turnout[i],
			Prob:     make(map[domain.Party]float64, len(res.Weighted)),
			Weighted: make(map[domain.Party]float64, len(res.Weighted)),
			Scaled:   make(map[domain.Party]float64, len(res.Weighted)),
		}
		for party := range res.Weighted {
			out.Prob[party] = res.Predictions.Prob[party][i]
			out.Weighted[party] = res.Weighted[party][i]
			out.Scaled[party] = res.Scaled[party][i]
		}
		cells[i] = out
	}
	return cells
}
