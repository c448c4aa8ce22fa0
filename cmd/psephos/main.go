// Command psephos runs the MRP estimation pipeline over the four input
// tables (census, vote panel, turnout survey, true results), persists the
// run record, and publishes the output tables to the artifact store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"psephos/internal/artifact"
	"psephos/internal/ingest"
	"psephos/internal/pipeline"
	"psephos/internal/storage"
	"psephos/pkg/domain"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("psephos", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		censusPath  string
		votesPath   string
		turnoutPath string
		resultsPath string
		runID       string
		listRuns    bool
		skipPublish bool
		verbose     bool
	)
	fs.StringVar(&censusPath, "census", "", "path to census csv")
	fs.StringVar(&votesPath, "votes", "", "path to vote panel csv")
	fs.StringVar(&turnoutPath, "turnout", "", "path to turnout survey csv")
	fs.StringVar(&resultsPath, "results", "", "path to true results csv")
	fs.StringVar(&runID, "run-id", "", "run identifier (default: generated)")
	fs.BoolVar(&listRuns, "list", false, "list persisted runs and exit")
	fs.BoolVar(&skipPublish, "skip-publish", false, "do not publish csv artifacts")
	fs.BoolVar(&verbose, "v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	store, err := storage.OpenRunStore(ctx)
	if err != nil {
		logger.Error("open run store", "error", err)
		return 1
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("close run store", "error", cerr)
		}
	}()

	if listRuns {
		return printRuns(ctx, store, stdout, logger)
	}

	for _, p := range []struct{ flag, value string }{
		{"census", censusPath}, {"votes", votesPath}, {"turnout", turnoutPath}, {"results", resultsPath},
	} {
		if p.value == "" {
			fmt.Fprintf(stderr, "psephos: -%s is required\n", p.flag)
			fs.Usage()
			return 2
		}
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	inputs, err := loadInputs(censusPath, votesPath, turnoutPath, resultsPath)
	if err != nil {
		logger.Error("load inputs", "error", err)
		return 1
	}

	res, err := pipeline.Run(ctx, inputs, pipeline.Options{
		Logger:  logger,
		Metrics: pipeline.NewExpvarMetricsRecorder(""),
	})
	if err != nil {
		logger.Error("pipeline run failed", "run_id", runID, "error", err)
		return 1
	}

	var keys []string
	if !skipPublish {
		artifacts, err := artifact.Open(ctx)
		if err != nil {
			logger.Error("open artifact store", "error", err)
			return 1
		}
		keys, err = pipeline.Publish(ctx, artifacts, runID, res)
		if err != nil {
			logger.Error("publish artifacts", "run_id", runID, "error", err)
			return 1
		}
		logger.Info("artifacts published", "run_id", runID, "driver", artifacts.Driver(), "keys", len(keys))
	}

	rec := domain.RunRecord{
		ID:         runID,
		CreatedAt:  time.Now().UTC(),
		Estimates:  res.Estimates,
		Comparison: res.Comparison,
		Artifacts:  keys,
	}
	if err := store.SaveRun(ctx, rec); err != nil {
		logger.Error("save run", "run_id", runID, "error", err)
		return 1
	}

	payload, err := pipeline.EncodeComparisonCSV(res.Comparison)
	if err != nil {
		logger.Error("encode comparison", "run_id", runID, "error", err)
		return 1
	}
	if _, err := stdout.Write(payload); err != nil {
		logger.Error("write comparison", "error", err)
		return 1
	}
	logger.Info("run complete", "run_id", runID,
		"cells", len(res.Cells), "constituencies", len(res.Estimates))
	return 0
}

func loadInputs(censusPath, votesPath, turnoutPath, resultsPath string) (pipeline.Inputs, error) {
	census, err := ingest.LoadCensus(censusPath)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	votes, err := ingest.LoadVotes(votesPath)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	turnout, err := ingest.LoadTurnout(turnoutPath)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	truth, err := ingest.LoadResults(resultsPath)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	return pipeline.Inputs{Census: census, Votes: votes, Turnout: turnout, Truth: truth}, nil
}

func printRuns(ctx context.Context, store domain.RunStore, stdout io.Writer, logger *slog.Logger) int {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		logger.Error("list runs", "error", err)
		return 1
	}
	for _, rec := range runs {
		fmt.Fprintf(stdout, "%s\t%s\tconstituencies=%d\tartifacts=%d\n",
			rec.ID, rec.CreatedAt.Format(time.RFC3339), len(rec.Estimates), len(rec.Artifacts))
	}
	return 0
}
