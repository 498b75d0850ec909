package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evolve-go/pkg/config"
	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
	"github.com/XiaoConstantine/evolve-go/pkg/storage"
)

type runOptions struct {
	configPath  string
	generations int
	threshold   float64
	patience    int
	seed        int64
	dbPath      string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve hypotheses against the built-in doubling task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvolution(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML settings file")
	cmd.Flags().IntVarP(&opts.generations, "generations", "g", 0, "override max generations")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "override fitness threshold")
	cmd.Flags().IntVarP(&opts.patience, "patience", "p", 0, "override early-stopping patience")
	cmd.Flags().Int64VarP(&opts.seed, "seed", "s", 0, "random seed (0 for time-based)")
	cmd.Flags().StringVarP(&opts.dbPath, "db", "d", "", "override report archive path")

	return cmd
}

func loadSettings(opts *runOptions) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if opts.generations > 0 {
		settings.Convergence.MaxGenerations = opts.generations
	}
	if opts.threshold != 0 {
		settings.Convergence.FitnessThreshold = opts.threshold
	}
	if opts.patience > 0 {
		settings.Convergence.Patience = opts.patience
	}
	if opts.seed != 0 {
		settings.Engine.Seed = opts.seed
	}
	if opts.dbPath != "" {
		settings.Storage.Path = opts.dbPath
	}

	return settings, config.Validate(settings)
}

func runEvolution(ctx context.Context, opts *runOptions) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(settings.Logging.Level),
		Outputs: []logging.Output{
			logging.NewConsoleOutput(true, logging.WithColor(settings.Logging.Color)),
		},
	}))
	logger := logging.GetLogger()

	engine := evolution.NewEngine(&settings.Engine)
	engine.InitializePopulation(ctx, seedHypotheses())

	best, err := engine.EvolveUntilConvergence(ctx, doublingTask(),
		settings.Convergence.MaxGenerations,
		settings.Convergence.FitnessThreshold,
		settings.Convergence.Patience)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Best hypothesis after %d generations: %s (fitness %.3f)",
		engine.GenerationCount(), best.ID, best.OverallFitness)

	report := engine.GenerateReport()

	if settings.Storage.Path != "" {
		store, err := storage.NewSQLiteReportStore(settings.Storage.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Save(report); err != nil {
			return err
		}
		logger.Info(ctx, "Report archived under run %s", report.Summary.RunID)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// doublingTask is the built-in demonstration task: predict f(x) = 2x over two
// groups of inputs, small and large.
func doublingTask() []core.TestCase {
	cases := make([]core.TestCase, 0, 10)
	for i := 1; i <= 5; i++ {
		cases = append(cases, core.TestCase{Input: i, Output: i * 2, Type: "small"})
	}
	for i := 100; i <= 500; i += 100 {
		cases = append(cases, core.TestCase{Input: i, Output: i * 2, Type: "large"})
	}
	return cases
}

// seedHypotheses provides starting points of varying quality; the random
// remainder of the population is generated by the engine.
func seedHypotheses() []*core.Hypothesis {
	double := core.PredictorFunc(func(input any) (any, error) {
		n, ok := input.(int)
		if !ok {
			return nil, fmt.Errorf("expected int input, got %T", input)
		}
		return n * 2, nil
	})
	addTwo := core.PredictorFunc(func(input any) (any, error) {
		n, ok := input.(int)
		if !ok {
			return nil, fmt.Errorf("expected int input, got %T", input)
		}
		return n + 2, nil
	})

	return []*core.Hypothesis{
		{
			ID:          "seed_scaling",
			Kind:        core.TransformationRule,
			Description: "Multiply every input by a constant scaling factor",
			Predictor:   double,
			Parameters:  map[string]any{"factor": 2.0},
			Rules:       []string{"apply_operation_scale"},
			Conditions:  []string{"input > 0"},
		},
		{
			ID:          "seed_offset",
			Kind:        core.TransformationRule,
			Description: "Shift every input by a constant additive offset",
			Predictor:   addTwo,
			Parameters:  map[string]any{"offset": 2.0},
			Rules:       []string{"apply_operation_translate"},
			Conditions:  []string{"input > 0"},
		},
	}
}
