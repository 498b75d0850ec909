// Package evolve is a genetic search library for evolving hypotheses:
// candidate rule-sets that explain an input-to-output transformation.
//
// A population of hypotheses is scored each generation on six weighted
// metrics (accuracy, generalizability, simplicity, consistency, novelty and
// explanatory power), then recombined through elitism, tournament selection,
// crossover and mutation until the fitness threshold is reached, progress
// stalls, or the generation cap is hit.
//
// Key Components:
//
//   - core: The Hypothesis data model, the Predictor interface it is scored
//     through, and the test-case and metric types shared across packages.
//
//   - evolution: The engine itself: Mutator, Crossover, Evaluator and the
//     generational Engine with its convergence loop and run reports.
//
//   - config: YAML settings with struct-tag validation for the engine
//     parameters, the convergence policy and the ambient concerns.
//
//   - storage: A SQLite archive for evolution reports, keyed by run ID.
//
//   - logging: Structured leveled logging with run and generation context
//     carried through context.Context.
//
//   - errors: Typed errors with codes and structured fields.
//
// Basic usage:
//
//	engine := evolution.NewEngine(&evolution.Config{PopulationSize: 30, Seed: 42})
//	engine.InitializePopulation(ctx, seeds)
//	best, err := engine.EvolveUntilConvergence(ctx, testCases, 50, 0.95, 10)
//	if err != nil {
//		// handle error
//	}
//	report := engine.GenerateReport()
//
// Every run is reproducible given a fixed seed: all randomness flows through
// a single source, and evaluation is deterministic.
package evolve
