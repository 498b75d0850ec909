package evolution

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// improvementEpsilon is the smallest best-fitness gain that counts as
// progress for the patience-based stopping rule.
const improvementEpsilon = 1e-6

// GenerationBest records the fittest hypothesis of one generation.
type GenerationBest struct {
	Generation   int     `json:"generation"`
	HypothesisID string  `json:"hypothesis_id"`
	Fitness      float64 `json:"fitness"`
	Description  string  `json:"description"`
}

// Engine owns a fixed-size population of hypotheses and evolves it one
// generation at a time: evaluate, select (elitism + tournament), reproduce
// (crossover and mutation), replace.
//
// The engine is single-threaded by contract; only the per-hypothesis fitness
// evaluation step fans out across goroutines, which is safe because each
// evaluation touches only its own hypothesis.
type Engine struct {
	config    *Config
	mutator   *Mutator
	crossover *Crossover
	evaluator *Evaluator
	rng       *rand.Rand
	runID     string

	population      []*core.Hypothesis
	generationCount int

	// Per-generation statistics
	bestPerGeneration      []GenerationBest
	averageFitnessPerGen   []float64
	diversityPerGeneration []float64
}

// NewEngine creates an evolution engine. A nil config selects defaults;
// zero-valued fields are merged with defaults. All randomness flows through
// a single source seeded from config.Seed so runs are reproducible.
func NewEngine(config *Config) *Engine {
	config = config.withDefaults()

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	return &Engine{
		config:    config,
		mutator:   NewMutator(rng),
		crossover: NewCrossover(rng),
		evaluator: NewEvaluator(WithNeutralScore(config.NeutralScore)),
		rng:       rng,
		runID:     uuid.NewString()[:8],
	}
}

// RunID identifies this engine's evolution run in logs and reports.
func (e *Engine) RunID() string {
	return e.runID
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Population returns the current population. Callers must not mutate it.
func (e *Engine) Population() []*core.Hypothesis {
	return e.population
}

// GenerationCount returns the number of completed generations.
func (e *Engine) GenerationCount() int {
	return e.generationCount
}

// InitializePopulation seeds the population. Seed hypotheses beyond the
// population size are dropped; a shortfall is padded with randomly generated
// hypotheses.
func (e *Engine) InitializePopulation(ctx context.Context, seeds []*core.Hypothesis) []*core.Hypothesis {
	population := make([]*core.Hypothesis, 0, e.config.PopulationSize)
	for _, seed := range seeds {
		if len(population) == e.config.PopulationSize {
			break
		}
		population = append(population, seed)
	}

	for len(population) < e.config.PopulationSize {
		population = append(population, RandomHypothesis(e.rng))
	}

	e.population = population
	logging.GetLogger().Info(ctx, "Initialized population with %d hypotheses", len(population))
	return population
}

// EvolveGeneration runs one full generation: evaluate every hypothesis,
// record statistics, select parents, reproduce, replace the population. The
// returned slice is the new population; its size always equals the
// configured population size.
func (e *Engine) EvolveGeneration(ctx context.Context, testCases []core.TestCase) ([]*core.Hypothesis, error) {
	logger := logging.GetLogger()
	ctx = logging.WithGeneration(logging.WithRunID(ctx, e.runID), e.generationCount)

	if err := errors.CheckContext(ctx, "evolve generation"); err != nil {
		return e.population, err
	}

	if len(e.population) == 0 {
		// Degrade gracefully rather than failing on an uninitialized engine.
		logger.Warn(ctx, "Population empty, initializing with random hypotheses")
		e.InitializePopulation(ctx, nil)
	}

	logger.Info(ctx, "Evolving generation %d", e.generationCount)

	e.evaluatePopulation(ctx, testCases)
	e.recordGenerationStatistics()

	parents := e.selectParents()
	nextGeneration := e.createNextGeneration(parents)

	e.population = nextGeneration
	e.generationCount++

	logger.Info(ctx, "Generation %d evolved, best_fitness=%.3f",
		e.generationCount, e.currentBest().OverallFitness)

	return e.population, nil
}

// evaluatePopulation scores every hypothesis against the test cases. The
// evaluator is deterministic and each goroutine writes only its own
// hypothesis, so bounded fan-out preserves fitness determinism.
func (e *Engine) evaluatePopulation(ctx context.Context, testCases []core.TestCase) {
	p := pool.New().WithMaxGoroutines(e.config.ConcurrencyLevel)

	for _, hypothesis := range e.population {
		hypothesis := hypothesis
		p.Go(func() {
			e.evaluator.Evaluate(hypothesis, testCases)
		})
	}

	p.Wait()
}

// recordGenerationStatistics captures the best hypothesis, the mean fitness
// and a fitness-entropy diversity measure for the current generation.
func (e *Engine) recordGenerationStatistics() {
	fitnesses := make([]float64, len(e.population))
	for i, hypothesis := range e.population {
		fitnesses[i] = hypothesis.OverallFitness
	}

	best := e.currentBest()
	e.bestPerGeneration = append(e.bestPerGeneration, GenerationBest{
		Generation:   e.generationCount,
		HypothesisID: best.ID,
		Fitness:      best.OverallFitness,
		Description:  best.Description,
	})

	mean, err := stats.Mean(fitnesses)
	if err != nil {
		mean = 0
	}
	e.averageFitnessPerGen = append(e.averageFitnessPerGen, mean)

	e.diversityPerGeneration = append(e.diversityPerGeneration, fitnessEntropy(fitnesses))
}

// fitnessEntropy computes the Shannon entropy of a 10-bin histogram of the
// fitness values, with a small additive constant so empty bins don't produce
// log(0).
func fitnessEntropy(fitnesses []float64) float64 {
	if len(fitnesses) == 0 {
		return 0
	}

	const bins = 10
	const epsilon = 1e-10

	lo, hi := fitnesses[0], fitnesses[0]
	for _, f := range fitnesses[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}

	counts := make([]float64, bins)
	if hi == lo {
		counts[0] = float64(len(fitnesses))
	} else {
		width := (hi - lo) / bins
		for _, f := range fitnesses {
			idx := int((f - lo) / width)
			if idx == bins { // hi lands on the last bin's closed edge
				idx = bins - 1
			}
			counts[idx]++
		}
	}

	total := 0.0
	for i := range counts {
		counts[i] += epsilon
		total += counts[i]
	}

	entropy := 0.0
	for _, count := range counts {
		p := count / total
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	return entropy
}

// selectParents builds the parent pool: the elite by fitness, then repeated
// tournament winners until the pool reaches population size.
func (e *Engine) selectParents() []*core.Hypothesis {
	ranked := e.rankedPopulation()

	eliteCount := int(float64(e.config.PopulationSize) * e.config.ElitismRate)
	selected := make([]*core.Hypothesis, 0, e.config.PopulationSize)
	selected = append(selected, ranked[:eliteCount]...)

	for len(selected) < e.config.PopulationSize {
		selected = append(selected, e.tournamentWinner())
	}

	return selected[:e.config.PopulationSize]
}

// tournamentWinner samples tournament-size distinct members uniformly and
// returns the fittest.
func (e *Engine) tournamentWinner() *core.Hypothesis {
	size := e.config.TournamentSize
	if size > len(e.population) {
		size = len(e.population)
	}

	winner := (*core.Hypothesis)(nil)
	for _, idx := range e.rng.Perm(len(e.population))[:size] {
		contender := e.population[idx]
		if winner == nil || contender.OverallFitness > winner.OverallFitness {
			winner = contender
		}
	}
	return winner
}

// createNextGeneration carries the elite forward unchanged (deep copies) and
// fills the remaining slots with crossover and mutation offspring.
func (e *Engine) createNextGeneration(parents []*core.Hypothesis) []*core.Hypothesis {
	eliteCount := int(float64(e.config.PopulationSize) * e.config.ElitismRate)

	rankedParents := make([]*core.Hypothesis, len(parents))
	copy(rankedParents, parents)
	sort.SliceStable(rankedParents, func(i, j int) bool {
		return rankedParents[i].OverallFitness > rankedParents[j].OverallFitness
	})

	next := make([]*core.Hypothesis, 0, e.config.PopulationSize)
	for _, elite := range rankedParents[:eliteCount] {
		next = append(next, elite.Clone())
	}

	for len(next) < e.config.PopulationSize {
		if e.rng.Float64() < e.config.CrossoverRate && len(parents) >= 2 {
			picks := e.rng.Perm(len(parents))[:2]
			child1, child2 := e.crossover.Cross(parents[picks[0]], parents[picks[1]])

			if e.rng.Float64() < e.config.MutationRate {
				child1 = e.mutator.Mutate(child1, e.config.MutationRate)
			}
			if e.rng.Float64() < e.config.MutationRate {
				child2 = e.mutator.Mutate(child2, e.config.MutationRate)
			}

			next = append(next, child1, child2)
		} else {
			parent := parents[e.rng.Intn(len(parents))]
			next = append(next, e.mutator.Mutate(parent, e.config.MutationRate))
		}
	}

	return next[:e.config.PopulationSize]
}

// rankedPopulation returns the population sorted by fitness descending.
// The sort is stable so equal-fitness members keep insertion order.
func (e *Engine) rankedPopulation() []*core.Hypothesis {
	ranked := make([]*core.Hypothesis, len(e.population))
	copy(ranked, e.population)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallFitness > ranked[j].OverallFitness
	})
	return ranked
}

// currentBest returns the fittest member of the current population, first
// wins ties.
func (e *Engine) currentBest() *core.Hypothesis {
	best := e.population[0]
	for _, hypothesis := range e.population[1:] {
		if hypothesis.OverallFitness > best.OverallFitness {
			best = hypothesis
		}
	}
	return best
}

// BestHypotheses returns the top-k hypotheses by overall fitness, ties
// broken by insertion order.
func (e *Engine) BestHypotheses(k int) []*core.Hypothesis {
	ranked := e.rankedPopulation()
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// EvolveUntilConvergence evolves generations until the best fitness reaches
// fitnessThreshold, `patience` consecutive generations pass without an
// improvement above 1e-6, or maxGenerations is reached. It returns the best
// hypothesis found.
func (e *Engine) EvolveUntilConvergence(ctx context.Context, testCases []core.TestCase,
	maxGenerations int, fitnessThreshold float64, patience int) (*core.Hypothesis, error) {

	logger := logging.GetLogger()
	ctx = logging.WithRunID(ctx, e.runID)
	logger.Info(ctx, "Starting evolution for up to %d generations", maxGenerations)

	bestFitnessHistory := make([]float64, 0, maxGenerations)
	generationsWithoutImprovement := 0

	for generation := 0; generation < maxGenerations; generation++ {
		if _, err := e.EvolveGeneration(ctx, testCases); err != nil {
			return e.bestOrNil(), err
		}

		bestFitness := e.currentBest().OverallFitness
		bestFitnessHistory = append(bestFitnessHistory, bestFitness)

		if bestFitness >= fitnessThreshold {
			logger.Info(ctx, "Fitness threshold %.3f reached at generation %d", fitnessThreshold, generation)
			break
		}

		if len(bestFitnessHistory) > 1 {
			if bestFitness <= bestFitnessHistory[len(bestFitnessHistory)-2]+improvementEpsilon {
				generationsWithoutImprovement++
			} else {
				generationsWithoutImprovement = 0
			}
		}

		if generationsWithoutImprovement >= patience {
			logger.Info(ctx, "Early stopping at generation %d due to lack of improvement", generation)
			break
		}
	}

	finalBest := e.currentBest()
	logger.Info(ctx, "Evolution complete, best_fitness=%.3f", finalBest.OverallFitness)
	return finalBest, nil
}

func (e *Engine) bestOrNil() *core.Hypothesis {
	if len(e.population) == 0 {
		return nil
	}
	return e.currentBest()
}
