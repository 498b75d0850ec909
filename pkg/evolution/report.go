package evolution

import (
	"github.com/montanaflynn/stats"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
)

// Report is the aggregate summary of an evolution run: configuration,
// per-generation series, final population statistics and the top
// hypotheses. Persisting it (to JSON, SQLite or elsewhere) is the caller's
// responsibility.
type Report struct {
	Summary        RunSummary         `json:"evolution_summary"`
	Performance    PerformanceSeries  `json:"performance_metrics"`
	Population     PopulationAnalysis `json:"population_analysis"`
	BestHypotheses []HypothesisDigest `json:"best_hypotheses"`
}

// RunSummary captures the run configuration.
type RunSummary struct {
	RunID            string  `json:"run_id"`
	TotalGenerations int     `json:"total_generations"`
	PopulationSize   int     `json:"population_size"`
	MutationRate     float64 `json:"mutation_rate"`
	CrossoverRate    float64 `json:"crossover_rate"`
	ElitismRate      float64 `json:"elitism_rate"`
}

// PerformanceSeries holds the per-generation statistic series.
type PerformanceSeries struct {
	BestFitnessPerGeneration    []float64 `json:"best_fitness_per_generation"`
	AverageFitnessPerGeneration []float64 `json:"average_fitness_per_generation"`
	DiversityPerGeneration      []float64 `json:"diversity_per_generation"`
	FinalBestFitness            float64   `json:"final_best_fitness"`
}

// PopulationAnalysis summarizes the final population's composition.
type PopulationAnalysis struct {
	HypothesisKinds        map[string]int      `json:"hypothesis_kinds"`
	GenerationDistribution map[int]int         `json:"generation_distribution"`
	FitnessDistribution    FitnessDistribution `json:"fitness_distribution"`
}

// FitnessDistribution holds moments of the final fitness values.
type FitnessDistribution struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// HypothesisDigest is the compact top-hypothesis view embedded in reports.
type HypothesisDigest struct {
	HypothesisID     string                  `json:"hypothesis_id"`
	Fitness          float64                 `json:"fitness"`
	Description      string                  `json:"description"`
	Generation       int                     `json:"generation"`
	Rules            []string                `json:"rules"`
	FitnessBreakdown map[core.Metric]float64 `json:"fitness_breakdown"`
}

// GenerateReport produces the evolution report for the run so far.
func (e *Engine) GenerateReport() *Report {
	fitnesses := make([]float64, len(e.population))
	kinds := make(map[string]int)
	generations := make(map[int]int)
	for i, hypothesis := range e.population {
		fitnesses[i] = hypothesis.OverallFitness
		kinds[hypothesis.Kind.String()]++
		generations[hypothesis.Generation]++
	}

	bestSeries := make([]float64, len(e.bestPerGeneration))
	for i, best := range e.bestPerGeneration {
		bestSeries[i] = best.Fitness
	}

	finalBest := 0.0
	if len(e.population) > 0 {
		finalBest = e.currentBest().OverallFitness
	}

	digests := make([]HypothesisDigest, 0, 5)
	for _, hypothesis := range e.BestHypotheses(5) {
		rules := hypothesis.Rules
		if len(rules) > 3 {
			rules = rules[:3]
		}
		digests = append(digests, HypothesisDigest{
			HypothesisID:     hypothesis.ID,
			Fitness:          hypothesis.OverallFitness,
			Description:      hypothesis.Description,
			Generation:       hypothesis.Generation,
			Rules:            append([]string(nil), rules...),
			FitnessBreakdown: cloneScores(hypothesis.FitnessScores),
		})
	}

	return &Report{
		Summary: RunSummary{
			RunID:            e.runID,
			TotalGenerations: e.generationCount,
			PopulationSize:   e.config.PopulationSize,
			MutationRate:     e.config.MutationRate,
			CrossoverRate:    e.config.CrossoverRate,
			ElitismRate:      e.config.ElitismRate,
		},
		Performance: PerformanceSeries{
			BestFitnessPerGeneration:    bestSeries,
			AverageFitnessPerGeneration: append([]float64(nil), e.averageFitnessPerGen...),
			DiversityPerGeneration:      append([]float64(nil), e.diversityPerGeneration...),
			FinalBestFitness:            finalBest,
		},
		Population: PopulationAnalysis{
			HypothesisKinds:        kinds,
			GenerationDistribution: generations,
			FitnessDistribution:    fitnessDistribution(fitnesses),
		},
		BestHypotheses: digests,
	}
}

// BestPerGeneration returns the per-generation best records accumulated so
// far.
func (e *Engine) BestPerGeneration() []GenerationBest {
	return append([]GenerationBest(nil), e.bestPerGeneration...)
}

func fitnessDistribution(fitnesses []float64) FitnessDistribution {
	if len(fitnesses) == 0 {
		return FitnessDistribution{}
	}

	mean, _ := stats.Mean(fitnesses)
	std, _ := stats.StandardDeviation(fitnesses)
	min, _ := stats.Min(fitnesses)
	max, _ := stats.Max(fitnesses)

	return FitnessDistribution{Mean: mean, Std: std, Min: min, Max: max}
}

func cloneScores(scores map[core.Metric]float64) map[core.Metric]float64 {
	out := make(map[core.Metric]float64, len(scores))
	for metric, score := range scores {
		out[metric] = score
	}
	return out
}
