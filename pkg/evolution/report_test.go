package evolution

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReport(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&Config{PopulationSize: 6, Seed: 55})
	engine.InitializePopulation(ctx, nil)

	const generations = 3
	for i := 0; i < generations; i++ {
		_, err := engine.EvolveGeneration(ctx, doublingCases(3, "arith"))
		require.NoError(t, err)
	}

	report := engine.GenerateReport()

	t.Run("summary reflects run configuration", func(t *testing.T) {
		assert.Equal(t, engine.RunID(), report.Summary.RunID)
		assert.Equal(t, generations, report.Summary.TotalGenerations)
		assert.Equal(t, 6, report.Summary.PopulationSize)
		assert.Equal(t, 0.1, report.Summary.MutationRate)
		assert.Equal(t, 0.7, report.Summary.CrossoverRate)
		assert.Equal(t, 0.1, report.Summary.ElitismRate)
	})

	t.Run("series cover every generation", func(t *testing.T) {
		assert.Len(t, report.Performance.BestFitnessPerGeneration, generations)
		assert.Len(t, report.Performance.AverageFitnessPerGeneration, generations)
		assert.Len(t, report.Performance.DiversityPerGeneration, generations)
		assert.Equal(t, engine.currentBest().OverallFitness, report.Performance.FinalBestFitness)
	})

	t.Run("population analysis covers the whole population", func(t *testing.T) {
		kindTotal := 0
		for _, count := range report.Population.HypothesisKinds {
			kindTotal += count
		}
		assert.Equal(t, 6, kindTotal)

		generationTotal := 0
		for _, count := range report.Population.GenerationDistribution {
			generationTotal += count
		}
		assert.Equal(t, 6, generationTotal)

		dist := report.Population.FitnessDistribution
		assert.LessOrEqual(t, dist.Min, dist.Mean)
		assert.LessOrEqual(t, dist.Mean, dist.Max)
		assert.GreaterOrEqual(t, dist.Std, 0.0)
	})

	t.Run("top hypotheses are ranked and truncated", func(t *testing.T) {
		require.Len(t, report.BestHypotheses, 5)
		for i := 1; i < len(report.BestHypotheses); i++ {
			assert.GreaterOrEqual(t,
				report.BestHypotheses[i-1].Fitness, report.BestHypotheses[i].Fitness)
		}
		for _, digest := range report.BestHypotheses {
			assert.LessOrEqual(t, len(digest.Rules), 3)
		}
		assert.Equal(t, report.BestHypotheses[0].HypothesisID, engine.BestHypotheses(1)[0].ID)
	})

	t.Run("serializes with the expected top-level keys", func(t *testing.T) {
		data, err := json.Marshal(report)
		require.NoError(t, err)

		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "evolution_summary")
		assert.Contains(t, decoded, "performance_metrics")
		assert.Contains(t, decoded, "population_analysis")
		assert.Contains(t, decoded, "best_hypotheses")
	})
}

func TestGenerateReportBeforeAnyGeneration(t *testing.T) {
	engine := NewEngine(&Config{PopulationSize: 4, Seed: 2})

	report := engine.GenerateReport()

	assert.Equal(t, 0, report.Summary.TotalGenerations)
	assert.Empty(t, report.Performance.BestFitnessPerGeneration)
	assert.Empty(t, report.BestHypotheses)
	assert.Equal(t, 0.0, report.Performance.FinalBestFitness)
	assert.Equal(t, FitnessDistribution{}, report.Population.FitnessDistribution)
}

func TestBestPerGenerationAccessor(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&Config{PopulationSize: 4, Seed: 11})
	engine.InitializePopulation(ctx, nil)

	_, err := engine.EvolveGeneration(ctx, nil)
	require.NoError(t, err)
	_, err = engine.EvolveGeneration(ctx, nil)
	require.NoError(t, err)

	records := engine.BestPerGeneration()
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].Generation)
	assert.Equal(t, 1, records[1].Generation)
	assert.NotEmpty(t, records[0].HypothesisID)

	// The accessor returns a copy.
	records[0].Fitness = -100
	assert.NotEqual(t, -100.0, engine.BestPerGeneration()[0].Fitness)
}
