package core

import (
	"time"
)

// Hypothesis is a candidate explanation of how an input transforms into an
// output: a rule set with application conditions and tunable parameters,
// scored across six fitness metrics. Hypotheses are value-like: evolution
// operators never modify one in place, they Clone first.
type Hypothesis struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"kind"`
	Generation int      `json:"generation"`
	ParentIDs  []string `json:"parent_ids"`

	// Core hypothesis content
	Description string         `json:"description"`
	Predictor   Predictor      `json:"-"` // opaque capability, not serialized
	Parameters  map[string]any `json:"parameters"`
	Rules       []string       `json:"rules"`
	Conditions  []string       `json:"conditions"`

	// Fitness metrics
	FitnessScores  map[Metric]float64 `json:"fitness_scores"`
	OverallFitness float64            `json:"overall_fitness"`

	// Evolution tracking
	Mutations        []string     `json:"mutations"`
	CrossoverHistory []string     `json:"crossover_history"`
	TestResults      []TestResult `json:"test_results"`

	// Validation
	ValidationExamples []string `json:"validation_examples"`
	SuccessRate        float64  `json:"success_rate"`
	Confidence         float64  `json:"confidence"`

	// Meta-information
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	UsageCount int       `json:"usage_count"`
}

// Clone returns a deep, independent copy of the hypothesis. The predictor is
// shared by reference: it is an opaque external capability, not owned state.
func (h *Hypothesis) Clone() *Hypothesis {
	clone := *h

	clone.ParentIDs = append([]string(nil), h.ParentIDs...)
	clone.Rules = append([]string(nil), h.Rules...)
	clone.Conditions = append([]string(nil), h.Conditions...)
	clone.Mutations = append([]string(nil), h.Mutations...)
	clone.CrossoverHistory = append([]string(nil), h.CrossoverHistory...)
	clone.ValidationExamples = append([]string(nil), h.ValidationExamples...)
	clone.TestResults = append([]TestResult(nil), h.TestResults...)

	if h.Parameters != nil {
		clone.Parameters = make(map[string]any, len(h.Parameters))
		for k, v := range h.Parameters {
			clone.Parameters[k] = v
		}
	}

	if h.FitnessScores != nil {
		clone.FitnessScores = make(map[Metric]float64, len(h.FitnessScores))
		for k, v := range h.FitnessScores {
			clone.FitnessScores[k] = v
		}
	}

	return &clone
}

// Complexity counts the structural elements that drive the simplicity metric
// and the complexity-adjustment mutation.
func (h *Hypothesis) Complexity() int {
	return len(h.Rules) + len(h.Conditions)
}
