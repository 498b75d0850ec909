package evolution

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
)

// Vocabularies for kind-specific rule templates.
var (
	patternTypes   = []string{"symmetric", "repetitive", "gradient"}
	axes           = []string{"horizontal", "vertical", "diagonal"}
	sources        = []string{"object", "color", "shape"}
	targets        = []string{"new_object", "different_color", "modified_shape"}
	operationNames = []string{"rotate", "reflect", "scale", "translate"}
	conditionNames = []string{"size_threshold", "color_match", "position_check"}
	relations      = []string{"adjacent", "inside", "above"}
	distanceTypes  = []string{"manhattan", "euclidean", "chebyshev"}
)

func choice(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

// generateRule builds a rule string from a kind-specific template. Kinds
// without a dedicated template fall back to a numbered generic rule.
func generateRule(rng *rand.Rand, kind core.Kind) string {
	switch kind {
	case core.PatternRecognition:
		switch rng.Intn(3) {
		case 0:
			return "detect_pattern_" + choice(rng, patternTypes)
		case 1:
			return fmt.Sprintf("match_template_%d", rng.Intn(10)+1)
		default:
			return "find_repetition_" + choice(rng, axes)
		}
	case core.TransformationRule:
		switch rng.Intn(3) {
		case 0:
			return fmt.Sprintf("transform_%s_to_%s", choice(rng, sources), choice(rng, targets))
		case 1:
			return "apply_operation_" + choice(rng, operationNames)
		default:
			return "conditional_transform_if_" + choice(rng, conditionNames)
		}
	case core.SpatialRelationship:
		switch rng.Intn(3) {
		case 0:
			return "maintain_relative_position_" + choice(rng, relations)
		case 1:
			return "preserve_distance_" + choice(rng, distanceTypes)
		default:
			return "align_objects_" + choice(rng, axes)
		}
	default:
		return fmt.Sprintf("generic_rule_%d", rng.Intn(100)+1)
	}
}

// RandomHypothesis generates a randomly seeded hypothesis at generation 0
// with no parents. Population initialization pads with these when fewer seed
// hypotheses are supplied than the population size.
func RandomHypothesis(rng *rand.Rand) *core.Hypothesis {
	kinds := core.Kinds()
	kind := kinds[rng.Intn(len(kinds))]

	parameters := make(map[string]any, 3)
	for i := 0; i < 3; i++ {
		parameters[fmt.Sprintf("param_%d", i)] = rng.Float64()
	}

	rules := make([]string, rng.Intn(4)+1)
	for i := range rules {
		rules[i] = generateRule(rng, kind)
	}

	conditions := make([]string, rng.Intn(3)+1)
	for i := range conditions {
		conditions[i] = fmt.Sprintf("condition_%d > %.2f", i, rng.Float64())
	}

	now := time.Now()
	return &core.Hypothesis{
		ID:            "rand_" + uuid.NewString()[:8],
		Kind:          kind,
		Generation:    0,
		ParentIDs:     []string{},
		Description:   fmt.Sprintf("Random %s hypothesis", kind),
		Parameters:    parameters,
		Rules:         rules,
		Conditions:    conditions,
		FitnessScores: make(map[core.Metric]float64),
		Confidence:    0.5,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
