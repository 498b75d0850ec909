package evolution

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// FitnessWeights returns the fixed weights combining the six metrics into
// overall fitness.
func FitnessWeights() map[core.Metric]float64 {
	return map[core.Metric]float64{
		core.Accuracy:         0.30,
		core.Generalizability: 0.25,
		core.Simplicity:       0.15,
		core.Consistency:      0.15,
		core.Novelty:          0.10,
		core.ExplanatoryPower: 0.05,
	}
}

// Evaluator scores hypotheses against test cases on six metrics. Evaluation
// is deterministic: given a fixed predictor and fixed test cases the same
// scores always come out, so populations can be evaluated concurrently.
type Evaluator struct {
	weights      map[core.Metric]float64
	neutralScore float64
}

// EvaluatorOption customizes evaluator policy.
type EvaluatorOption func(*Evaluator)

// WithNeutralScore sets the score used for accuracy and generalizability
// when no test cases are available. The default is 0.5; a pessimistic caller
// can lower it to 0.
func WithNeutralScore(score float64) EvaluatorOption {
	return func(e *Evaluator) {
		e.neutralScore = score
	}
}

// NewEvaluator creates an evaluator with the fixed metric weights.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		weights:      FitnessWeights(),
		neutralScore: 0.5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores the hypothesis on all six metrics, stores the per-metric
// scores and the weighted overall fitness on the hypothesis, and returns the
// scores. No error ever escapes: a failing prediction call is scored as an
// incorrect prediction.
func (e *Evaluator) Evaluate(hypothesis *core.Hypothesis, testCases []core.TestCase) map[core.Metric]float64 {
	scores := map[core.Metric]float64{
		core.Accuracy:         e.evaluateAccuracy(hypothesis, testCases),
		core.Generalizability: e.evaluateGeneralizability(hypothesis, testCases),
		core.Simplicity:       e.evaluateSimplicity(hypothesis),
		core.Consistency:      e.evaluateConsistency(hypothesis),
		core.Novelty:          e.evaluateNovelty(hypothesis),
		core.ExplanatoryPower: e.evaluateExplanatoryPower(hypothesis),
	}

	overall := 0.0
	for metric, score := range scores {
		overall += score * e.weights[metric]
	}

	hypothesis.FitnessScores = scores
	hypothesis.OverallFitness = overall

	return scores
}

// evaluateAccuracy is the fraction of test cases whose predicted output
// exactly equals the expected output. A predictor failure counts as an
// incorrect prediction, never a skipped case.
func (e *Evaluator) evaluateAccuracy(hypothesis *core.Hypothesis, testCases []core.TestCase) float64 {
	if len(testCases) == 0 {
		return e.neutralScore
	}

	correct := 0
	total := 0

	for _, testCase := range testCases {
		if hypothesis.Predictor == nil {
			continue
		}

		prediction, err := safePredict(hypothesis.Predictor, testCase.Input)
		if err != nil {
			logging.GetLogger().Warn(context.Background(),
				"Error evaluating hypothesis %s: %v", hypothesis.ID, err)
			total++ // Count as incorrect
			continue
		}

		if prediction != nil && testCase.Output != nil {
			if reflect.DeepEqual(prediction, testCase.Output) {
				correct++
			}
			total++
		}
	}

	if total == 0 {
		total = 1
	}
	return float64(correct) / float64(total)
}

// safePredict invokes the prediction capability, converting panics into
// errors so a misbehaving predictor degrades to an incorrect prediction.
func safePredict(predictor core.Predictor, input any) (prediction any, err error) {
	defer func() {
		if r := recover(); r != nil {
			prediction = nil
			err = errors.New(errors.PredictionFailed, fmt.Sprintf("predictor panicked: %v", r))
		}
	}()
	return predictor.Predict(input)
}

// evaluateGeneralizability partitions test cases by type tag and rewards
// uniform accuracy across the groups: with two or more groups it is
// 1 - variance of the group accuracies (floored at 0), otherwise the mean
// group accuracy.
func (e *Evaluator) evaluateGeneralizability(hypothesis *core.Hypothesis, testCases []core.TestCase) float64 {
	if len(testCases) < 2 {
		return e.neutralScore
	}

	groups := make(map[string][]core.TestCase)
	order := make([]string, 0)
	for _, testCase := range testCases {
		groupType := testCase.GroupType()
		if _, seen := groups[groupType]; !seen {
			order = append(order, groupType)
		}
		groups[groupType] = append(groups[groupType], testCase)
	}

	accuracies := make([]float64, 0, len(groups))
	for _, groupType := range order {
		accuracies = append(accuracies, e.evaluateAccuracy(hypothesis, groups[groupType]))
	}

	if len(accuracies) > 1 {
		variance, err := stats.PopulationVariance(accuracies)
		if err != nil {
			return e.neutralScore
		}
		if variance > 1 {
			return 0
		}
		return 1 - variance
	}

	mean, err := stats.Mean(accuracies)
	if err != nil {
		return e.neutralScore
	}
	return mean
}

// evaluateSimplicity applies Occam's razor: fewer rules, conditions and
// parameters and a shorter description score higher.
func (e *Evaluator) evaluateSimplicity(hypothesis *core.Hypothesis) float64 {
	complexity := float64(len(hypothesis.Rules)) +
		float64(len(hypothesis.Conditions)) +
		float64(len(hypothesis.Parameters)) +
		float64(len(strings.Fields(hypothesis.Description)))/10

	const maxReasonableComplexity = 20
	simplicity := 1 - complexity/maxReasonableComplexity
	if simplicity < 0 {
		return 0
	}
	return simplicity
}

// Term pairs treated as mutually contradictory when they appear in two
// different rules.
var contradictoryPairs = [][2]string{
	{"increase", "decrease"},
	{"add", "remove"},
	{"create", "delete"},
	{"expand", "contract"},
	{"left", "right"},
	{"up", "down"},
}

// evaluateConsistency starts at 1.0 and penalizes contradictory rule pairs
// (-0.1 each), an unsatisfiable condition set (-0.2) and unreasonable
// parameters (-0.05 each), flooring at 0.
func (e *Evaluator) evaluateConsistency(hypothesis *core.Hypothesis) float64 {
	consistency := 1.0

	for i, rule1 := range hypothesis.Rules {
		for _, rule2 := range hypothesis.Rules[i+1:] {
			if rulesContradict(rule1, rule2) {
				consistency -= 0.1
			}
		}
	}

	if len(hypothesis.Conditions) > 0 && !conditionsSatisfiable(hypothesis.Conditions) {
		consistency -= 0.2
	}

	for name, value := range hypothesis.Parameters {
		if !parameterReasonable(name, value) {
			consistency -= 0.05
		}
	}

	if consistency < 0 {
		return 0
	}
	return consistency
}

func rulesContradict(rule1, rule2 string) bool {
	lower1 := strings.ToLower(rule1)
	lower2 := strings.ToLower(rule2)

	for _, pair := range contradictoryPairs {
		if strings.Contains(lower1, pair[0]) && strings.Contains(lower2, pair[1]) {
			return true
		}
		if strings.Contains(lower1, pair[1]) && strings.Contains(lower2, pair[0]) {
			return true
		}
	}
	return false
}

// conditionsSatisfiable is a coarse placeholder heuristic, not a constraint
// solver: five or more numeric conditions are assumed unsatisfiable.
func conditionsSatisfiable(conditions []string) bool {
	numeric := 0
	for _, condition := range conditions {
		if containsComparator(condition) {
			numeric++
		}
	}
	return numeric < 5
}

func parameterReasonable(name string, value any) bool {
	var numeric float64
	switch v := value.(type) {
	case float64:
		numeric = v
	case int:
		numeric = float64(v)
	default:
		return true
	}

	if numeric < -1000 || numeric > 1000 {
		return false
	}
	if strings.HasSuffix(strings.ToLower(name), "_probability") && (numeric < 0 || numeric > 1) {
		return false
	}
	return true
}

var creativeWords = []string{"novel", "innovative", "creative", "unique", "adaptive"}

// evaluateNovelty counts five boolean indicators of a creative hypothesis
// and divides by five.
func (e *Evaluator) evaluateNovelty(hypothesis *core.Hypothesis) float64 {
	indicators := 0
	const totalPossible = 5

	unique := make(map[string]struct{}, len(hypothesis.Rules))
	for _, rule := range hypothesis.Rules {
		unique[rule] = struct{}{}
	}
	if len(unique) == len(hypothesis.Rules) {
		indicators++
	}

	if len(hypothesis.Parameters) > 3 {
		indicators++
	}

	description := strings.ToLower(hypothesis.Description)
	for _, word := range creativeWords {
		if strings.Contains(description, word) {
			indicators++
			break
		}
	}

	if hypothesis.Generation > 5 {
		indicators++
	}

	if len(hypothesis.Mutations) > 3 {
		indicators++
	}

	return float64(indicators) / totalPossible
}

// evaluateExplanatoryPower rewards rich descriptions, multiple rules,
// nuanced conditions and empirical support from past test results.
func (e *Evaluator) evaluateExplanatoryPower(hypothesis *core.Hypothesis) float64 {
	score := 0.5

	if len(strings.Fields(hypothesis.Description)) > 10 {
		score += 0.2
	}
	if len(hypothesis.Rules) > 2 {
		score += 0.15
	}
	if len(hypothesis.Conditions) > 1 {
		score += 0.15
	}

	if len(hypothesis.TestResults) > 0 {
		total := 0.0
		for _, result := range hypothesis.TestResults {
			total += result.Score
		}
		score += total / float64(len(hypothesis.TestResults)) * 0.2
	}

	if score > 1 {
		return 1
	}
	return score
}
