package evolution

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// Mutator produces modified child hypotheses. Every mutation works on a deep
// copy; the parent is never touched.
type Mutator struct {
	rng *rand.Rand
}

// NewMutator creates a mutator drawing randomness from the given source.
func NewMutator(rng *rand.Rand) *Mutator {
	return &Mutator{rng: rng}
}

type mutationOperator struct {
	name  string
	apply func(*core.Hypothesis)
}

// operators returns the five mutation operators in their fixed application
// order. Each is an independent Bernoulli trial at the configured rate.
func (m *Mutator) operators() []mutationOperator {
	return []mutationOperator{
		{"parameter_tweak", m.mutateParameters},
		{"rule_modification", m.mutateRules},
		{"condition_change", m.mutateConditions},
		{"description_refinement", m.mutateDescription},
		{"complexity_adjustment", m.mutateComplexity},
	}
}

// Mutate returns a mutated deep copy of the hypothesis. Each operator fires
// independently with probability mutationRate; an operator that panics is
// skipped with a warning and the remaining operators still run.
func (m *Mutator) Mutate(hypothesis *core.Hypothesis, mutationRate float64) *core.Hypothesis {
	mutated := hypothesis.Clone()
	applied := make([]string, 0, 5)

	for _, op := range m.operators() {
		if m.rng.Float64() < mutationRate {
			if m.applyOperator(op, mutated) {
				applied = append(applied, op.name)
			}
		}
	}

	mutated.Generation = hypothesis.Generation + 1
	mutated.ParentIDs = []string{hypothesis.ID}
	mutated.Mutations = append(mutated.Mutations, applied...)
	mutated.UpdatedAt = time.Now()
	mutated.ID = fmt.Sprintf("%s_mut_%d", hypothesis.ID, mutated.Generation)

	return mutated
}

// applyOperator runs one operator, recovering from panics so a misbehaving
// sub-step can never break the generation loop.
func (m *Mutator) applyOperator(op mutationOperator, hypothesis *core.Hypothesis) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.GetLogger().Warn(context.Background(),
				"Mutation %s failed on hypothesis %s: %v", op.name, hypothesis.ID, r)
			ok = false
		}
	}()

	op.apply(hypothesis)
	return true
}

// mutateParameters adds Gaussian noise (mean 0, stddev 0.1x|value|) to every
// numeric parameter. Integer parameters are re-rounded and floored at 0.
func (m *Mutator) mutateParameters(hypothesis *core.Hypothesis) {
	for _, name := range sortedKeys(hypothesis.Parameters) {
		switch value := hypothesis.Parameters[name].(type) {
		case float64:
			noise := m.rng.NormFloat64() * 0.1 * value
			hypothesis.Parameters[name] = value + noise
		case int:
			noise := m.rng.NormFloat64() * 0.1 * float64(value)
			tweaked := int(float64(value) + noise)
			if tweaked < 0 {
				tweaked = 0
			}
			hypothesis.Parameters[name] = tweaked
		}
	}
}

// mutateRules applies three independent rule edits: append a freshly
// templated rule (p=0.3), remove a random rule when more than one remains
// (p=0.2), and rewrite a random rule as a textual variant (p=0.4).
func (m *Mutator) mutateRules(hypothesis *core.Hypothesis) {
	if len(hypothesis.Rules) == 0 {
		return
	}

	if m.rng.Float64() < 0.3 {
		hypothesis.Rules = append(hypothesis.Rules, generateRule(m.rng, hypothesis.Kind))
	}

	if m.rng.Float64() < 0.2 && len(hypothesis.Rules) > 1 {
		idx := m.rng.Intn(len(hypothesis.Rules))
		hypothesis.Rules = append(hypothesis.Rules[:idx], hypothesis.Rules[idx+1:]...)
	}

	if m.rng.Float64() < 0.4 {
		idx := m.rng.Intn(len(hypothesis.Rules))
		hypothesis.Rules[idx] = m.modifyRule(hypothesis.Rules[idx])
	}
}

// modifyRule rewrites a rule as one of five textual variants.
func (m *Mutator) modifyRule(rule string) string {
	switch m.rng.Intn(5) {
	case 0:
		return strings.ReplaceAll(rule, "_", "_enhanced_")
	case 1:
		return "conditional_" + rule
	case 2:
		return rule + "_with_validation"
	case 3:
		rule = strings.ReplaceAll(rule, "detect", "identify")
		return strings.ReplaceAll(rule, "find", "locate")
	default:
		return "optimized_" + rule
	}
}

var thresholdPattern = regexp.MustCompile(`\d+\.?\d*`)

// mutateConditions rescales the numeric threshold embedded in every
// comparison condition by a uniform factor in [0.8, 1.2].
func (m *Mutator) mutateConditions(hypothesis *core.Hypothesis) {
	for i, condition := range hypothesis.Conditions {
		if !containsComparator(condition) {
			continue
		}
		hypothesis.Conditions[i] = m.rescaleThreshold(condition)
	}
}

func containsComparator(condition string) bool {
	for _, op := range []string{">", "<", ">=", "<=", "=="} {
		if strings.Contains(condition, op) {
			return true
		}
	}
	return false
}

func (m *Mutator) rescaleThreshold(condition string) string {
	match := thresholdPattern.FindString(condition)
	if match == "" {
		return condition
	}

	old, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return condition
	}

	factor := 0.8 + m.rng.Float64()*0.4
	return strings.Replace(condition, match, fmt.Sprintf("%.2f", old*factor), 1)
}

var refinements = []string{
	"with enhanced precision",
	"considering edge cases",
	"with improved generalization",
	"accounting for context",
	"with adaptive parameters",
}

// mutateDescription appends a qualifying phrase with probability 0.3. Purely
// cosmetic; the hypothesis semantics are unchanged.
func (m *Mutator) mutateDescription(hypothesis *core.Hypothesis) {
	if m.rng.Float64() < 0.3 {
		hypothesis.Description += " " + choice(m.rng, refinements)
	}
}

// mutateComplexity nudges the hypothesis toward a moderate rule+condition
// count: grow when below 3, shrink when above 8.
func (m *Mutator) mutateComplexity(hypothesis *core.Hypothesis) {
	complexity := hypothesis.Complexity()

	if complexity < 3 && m.rng.Float64() < 0.4 {
		hypothesis.Rules = append(hypothesis.Rules, generateRule(m.rng, hypothesis.Kind))
	} else if complexity > 8 && m.rng.Float64() < 0.4 {
		if len(hypothesis.Rules) > 0 {
			hypothesis.Rules = hypothesis.Rules[:len(hypothesis.Rules)-1]
		}
		if len(hypothesis.Conditions) > 0 && m.rng.Float64() < 0.5 {
			hypothesis.Conditions = hypothesis.Conditions[:len(hypothesis.Conditions)-1]
		}
	}
}

// sortedKeys fixes the iteration order over parameter maps so that random
// draws consume the generator in a reproducible sequence.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
