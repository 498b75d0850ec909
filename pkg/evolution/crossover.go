package evolution

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// Crossover recombines two parent hypotheses into two children by exchanging
// rules, parameters and conditions. Parents are never modified.
type Crossover struct {
	rng *rand.Rand
}

// NewCrossover creates a crossover operator drawing randomness from the
// given source.
func NewCrossover(rng *rand.Rand) *Crossover {
	return &Crossover{rng: rng}
}

// Cross produces two children from two parents. The three exchange steps run
// in a fixed order; a step that panics is skipped with a warning, leaving the
// children unchanged by that step.
func (c *Crossover) Cross(parent1, parent2 *core.Hypothesis) (*core.Hypothesis, *core.Hypothesis) {
	child1 := parent1.Clone()
	child2 := parent2.Clone()

	c.applyExchange("rule_exchange", func() {
		c.exchangeRules(child1, child2, parent1, parent2)
	})
	c.applyExchange("parameter_exchange", func() {
		c.exchangeParameters(child1, child2, parent1, parent2)
	})
	c.applyExchange("condition_exchange", func() {
		c.exchangeConditions(child1, child2, parent1, parent2)
	})

	generation := parent1.Generation
	if parent2.Generation > generation {
		generation = parent2.Generation
	}
	generation++

	lineage := fmt.Sprintf("%s x %s", parent1.ID, parent2.ID)
	now := time.Now()

	child1.Generation = generation
	child1.ParentIDs = []string{parent1.ID, parent2.ID}
	child1.ID = fmt.Sprintf("cross_%s_%s_%d_a", parent1.ID, parent2.ID, generation)
	child1.CrossoverHistory = append(child1.CrossoverHistory, lineage)
	child1.UpdatedAt = now

	child2.Generation = generation
	child2.ParentIDs = []string{parent1.ID, parent2.ID}
	child2.ID = fmt.Sprintf("cross_%s_%s_%d_b", parent1.ID, parent2.ID, generation)
	child2.CrossoverHistory = append(child2.CrossoverHistory, lineage)
	child2.UpdatedAt = now

	return child1, child2
}

func (c *Crossover) applyExchange(name string, exchange func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.GetLogger().Warn(context.Background(), "Crossover %s failed: %v", name, r)
		}
	}()
	exchange()
}

// exchangeRules performs single-point crossover on the rule sequences. Each
// parent gets its own cut point; children receive complementary halves.
func (c *Crossover) exchangeRules(child1, child2, parent1, parent2 *core.Hypothesis) {
	if len(parent1.Rules) <= 1 || len(parent2.Rules) <= 1 {
		return
	}

	cut1 := c.rng.Intn(len(parent1.Rules)-1) + 1
	cut2 := c.rng.Intn(len(parent2.Rules)-1) + 1

	child1.Rules = append(append([]string{}, parent1.Rules[:cut1]...), parent2.Rules[cut2:]...)
	child2.Rules = append(append([]string{}, parent2.Rules[:cut2]...), parent1.Rules[cut1:]...)
}

// exchangeParameters performs uniform crossover over the union of parameter
// names: each name independently swaps between children on a fair coin flip.
func (c *Crossover) exchangeParameters(child1, child2, parent1, parent2 *core.Hypothesis) {
	union := make(map[string]struct{}, len(parent1.Parameters)+len(parent2.Parameters))
	for name := range parent1.Parameters {
		union[name] = struct{}{}
	}
	for name := range parent2.Parameters {
		union[name] = struct{}{}
	}

	if child1.Parameters == nil {
		child1.Parameters = make(map[string]any)
	}
	if child2.Parameters == nil {
		child2.Parameters = make(map[string]any)
	}

	for _, name := range sortedKeys(union) {
		if c.rng.Float64() >= 0.5 {
			continue
		}

		value1, in1 := parent1.Parameters[name]
		value2, in2 := parent2.Parameters[name]
		switch {
		case in1 && in2:
			child1.Parameters[name] = value2
			child2.Parameters[name] = value1
		case in1:
			child2.Parameters[name] = value1
		case in2:
			child1.Parameters[name] = value2
		}
	}
}

// exchangeConditions pools both parents' conditions, deduplicates, shuffles
// and deals the first half to child1 and the rest to child2.
func (c *Crossover) exchangeConditions(child1, child2, parent1, parent2 *core.Hypothesis) {
	seen := make(map[string]struct{})
	pooled := make([]string, 0, len(parent1.Conditions)+len(parent2.Conditions))
	for _, condition := range append(append([]string{}, parent1.Conditions...), parent2.Conditions...) {
		if _, dup := seen[condition]; dup {
			continue
		}
		seen[condition] = struct{}{}
		pooled = append(pooled, condition)
	}

	if len(pooled) <= 1 {
		return
	}

	c.rng.Shuffle(len(pooled), func(i, j int) {
		pooled[i], pooled[j] = pooled[j], pooled[i]
	})

	mid := len(pooled) / 2
	child1.Conditions = append([]string{}, pooled[:mid]...)
	child2.Conditions = append([]string{}, pooled[mid:]...)
}
