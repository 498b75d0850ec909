package core

import "fmt"

// Metric identifies one of the six fitness dimensions a hypothesis is scored
// on. The set is closed; the evaluator combines all six with fixed weights.
type Metric int

const (
	Accuracy Metric = iota
	Generalizability
	Simplicity
	Consistency
	Novelty
	ExplanatoryPower
)

// Metrics lists every fitness metric, in declaration order.
func Metrics() []Metric {
	return []Metric{
		Accuracy,
		Generalizability,
		Simplicity,
		Consistency,
		Novelty,
		ExplanatoryPower,
	}
}

// String provides the canonical snake_case name for a metric.
func (m Metric) String() string {
	switch m {
	case Accuracy:
		return "accuracy"
	case Generalizability:
		return "generalizability"
	case Simplicity:
		return "simplicity"
	case Consistency:
		return "consistency"
	case Novelty:
		return "novelty"
	case ExplanatoryPower:
		return "explanatory_power"
	default:
		return fmt.Sprintf("metric(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler so metric-keyed maps
// serialize by name.
func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	for _, candidate := range Metrics() {
		if candidate.String() == string(text) {
			*m = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown fitness metric: %q", string(text))
}
