package core

import "fmt"

// Kind classifies a hypothesis. The set is closed: every hypothesis carries
// exactly one of these tags and the evolution operators key their rule
// templates off it.
type Kind int

const (
	PatternRecognition Kind = iota
	TransformationRule
	CausalMechanism
	SpatialRelationship
	TemporalSequence
	CompositionalStructure
	MetaStrategy
)

// Kinds lists every hypothesis kind, in declaration order.
func Kinds() []Kind {
	return []Kind{
		PatternRecognition,
		TransformationRule,
		CausalMechanism,
		SpatialRelationship,
		TemporalSequence,
		CompositionalStructure,
		MetaStrategy,
	}
}

// String provides the canonical snake_case name for a kind.
func (k Kind) String() string {
	switch k {
	case PatternRecognition:
		return "pattern_recognition"
	case TransformationRule:
		return "transformation_rule"
	case CausalMechanism:
		return "causal_mechanism"
	case SpatialRelationship:
		return "spatial_relationship"
	case TemporalSequence:
		return "temporal_sequence"
	case CompositionalStructure:
		return "compositional_structure"
	case MetaStrategy:
		return "meta_strategy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a canonical name back to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown hypothesis kind: %q", name)
}
