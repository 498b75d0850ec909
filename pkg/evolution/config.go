package evolution

// Config contains configuration options for the hypothesis evolution engine.
type Config struct {
	// Evolutionary parameters
	PopulationSize int     `json:"population_size" yaml:"population_size" validate:"min=1"`     // Default: 50
	MutationRate   float64 `json:"mutation_rate" yaml:"mutation_rate" validate:"gte=0,lte=1"`   // Default: 0.1
	CrossoverRate  float64 `json:"crossover_rate" yaml:"crossover_rate" validate:"gte=0,lte=1"` // Default: 0.7
	ElitismRate    float64 `json:"elitism_rate" yaml:"elitism_rate" validate:"gte=0,lte=1"`     // Default: 0.1

	// Selection parameters
	TournamentSize int `json:"tournament_size" yaml:"tournament_size" validate:"min=1"` // Default: 3

	// Performance parameters
	ConcurrencyLevel int `json:"concurrency_level" yaml:"concurrency_level" validate:"min=0"` // Default: 3

	// Scoring policy: the score assigned to accuracy/generalizability when no
	// test cases are available to judge a hypothesis.
	NeutralScore float64 `json:"neutral_score" yaml:"neutral_score" validate:"gte=0,lte=1"` // Default: 0.5

	// Seed for the engine's random source. Zero selects a time-based seed;
	// tests fix it to reproduce exact lineages.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the default configuration for the evolution engine.
func DefaultConfig() *Config {
	return &Config{
		PopulationSize:   50,
		MutationRate:     0.1,
		CrossoverRate:    0.7,
		ElitismRate:      0.1,
		TournamentSize:   3,
		ConcurrencyLevel: 3,
		NeutralScore:     0.5,
	}
}

// withDefaults merges zero-valued fields with defaults.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}

	merged := *c
	if merged.PopulationSize <= 0 {
		merged.PopulationSize = defaults.PopulationSize
	}
	if merged.MutationRate <= 0 {
		merged.MutationRate = defaults.MutationRate
	}
	if merged.CrossoverRate <= 0 {
		merged.CrossoverRate = defaults.CrossoverRate
	}
	if merged.ElitismRate <= 0 {
		merged.ElitismRate = defaults.ElitismRate
	}
	if merged.TournamentSize <= 0 {
		merged.TournamentSize = defaults.TournamentSize
	}
	if merged.ConcurrencyLevel <= 0 {
		merged.ConcurrencyLevel = defaults.ConcurrencyLevel
	}
	if merged.NeutralScore <= 0 {
		merged.NeutralScore = defaults.NeutralScore
	}
	return &merged
}
