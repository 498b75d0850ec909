package core

// Predictor is the capability a hypothesis uses to produce an output for a
// given input. It is supplied by an external collaborator and attached
// per-hypothesis; the engine only ever invokes it synchronously during
// fitness evaluation. Implementations should be side-effect free: the same
// input must yield the same output for fitness determinism to hold.
//
// A Predict error is never fatal. The evaluator scores a failing call as an
// incorrect prediction and moves on.
type Predictor interface {
	Predict(input any) (any, error)
}

// PredictorFunc adapts a plain function to the Predictor interface.
type PredictorFunc func(input any) (any, error)

func (f PredictorFunc) Predict(input any) (any, error) {
	return f(input)
}

// TestCase is one input/output pair a hypothesis is scored against. Type is
// an optional tag used only by the generalizability metric to group cases;
// it defaults to "unknown" when absent.
type TestCase struct {
	Input  any    `json:"input"`
	Output any    `json:"output"`
	Type   string `json:"type,omitempty"`
}

// GroupType returns the case's type tag, defaulting untagged cases to
// "unknown".
func (tc TestCase) GroupType() string {
	if tc.Type == "" {
		return "unknown"
	}
	return tc.Type
}

// TestResult records the outcome of applying a hypothesis to a past test
// case. The evaluator's explanatory-power metric averages these scores as
// empirical support.
type TestResult struct {
	CaseID string  `json:"case_id,omitempty"`
	Score  float64 `json:"score"`
	Passed bool    `json:"passed"`
}
