// Package testutil provides shared test doubles and fixture builders for
// exercising the evolution engine.
package testutil

import (
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/evolve-go/pkg/core"
)

// MockPredictor is a testify mock for the core.Predictor interface.
type MockPredictor struct {
	mock.Mock
}

// Predict implements core.Predictor.
func (m *MockPredictor) Predict(input any) (any, error) {
	args := m.Called(input)
	return args.Get(0), args.Error(1)
}

// ConstantPredictor returns a predictor that answers every input with the
// same output.
func ConstantPredictor(output any) core.Predictor {
	return core.PredictorFunc(func(any) (any, error) {
		return output, nil
	})
}

// FailingPredictor returns a predictor that always errors.
func FailingPredictor(message string) core.Predictor {
	return core.PredictorFunc(func(any) (any, error) {
		return nil, fmt.Errorf("%s", message)
	})
}

// EchoPredictor returns a predictor that answers with its input unchanged.
func EchoPredictor() core.Predictor {
	return core.PredictorFunc(func(input any) (any, error) {
		return input, nil
	})
}

// IdentityCases builds n test cases whose expected output equals the input.
// EchoPredictor solves them all.
func IdentityCases(n int, caseType string) []core.TestCase {
	cases := make([]core.TestCase, n)
	for i := range cases {
		cases[i] = core.TestCase{Input: i, Output: i, Type: caseType}
	}
	return cases
}

// Hypothesis builds a minimal valid hypothesis for tests, with overridable
// mutators applied in order.
func Hypothesis(id string, overrides ...func(*core.Hypothesis)) *core.Hypothesis {
	h := &core.Hypothesis{
		ID:          id,
		Kind:        core.PatternRecognition,
		Description: "Test hypothesis " + id,
		Parameters:  map[string]any{"threshold": 0.5},
		Rules:       []string{"detect_pattern_symmetric"},
		Conditions:  []string{"size > 1"},
	}
	for _, override := range overrides {
		override(h)
	}
	return h
}
