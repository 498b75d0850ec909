package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewError tests the basic creation of errors.
func TestNewError(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "ValidationFailed",
			code:    ValidationFailed,
			message: "validation failed",
		},
		{
			name:    "PredictionFailed",
			code:    PredictionFailed,
			message: "prediction procedure raised",
		},
		{
			name:    "OperatorFailed",
			code:    OperatorFailed,
			message: "mutation operator failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)

			customErr, ok := err.(*Error)

			assert.True(t, ok, "should be a custom *Error")
			assert.Equal(t, tt.code, customErr.Code())
			assert.Equal(t, tt.message, customErr.Error())

			// Test nil original error for new errors
			assert.Nil(t, customErr.Unwrap())
		})
	}
}

// TestWrapError tests error wrapping functionality.
func TestWrapError(t *testing.T) {
	originalErr := stderrors.New("original error")

	tests := []struct {
		name       string
		err        error
		code       ErrorCode
		wrapMsg    string
		expectNil  bool
		expectCode ErrorCode
	}{
		{
			name:       "Wrap normal error",
			err:        originalErr,
			code:       EvaluationFailed,
			wrapMsg:    "evaluation context",
			expectNil:  false,
			expectCode: EvaluationFailed,
		},
		{
			name:      "Wrap nil error",
			err:       nil,
			code:      EvaluationFailed,
			wrapMsg:   "evaluation context",
			expectNil: true,
		},
		{
			name:       "Wrap custom error",
			err:        New(ResourceNotFound, "not found"),
			code:       StorageFailed,
			wrapMsg:    "storage context",
			expectNil:  false,
			expectCode: StorageFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, tt.code, tt.wrapMsg)

			if tt.expectNil {
				assert.Nil(t, wrapped)
				return
			}

			require.NotNil(t, wrapped)
			customErr, ok := wrapped.(*Error)
			require.True(t, ok)
			assert.Equal(t, tt.expectCode, customErr.Code())
			assert.Contains(t, customErr.Error(), tt.wrapMsg)
			assert.Equal(t, tt.err, customErr.Unwrap())
		})
	}
}

// TestWithFields tests attaching structured context to errors.
func TestWithFields(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, WithFields(nil, Fields{"k": "v"}))
	})

	t.Run("custom error gains fields", func(t *testing.T) {
		err := New(OperatorFailed, "rule modification failed")
		withFields := WithFields(err, Fields{"operator": "rule_modification", "hypothesis_id": "h1"})

		customErr, ok := withFields.(*Error)
		require.True(t, ok)
		assert.Equal(t, OperatorFailed, customErr.Code())
		assert.Equal(t, "rule_modification", customErr.Fields()["operator"])
		assert.Contains(t, customErr.Error(), "hypothesis_id=h1")
	})

	t.Run("fields merge without mutating original", func(t *testing.T) {
		base := WithFields(New(Unknown, "base"), Fields{"a": 1})
		merged := WithFields(base, Fields{"b": 2})

		baseErr := base.(*Error)
		mergedErr := merged.(*Error)
		assert.Len(t, baseErr.Fields(), 1)
		assert.Len(t, mergedErr.Fields(), 2)
	})

	t.Run("plain error", func(t *testing.T) {
		err := WithFields(stderrors.New("plain"), Fields{"k": "v"})
		customErr, ok := err.(*Error)
		require.True(t, ok)
		assert.Equal(t, Unknown, customErr.Code())
	})
}

// TestErrorMatching tests errors.Is and errors.As behavior.
func TestErrorMatching(t *testing.T) {
	err := Wrap(stderrors.New("db locked"), StorageFailed, "save report")

	assert.True(t, stderrors.Is(err, New(StorageFailed, "anything")))
	assert.False(t, stderrors.Is(err, New(Timeout, "anything")))

	var customErr *Error
	require.True(t, stderrors.As(err, &customErr))
	assert.Equal(t, StorageFailed, customErr.Code())
}

func TestCheckContext(t *testing.T) {
	t.Run("active context", func(t *testing.T) {
		assert.Nil(t, CheckContext(context.Background(), "evolve"))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := CheckContext(ctx, "evolve")
		require.NotNil(t, err)
		customErr, ok := err.(*Error)
		require.True(t, ok)
		assert.Equal(t, Canceled, customErr.Code())
		assert.Contains(t, customErr.Error(), "evolve canceled")
	})
}
