package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewInvalidInputError("series length mismatch", nil),
			expected: "[INVALID_INPUT] series length mismatch",
		},
		{
			name:     "with cause",
			err:      NewParsingError("bad workbook", stderrors.New("no sheet")),
			expected: "[PARSING] bad workbook: no sheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := NewConfigError("load failed", cause)

	assert.True(t, stderrors.Is(err, cause))

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrTypeConfig, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewInvalidInputError("shares outstanding must be positive", nil).
		WithContext("shares_outstanding", -5.0)

	assert.Equal(t, -5.0, err.Context["shares_outstanding"])
}

func TestIsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid input error", NewInvalidInputError("missing field", nil), true},
		{"validation error", NewValidationError("struct validation failed", nil), true},
		{"wrapped invalid input", fmt.Errorf("analyze: %w", NewInvalidInputError("bad", nil)), true},
		{"parsing error", NewParsingError("bad cell", nil), false},
		{"plain error", stderrors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInvalidInput(tt.err))
		})
	}
}
