package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = stderrors.New("GENERATOR_EXHAUSTED")

func TestStandardError_UnwrapReachesSentinel(t *testing.T) {
	err := NewGeneratorExhaustedError(errSentinel, 5, 11)

	assert.True(t, stderrors.Is(err, errSentinel))
	assert.Equal(t, ErrCodeGeneratorExhausted, err.Code)
	assert.Equal(t, 5, err.Metadata["rounds"])
	assert.Contains(t, err.Error(), "GENERATOR_EXHAUSTED")
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	std := NewDeliveryFailedError("ses", stderrors.New("throttled"))
	wrapped := fmt.Errorf("deliver: %w", std)
	assert.Same(t, std, Normalize(wrapped))

	plain := Normalize(stderrors.New("disk on fire"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "disk on fire", plain.Details)
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		code  ErrorCode
		fatal bool
	}{
		{ErrCodeHistorySaveFailed, false},
		{ErrCodeHistoryQueryFailed, false},
		{ErrCodeExtractionFailed, false},
		{ErrCodeToolFetchFailed, false},
		{ErrCodeWeatherFetchFailed, false},
		{ErrCodeGeneratorExhausted, true},
		{ErrCodeLLMRequestFailed, true},
		{ErrCodeDeliveryFailed, true},
		{ErrCodeConfigInvalid, true},
		{ErrCodeInternal, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeHistorySaveFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeExtractionFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeGeneratorExhausted))
	assert.Equal(t, "FETCH", GetErrorCategory(ErrCodeWeatherFetchFailed))
	assert.Equal(t, "DELIVERY", GetErrorCategory(ErrCodeDeliveryFailed))
	assert.Equal(t, "CONFIG", GetErrorCategory(ErrCodeConfigInvalid))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_Fields(t *testing.T) {
	err := NewHistoryQueryFailedError("redis", 30, stderrors.New("connection refused"))
	fields := err.Fields()

	assert.Equal(t, "HISTORY_QUERY_FAILED", fields["errorCode"])
	assert.Equal(t, "STORAGE", fields["errorCategory"])
	assert.Equal(t, false, fields["fatal"])
	assert.Equal(t, "redis", fields["backend"])
	assert.Equal(t, 30, fields["days"])
	assert.Equal(t, "connection refused", fields["details"])
}
