package common

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := NewValidator()
	v.Field("total_classes", -1, NonNegative).
		Field("target_percentage", 101.0, Between(0, 100)).
		Field("date", "2025-13-01", DateYMD).
		Field("reason", "", Required)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 4)

	err := ValidateAndReturnError(v)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "total_classes must be non-negative")
	assert.Equal(t, 4, strings.Count(Message(err), ";")+1)
}

func TestValidatorRules(t *testing.T) {
	assert.Nil(t, NonNegative("n", 0))
	assert.NotNil(t, NonNegative("n", "x"))
	assert.Nil(t, Between(0, 100)("t", 75.0))
	assert.NotNil(t, Between(0, 100)("t", math.NaN()))
	assert.Nil(t, DateYMD("d", "2025-06-02"))
	assert.NotNil(t, MaxLength(3)("s", "abcd"))
	assert.Nil(t, ValidateAndReturnError(NewValidator()))
}
