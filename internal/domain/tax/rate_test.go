package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRate(t *testing.T) {
	r, err := NewRate(RateParams{StateCode: " nc ", Rate: decimal.RequireFromString("0.0475")})
	require.NoError(t, err)
	assert.Equal(t, "NC", r.StateCode)
	assert.Equal(t, "North Carolina", r.StateName)
	assert.True(t, r.IsActive)

	_, err = NewRate(RateParams{StateCode: "XX", Rate: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = NewRate(RateParams{StateCode: "NY", Rate: decimal.RequireFromString("1.5")})
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = NewRate(RateParams{StateCode: "NY", Rate: decimal.RequireFromString("-0.01")})
	assert.ErrorIs(t, err, ErrInvalidRate)

	r, err = NewRate(RateParams{StateCode: "DC", Rate: decimal.RequireFromString("0.06")})
	require.NoError(t, err)
	assert.Equal(t, "District of Columbia", r.StateName)
}

func TestAmountAndPercentage(t *testing.T) {
	rate := decimal.RequireFromString("0.0725")
	assert.Equal(t, "7.25", Amount(decimal.NewFromInt(100), rate).StringFixed(2))
	assert.Equal(t, "3.62", Amount(decimal.RequireFromString("49.99"), rate).StringFixed(2))
	assert.Equal(t, "7.25%", Percentage(rate))
	assert.Equal(t, "0.00%", Percentage(decimal.Zero))
}

func TestStateName(t *testing.T) {
	assert.Len(t, states, 51)
	name, ok := StateName("wa")
	assert.True(t, ok)
	assert.Equal(t, "Washington", name)
	_, ok = StateName("PR")
	assert.False(t, ok)
}
