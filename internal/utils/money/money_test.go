package money_test

import (
	"testing"

	"github.com/finledger/fin_ledger_app/internal/utils/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already two decimals", "100.00", "100.00"},
		{"rounds half up", "10.005", "10.01"},
		{"rounds down", "10.004", "10.00"},
		{"negative rounds away from zero", "-10.005", "-10.01"},
		{"long tail", "33.333333", "33.33"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := money.Round2(decimal.RequireFromString(tc.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"Round2(%s) = %s, want %s", tc.in, got.String(), tc.want)
		})
	}
}

func TestEqualRounded(t *testing.T) {
	assert.True(t, money.EqualRounded(
		decimal.RequireFromString("100.004"),
		decimal.RequireFromString("100.001")))
	assert.True(t, money.EqualRounded(
		decimal.RequireFromString("0.005"),
		decimal.RequireFromString("0.01")))
	assert.False(t, money.EqualRounded(
		decimal.RequireFromString("100.00"),
		decimal.RequireFromString("100.01")))
}

func TestIsZeroRounded(t *testing.T) {
	assert.True(t, money.IsZeroRounded(decimal.RequireFromString("0.004")))
	assert.True(t, money.IsZeroRounded(decimal.Zero))
	assert.False(t, money.IsZeroRounded(decimal.RequireFromString("0.005")))
	assert.False(t, money.IsZeroRounded(decimal.RequireFromString("-0.01")))
}
