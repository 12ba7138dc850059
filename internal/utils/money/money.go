package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to 2 decimal places (standard half-away-from-zero).
// Every monetary value is passed through here before comparison or storage so that
// floating drift can never accumulate across sums of lines.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EqualRounded reports whether two amounts are equal once both are rounded
// to 2 decimal places. All "sum of lines equals total" checks use this.
func EqualRounded(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}

// IsZeroRounded reports whether an amount rounds to zero at 2 decimal places.
func IsZeroRounded(d decimal.Decimal) bool {
	return Round2(d).IsZero()
}
