// Package money holds the monetary primitives shared by the checkout
// payload derivation. All amounts leaving this package are int64 minor
// units (cents); tax rates are int64 basis points x100, so a nominal
// 10% rate is 10000. The payment provider rejects floating point
// amounts, which is why every conversion rounds here and nowhere else.
package money

import (
	"math"
	"strings"
)

// MinorUnits converts a decimal amount into minor currency units,
// rounding to the nearest integer. A zero amount always maps to 0.
func MinorUnits(amount float64) int64 {
	if amount == 0 {
		return 0
	}
	return int64(math.Round(amount * 100))
}

// TaxRateFromAmounts derives the tax rate (basis points x100) from a
// tax-inclusive and a tax-exclusive amount. The rate is inferred from
// the ratio of the two amounts, never read from stored metadata. A zero
// exclusive amount yields 0 rather than a division by zero.
func TaxRateFromAmounts(inclusive, exclusive float64) int64 {
	if exclusive == 0 {
		return 0
	}
	return int64(math.Round(((inclusive / exclusive) - 1) * 10000))
}

// TaxAmountFromInclusive extracts the tax portion embedded in a
// tax-inclusive total. The rate is a plain fraction (0.1 for 10%), not
// the basis-points encoding used everywhere else; callers own keeping
// the two representations apart. A zero rate yields 0.
func TaxAmountFromInclusive(totalInclusive, rate float64) float64 {
	if rate == 0 {
		return 0
	}
	return totalInclusive / (1 + (1 / rate))
}

// JoinUnique drops empty fragments, removes duplicates while keeping
// first-seen order, and joins the remainder with sep. Shipping method
// identifiers use "_", display names use " - ".
func JoinUnique(sep string, parts ...string) string {
	seen := make(map[string]struct{}, len(parts))
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		kept = append(kept, part)
	}
	return strings.Join(kept, sep)
}
