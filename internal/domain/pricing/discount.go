// Package pricing implements the money arithmetic shared by procurement and
// service orders: discount resolution, line valuation and transaction totals.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// DiscountMode enumerates how a DiscountSpec value is interpreted.
type DiscountMode string

const (
	// ModeNone disables the discount regardless of its value.
	ModeNone DiscountMode = "none"
	// ModePercent treats the value as a percentage of the base amount.
	ModePercent DiscountMode = "percent"
	// ModeFixed treats the value as an absolute amount.
	ModeFixed DiscountMode = "fixed"
)

// ParseMode maps user supplied mode labels to a DiscountMode. Unknown labels
// resolve to ModeNone.
func ParseMode(s string) DiscountMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percent", "percentage":
		return ModePercent
	case "fixed", "nominal":
		return ModeFixed
	default:
		return ModeNone
	}
}

// DiscountSpec describes a discount (or a tax, which uses the same shape).
type DiscountSpec struct {
	Mode  DiscountMode    `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// NoDiscount is the zero discount.
var NoDiscount = DiscountSpec{Mode: ModeNone}

// Percent returns a percentage spec.
func Percent(v int64) DiscountSpec {
	return DiscountSpec{Mode: ModePercent, Value: decimal.NewFromInt(v)}
}

// Fixed returns an absolute amount spec.
func Fixed(v int64) DiscountSpec {
	return DiscountSpec{Mode: ModeFixed, Value: decimal.NewFromInt(v)}
}

// Sanitize normalizes a spec received from outside the core: unknown modes
// become ModeNone and negative values are clamped to zero. Percentages above
// 100 are kept as is.
func (s DiscountSpec) Sanitize() DiscountSpec {
	switch s.Mode {
	case ModePercent, ModeFixed:
	default:
		s.Mode = ModeNone
	}
	s.Value = floorAtZero(s.Value)
	return s
}

// ResolveDiscount returns the discount amount that spec yields on base.
//
// A fixed discount is not capped to base; callers clamp the resulting total.
func ResolveDiscount(base decimal.Decimal, spec DiscountSpec) decimal.Decimal {
	switch spec.Mode {
	case ModePercent:
		return base.Mul(spec.Value).Div(hundred)
	case ModeFixed:
		return spec.Value
	default:
		return zero
	}
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return zero
	}
	return d
}
