package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolveDiscount(t *testing.T) {
	tests := []struct {
		name string
		base decimal.Decimal
		spec DiscountSpec
		want decimal.Decimal
	}{
		{
			name: "none ignores value",
			base: d("100000"),
			spec: DiscountSpec{Mode: ModeNone, Value: d("40")},
			want: d("0"),
		},
		{
			name: "zero spec is none",
			base: d("100000"),
			spec: DiscountSpec{},
			want: d("0"),
		},
		{
			name: "percent of base",
			base: d("125000"),
			spec: Percent(10),
			want: d("12500"),
		},
		{
			name: "percent keeps fractions",
			base: d("999"),
			spec: Percent(10),
			want: d("99.9"),
		},
		{
			name: "percent above 100 is accepted",
			base: d("1000"),
			spec: Percent(150),
			want: d("1500"),
		},
		{
			name: "fixed returns value",
			base: d("30000"),
			spec: Fixed(5000),
			want: d("5000"),
		},
		{
			name: "fixed is not capped to base",
			base: d("1000"),
			spec: Fixed(5000),
			want: d("5000"),
		},
		{
			name: "unknown mode resolves to zero",
			base: d("1000"),
			spec: DiscountSpec{Mode: "bogus", Value: d("10")},
			want: d("0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDiscount(tt.base, tt.spec)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestResolveDiscount_NoneForAnyValue(t *testing.T) {
	for _, base := range []int64{0, 1, 500, 1_000_000} {
		for _, v := range []int64{0, 10, 100, 250} {
			spec := DiscountSpec{Mode: ModeNone, Value: decimal.NewFromInt(v)}
			assert.True(t, ResolveDiscount(decimal.NewFromInt(base), spec).IsZero())
		}
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModePercent, ParseMode("percent"))
	assert.Equal(t, ModePercent, ParseMode(" Percentage "))
	assert.Equal(t, ModeFixed, ParseMode("fixed"))
	assert.Equal(t, ModeFixed, ParseMode("NOMINAL"))
	assert.Equal(t, ModeNone, ParseMode(""))
	assert.Equal(t, ModeNone, ParseMode("something"))
}

func TestDiscountSpec_Sanitize(t *testing.T) {
	got := DiscountSpec{Mode: ModeFixed, Value: d("-20")}.Sanitize()
	assert.Equal(t, ModeFixed, got.Mode)
	assert.True(t, got.Value.IsZero())

	got = DiscountSpec{Mode: "weird", Value: d("20")}.Sanitize()
	assert.Equal(t, ModeNone, got.Mode)

	got = Percent(150).Sanitize()
	assert.True(t, d("150").Equal(got.Value))
}
