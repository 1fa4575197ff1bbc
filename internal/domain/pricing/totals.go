package pricing

import "github.com/shopspring/decimal"

// Totals is the derived money breakdown of a transaction.
type Totals struct {
	ItemsSubtotal  decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
}

// Sum adds up the totals of already valuated lines.
func Sum(values []LineValue) decimal.Decimal {
	sum := zero
	for _, v := range values {
		sum = sum.Add(v.Total)
	}
	return sum
}

// Totalize valuates items and folds them into transaction totals: the
// transaction discount applies to the sum of line totals, and the tax is
// computed on the discounted amount.
func Totalize(items []LineItem, discount, tax DiscountSpec) Totals {
	values := make([]LineValue, len(items))
	for i, item := range items {
		values[i] = Valuate(item)
	}
	return TotalizeValues(values, discount, tax)
}

// TotalizeValues is Totalize for lines that were valuated by the caller.
func TotalizeValues(values []LineValue, discount, tax DiscountSpec) Totals {
	subtotal := Sum(values)
	discountAmount := ResolveDiscount(subtotal, discount)
	after := floorAtZero(subtotal.Sub(discountAmount))
	taxAmount := ResolveDiscount(after, tax)

	return Totals{
		ItemsSubtotal:  subtotal,
		DiscountAmount: discountAmount,
		AfterDiscount:  after,
		TaxAmount:      taxAmount,
		GrandTotal:     after.Add(taxAmount),
	}
}
