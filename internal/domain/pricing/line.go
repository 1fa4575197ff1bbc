package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is a single priced unit within an order.
type LineItem struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  DiscountSpec
}

// LineValue is the valuation of a LineItem.
type LineValue struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// InvalidLineItemError indicates a malformed line item.
type InvalidLineItemError struct {
	Index  int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.Index, e.Reason)
}

// ValidateLine checks that item can be valuated. index is only used to
// identify the item in the returned error.
func ValidateLine(index int, item LineItem) error {
	if item.Quantity < 1 {
		return &InvalidLineItemError{Index: index, Reason: "quantity must be at least 1"}
	}
	if item.UnitPrice.IsNegative() {
		return &InvalidLineItemError{Index: index, Reason: "unit price must not be negative"}
	}
	return nil
}

// ValidateLines runs ValidateLine over items and returns the first failure.
func ValidateLines(items []LineItem) error {
	for i, item := range items {
		if err := ValidateLine(i, item); err != nil {
			return err
		}
	}
	return nil
}

// Valuate computes subtotal, discount and total of a well-formed line item.
// The total never drops below zero.
func Valuate(item LineItem) LineValue {
	subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	discount := ResolveDiscount(subtotal, item.Discount)

	return LineValue{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          floorAtZero(subtotal.Sub(discount)),
	}
}
