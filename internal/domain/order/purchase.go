package order

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

// Purchase is a procurement order placed with a supplier.
type Purchase struct {
	ID                   string
	SupplierID           string
	Status               PurchaseStatus
	Items                []PurchaseItem
	Discount             pricing.DiscountSpec
	Tax                  pricing.DiscountSpec
	Notes                string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PurchaseItem is a part line of a procurement order.
type PurchaseItem struct {
	PartID    string               `json:"part_id"`
	Quantity  int                  `json:"quantity"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	Discount  pricing.DiscountSpec `json:"discount"`
}

// Line reduces the item to its priced form.
func (i PurchaseItem) Line() pricing.LineItem {
	return pricing.LineItem{Quantity: i.Quantity, UnitPrice: i.UnitPrice, Discount: i.Discount}
}

// Lines returns the priced lines of the order.
func (p *Purchase) Lines() []pricing.LineItem {
	lines := make([]pricing.LineItem, len(p.Items))
	for i, item := range p.Items {
		lines[i] = item.Line()
	}
	return lines
}

// Totals computes the order totals from its current items.
func (p *Purchase) Totals() pricing.Totals {
	return pricing.Totalize(p.Lines(), p.Discount, p.Tax)
}

// PurchaseUpdate is a gated change request. Nil fields are left unchanged.
type PurchaseUpdate struct {
	Status               *PurchaseStatus
	Items                []PurchaseItem
	Discount             *pricing.DiscountSpec
	Tax                  *pricing.DiscountSpec
	Notes                *string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
}

func (u PurchaseUpdate) edits() bool {
	return u.Items != nil || u.Discount != nil || u.Tax != nil ||
		u.Notes != nil || u.ExpectedDeliveryDate != nil || u.ActualDeliveryDate != nil
}

// StockAdjustment increments the stock of one part.
type StockAdjustment struct {
	PartID   string
	Quantity int
}

// PurchaseDecision is the outcome of DecidePurchase: the order as it must be
// persisted and the stock adjustments to apply with it.
type PurchaseDecision struct {
	Order       Purchase
	From        PurchaseStatus
	Adjustments []StockAdjustment
}

// StatusChanged reports whether the decision moves the order to a new status.
func (d PurchaseDecision) StatusChanged() bool {
	return d.From != d.Order.Status
}

// DecidePurchase validates upd against current and returns the resulting
// order. It performs no I/O; entering received yields one stock adjustment
// per item.
func DecidePurchase(current Purchase, upd PurchaseUpdate) (PurchaseDecision, error) {
	next := clonePurchase(current)
	target := current.Status

	if upd.Status != nil {
		target = *upd.Status
		if !current.Status.CanTransitionTo(target) {
			return PurchaseDecision{}, &IllegalTransitionError{From: string(current.Status), To: string(target)}
		}
	}

	if upd.edits() {
		if !current.Status.Editable() {
			return PurchaseDecision{}, &LockedError{Status: string(current.Status)}
		}
		if upd.Items != nil {
			if len(upd.Items) == 0 {
				return PurchaseDecision{}, ErrEmptyItems
			}
			next.Items = slices.Clone(upd.Items)
		}
		if upd.Discount != nil {
			next.Discount = upd.Discount.Sanitize()
		}
		if upd.Tax != nil {
			next.Tax = upd.Tax.Sanitize()
		}
		if upd.Notes != nil {
			next.Notes = *upd.Notes
		}
		if upd.ExpectedDeliveryDate != nil {
			next.ExpectedDeliveryDate = upd.ExpectedDeliveryDate
		}
		if upd.ActualDeliveryDate != nil {
			next.ActualDeliveryDate = upd.ActualDeliveryDate
		}
	} else if upd.Status == nil && current.Status.Terminal() {
		return PurchaseDecision{}, &LockedError{Status: string(current.Status)}
	}

	if err := pricing.ValidateLines(next.Lines()); err != nil {
		return PurchaseDecision{}, err
	}

	next.Status = target
	decision := PurchaseDecision{Order: next, From: current.Status}

	if target == PurchaseReceived && current.Status != PurchaseReceived {
		if next.ActualDeliveryDate == nil {
			return PurchaseDecision{}, &MissingRequiredFieldError{Field: "actual_delivery_date"}
		}
		decision.Adjustments = make([]StockAdjustment, len(next.Items))
		for i, item := range next.Items {
			decision.Adjustments[i] = StockAdjustment{PartID: item.PartID, Quantity: item.Quantity}
		}
	}

	return decision, nil
}

func clonePurchase(p Purchase) Purchase {
	p.Items = slices.Clone(p.Items)
	return p
}
