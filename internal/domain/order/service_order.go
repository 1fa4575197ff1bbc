package order

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

// ServiceOrder is workshop labor and parts performed on a customer's vehicle.
type ServiceOrder struct {
	ID         string
	VehicleID  string
	CustomerID string
	Status     ServiceStatus
	Items      []ServiceItem
	Discount   pricing.DiscountSpec
	Tax        pricing.DiscountSpec
	OdometerKm *int
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ServiceItem is one service together with the parts it consumed.
type ServiceItem struct {
	ServiceID string               `json:"service_id"`
	Price     decimal.Decimal      `json:"price"`
	Discount  pricing.DiscountSpec `json:"discount"`
	Parts     []ServicePart        `json:"parts,omitempty"`
}

// ServicePart is a part fitted as part of a service item.
type ServicePart struct {
	PartID    string               `json:"part_id"`
	Quantity  int                  `json:"quantity"`
	UnitPrice decimal.Decimal      `json:"unit_price"`
	Discount  pricing.DiscountSpec `json:"discount"`
}

// ItemValue is the valuation of a ServiceItem.
type ItemValue struct {
	Service pricing.LineValue
	Parts   []pricing.LineValue
	Total   decimal.Decimal
}

// Lines decomposes the item into one service line followed by its part lines.
func (i ServiceItem) Lines() []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, 1+len(i.Parts))
	lines = append(lines, pricing.LineItem{Quantity: 1, UnitPrice: i.Price, Discount: i.Discount})
	for _, p := range i.Parts {
		lines = append(lines, pricing.LineItem{Quantity: p.Quantity, UnitPrice: p.UnitPrice, Discount: p.Discount})
	}
	return lines
}

// Value valuates the service line and every part line.
func (i ServiceItem) Value() ItemValue {
	lines := i.Lines()
	v := ItemValue{
		Service: pricing.Valuate(lines[0]),
		Parts:   make([]pricing.LineValue, 0, len(i.Parts)),
	}
	for _, l := range lines[1:] {
		v.Parts = append(v.Parts, pricing.Valuate(l))
	}
	v.Total = v.Service.Total.Add(pricing.Sum(v.Parts))
	return v
}

// Lines returns every priced line of the order.
func (o *ServiceOrder) Lines() []pricing.LineItem {
	var lines []pricing.LineItem
	for _, item := range o.Items {
		lines = append(lines, item.Lines()...)
	}
	return lines
}

// Totals computes the order totals from its current items.
func (o *ServiceOrder) Totals() pricing.Totals {
	return pricing.Totalize(o.Lines(), o.Discount, o.Tax)
}

// ServiceUpdate is a gated change request. Nil fields are left unchanged.
type ServiceUpdate struct {
	Status     *ServiceStatus
	Items      []ServiceItem
	Discount   *pricing.DiscountSpec
	Tax        *pricing.DiscountSpec
	OdometerKm *int
	Notes      *string
}

func (u ServiceUpdate) edits() bool {
	return u.Items != nil || u.Discount != nil || u.Tax != nil || u.OdometerKm != nil || u.Notes != nil
}

// ServiceDecision is the outcome of DecideService.
type ServiceDecision struct {
	Order ServiceOrder
	From  ServiceStatus
	// RecordOdometerKm is set when the vehicle's recorded odometer must be
	// raised to this value along with the order.
	RecordOdometerKm *int
}

// StatusChanged reports whether the decision moves the order to a new status.
func (d ServiceDecision) StatusChanged() bool {
	return d.From != d.Order.Status
}

// DecideService validates upd against current. priorMaxKm is the highest
// odometer value recorded for the vehicle outside this order. It performs
// no I/O.
func DecideService(current ServiceOrder, upd ServiceUpdate, priorMaxKm int) (ServiceDecision, error) {
	next := cloneServiceOrder(current)
	target := current.Status

	if upd.Status != nil {
		target = *upd.Status
		if !current.Status.CanTransitionTo(target) {
			return ServiceDecision{}, &IllegalTransitionError{From: string(current.Status), To: string(target)}
		}
	}

	if upd.edits() {
		if !current.Status.Editable() {
			return ServiceDecision{}, &LockedError{Status: string(current.Status)}
		}
		if upd.Items != nil {
			if len(upd.Items) == 0 {
				return ServiceDecision{}, ErrEmptyItems
			}
			next.Items = cloneServiceItems(upd.Items)
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
		if upd.OdometerKm != nil {
			if *upd.OdometerKm < priorMaxKm {
				return ServiceDecision{}, &OdometerRegressionError{Provided: *upd.OdometerKm, PriorMax: priorMaxKm}
			}
			km := *upd.OdometerKm
			next.OdometerKm = &km
		}
	} else if upd.Status == nil && current.Status.Terminal() {
		return ServiceDecision{}, &LockedError{Status: string(current.Status)}
	}

	if err := pricing.ValidateLines(next.Lines()); err != nil {
		return ServiceDecision{}, err
	}

	next.Status = target
	decision := ServiceDecision{Order: next, From: current.Status}

	if target.RequiresOdometer() {
		if next.OdometerKm == nil {
			return ServiceDecision{}, &MissingRequiredFieldError{Field: "odometer_km"}
		}
		if *next.OdometerKm < priorMaxKm {
			return ServiceDecision{}, &OdometerRegressionError{Provided: *next.OdometerKm, PriorMax: priorMaxKm}
		}
		km := *next.OdometerKm
		decision.RecordOdometerKm = &km
	}

	return decision, nil
}

func cloneServiceOrder(o ServiceOrder) ServiceOrder {
	o.Items = cloneServiceItems(o.Items)
	if o.OdometerKm != nil {
		km := *o.OdometerKm
		o.OdometerKm = &km
	}
	return o
}

func cloneServiceItems(items []ServiceItem) []ServiceItem {
	out := slices.Clone(items)
	for i := range out {
		out[i].Parts = slices.Clone(out[i].Parts)
	}
	return out
}
