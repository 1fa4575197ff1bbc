package handler

import (
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

// Request decoding.

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Decimal{}, errors.New("expected number")
	}
}

func decodeDecimalPtr(d *jx.Decoder) (*decimal.Decimal, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := decodeDecimal(d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeTime(d *jx.Decoder) (*time.Time, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse time %q", s)
	}
	return &t, nil
}

func decodeIntPtr(d *jx.Decoder) (*int, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Int()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeStrPtr(d *jx.Decoder) (*string, error) {
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// decodeDiscount reads {"mode": "...", "value": n}. A bare number is a
// fixed amount.
func decodeDiscount(d *jx.Decoder) (pricing.DiscountSpec, error) {
	var spec pricing.DiscountSpec
	switch d.Next() {
	case jx.Null:
		return pricing.NoDiscount, d.Null()
	case jx.Number, jx.String:
		v, err := decodeDecimal(d)
		if err != nil {
			return spec, err
		}
		return pricing.DiscountSpec{Mode: pricing.ModeFixed, Value: v}.Sanitize(), nil
	}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "mode":
			s, err := d.Str()
			spec.Mode = pricing.ParseMode(s)
			return err
		case "value":
			v, err := decodeDecimal(d)
			spec.Value = v
			return err
		default:
			return d.Skip()
		}
	})
	return spec.Sanitize(), err
}

func decodeDiscountPtr(d *jx.Decoder) (*pricing.DiscountSpec, error) {
	spec, err := decodeDiscount(d)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func decodePurchaseItems(d *jx.Decoder) ([]order.PurchaseItemInput, error) {
	items := []order.PurchaseItemInput{}
	err := d.Arr(func(d *jx.Decoder) error {
		var item order.PurchaseItemInput
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "part_id":
				item.PartID, err = d.Str()
			case "quantity":
				item.Quantity, err = d.Int()
			case "unit_price":
				item.UnitPrice, err = decodeDecimalPtr(d)
			case "discount":
				item.Discount, err = decodeDiscount(d)
			default:
				err = d.Skip()
			}
			return err
		})
		items = append(items, item)
		return err
	})
	return items, err
}

func decodeServiceItems(d *jx.Decoder) ([]order.ServiceItemInput, error) {
	items := []order.ServiceItemInput{}
	err := d.Arr(func(d *jx.Decoder) error {
		var item order.ServiceItemInput
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "service_id":
				item.ServiceID, err = d.Str()
			case "discount":
				item.Discount, err = decodeDiscount(d)
			case "parts":
				item.Parts, err = decodeServiceParts(d)
			default:
				err = d.Skip()
			}
			return err
		})
		items = append(items, item)
		return err
	})
	return items, err
}

func decodeServiceParts(d *jx.Decoder) ([]order.ServicePartInput, error) {
	var parts []order.ServicePartInput
	err := d.Arr(func(d *jx.Decoder) error {
		var part order.ServicePartInput
		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "part_id":
				part.PartID, err = d.Str()
			case "quantity":
				part.Quantity, err = d.Int()
			case "discount":
				part.Discount, err = decodeDiscount(d)
			default:
				err = d.Skip()
			}
			return err
		})
		parts = append(parts, part)
		return err
	})
	return parts, err
}

func decodeCreatePurchase(data []byte) (order.CreatePurchaseRequest, error) {
	var req order.CreatePurchaseRequest
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "supplier_id":
			req.SupplierID, err = d.Str()
		case "items":
			req.Items, err = decodePurchaseItems(d)
		case "discount":
			req.Discount, err = decodeDiscount(d)
		case "tax":
			req.Tax, err = decodeDiscount(d)
		case "notes":
			req.Notes, err = d.Str()
		case "expected_delivery_date":
			req.ExpectedDeliveryDate, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return req, err
}

func decodeUpdatePurchase(data []byte) (order.UpdatePurchaseRequest, error) {
	var req order.UpdatePurchaseRequest
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "status":
			var s string
			if s, err = d.Str(); err != nil {
				break
			}
			status := order.PurchaseStatus(s)
			if !status.Valid() {
				return errors.Errorf("unknown status %q", s)
			}
			req.Status = &status
		case "items":
			req.Items, err = decodePurchaseItems(d)
		case "discount":
			req.Discount, err = decodeDiscountPtr(d)
		case "tax":
			req.Tax, err = decodeDiscountPtr(d)
		case "notes":
			req.Notes, err = decodeStrPtr(d)
		case "expected_delivery_date":
			req.ExpectedDeliveryDate, err = decodeTime(d)
		case "actual_delivery_date":
			req.ActualDeliveryDate, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return req, err
}

func decodeCreateServiceOrder(data []byte) (order.CreateServiceOrderRequest, error) {
	var req order.CreateServiceOrderRequest
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "vehicle_id":
			req.VehicleID, err = d.Str()
		case "customer_id":
			req.CustomerID, err = d.Str()
		case "items":
			req.Items, err = decodeServiceItems(d)
		case "discount":
			req.Discount, err = decodeDiscount(d)
		case "tax":
			req.Tax, err = decodeDiscount(d)
		case "odometer_km":
			req.OdometerKm, err = decodeIntPtr(d)
		case "notes":
			req.Notes, err = d.Str()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return req, err
}

func decodeUpdateServiceOrder(data []byte) (order.UpdateServiceOrderRequest, error) {
	var req order.UpdateServiceOrderRequest
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "status":
			var s string
			if s, err = d.Str(); err != nil {
				break
			}
			status := order.ServiceStatus(s)
			if !status.Valid() {
				return errors.Errorf("unknown status %q", s)
			}
			req.Status = &status
		case "items":
			req.Items, err = decodeServiceItems(d)
		case "discount":
			req.Discount, err = decodeDiscountPtr(d)
		case "tax":
			req.Tax, err = decodeDiscountPtr(d)
		case "odometer_km":
			req.OdometerKm, err = decodeIntPtr(d)
		case "notes":
			req.Notes, err = decodeStrPtr(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return req, err
}

func decodeQuote(data []byte) (order.QuoteRequest, error) {
	var req order.QuoteRequest
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "items":
			req.Items, err = decodeServiceItems(d)
		case "discount":
			req.Discount, err = decodeDiscount(d)
		case "tax":
			req.Tax, err = decodeDiscount(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return req, err
}

// Response encoding. Money is written as an exact JSON number.

func encodeMoney(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

func encodeMoneyField(e *jx.Encoder, name string, v decimal.Decimal) {
	e.FieldStart(name)
	encodeMoney(e, v)
}

func encodeTimeField(e *jx.Encoder, name string, t *time.Time) {
	e.FieldStart(name)
	if t == nil {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeDiscount(e *jx.Encoder, name string, spec pricing.DiscountSpec) {
	e.FieldStart(name)
	e.ObjStart()
	e.FieldStart("mode")
	e.Str(string(spec.Mode))
	encodeMoneyField(e, "value", spec.Value)
	e.ObjEnd()
}

func encodeLineValue(e *jx.Encoder, v pricing.LineValue) {
	encodeMoneyField(e, "subtotal", v.Subtotal)
	encodeMoneyField(e, "discount_amount", v.DiscountAmount)
	encodeMoneyField(e, "total", v.Total)
}

func encodeTotals(e *jx.Encoder, t pricing.Totals) {
	e.FieldStart("totals")
	e.ObjStart()
	encodeMoneyField(e, "items_subtotal", t.ItemsSubtotal)
	encodeMoneyField(e, "discount_amount", t.DiscountAmount)
	encodeMoneyField(e, "after_discount", t.AfterDiscount)
	encodeMoneyField(e, "tax_amount", t.TaxAmount)
	encodeMoneyField(e, "grand_total", t.GrandTotal)
	e.ObjEnd()
}

func encodePurchase(e *jx.Encoder, p *order.Purchase, adjustments []order.StockAdjustment) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("supplier_id")
	e.Str(p.SupplierID)
	e.FieldStart("status")
	e.Str(string(p.Status))

	e.FieldStart("items")
	e.ArrStart()
	for _, item := range p.Items {
		e.ObjStart()
		e.FieldStart("part_id")
		e.Str(item.PartID)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		encodeMoneyField(e, "unit_price", item.UnitPrice)
		encodeDiscount(e, "discount", item.Discount)
		encodeLineValue(e, pricing.Valuate(item.Line()))
		e.ObjEnd()
	}
	e.ArrEnd()

	encodeDiscount(e, "discount", p.Discount)
	encodeDiscount(e, "tax", p.Tax)
	e.FieldStart("notes")
	e.Str(p.Notes)
	encodeTimeField(e, "expected_delivery_date", p.ExpectedDeliveryDate)
	encodeTimeField(e, "actual_delivery_date", p.ActualDeliveryDate)
	encodeTimeField(e, "created_at", &p.CreatedAt)
	encodeTimeField(e, "updated_at", &p.UpdatedAt)
	encodeTotals(e, p.Totals())

	if adjustments != nil {
		e.FieldStart("stock_adjustments")
		e.ArrStart()
		for _, adj := range adjustments {
			e.ObjStart()
			e.FieldStart("part_id")
			e.Str(adj.PartID)
			e.FieldStart("quantity")
			e.Int(adj.Quantity)
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

func encodeServiceItems(e *jx.Encoder, items []order.ServiceItem) {
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range items {
		v := item.Value()
		e.ObjStart()
		e.FieldStart("service_id")
		e.Str(item.ServiceID)
		encodeMoneyField(e, "price", item.Price)
		encodeDiscount(e, "discount", item.Discount)
		encodeLineValue(e, v.Service)

		e.FieldStart("parts")
		e.ArrStart()
		for i, part := range item.Parts {
			e.ObjStart()
			e.FieldStart("part_id")
			e.Str(part.PartID)
			e.FieldStart("quantity")
			e.Int(part.Quantity)
			encodeMoneyField(e, "unit_price", part.UnitPrice)
			encodeDiscount(e, "discount", part.Discount)
			encodeLineValue(e, v.Parts[i])
			e.ObjEnd()
		}
		e.ArrEnd()

		encodeMoneyField(e, "item_total", v.Total)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func encodeServiceOrder(e *jx.Encoder, o *order.ServiceOrder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("vehicle_id")
	e.Str(o.VehicleID)
	e.FieldStart("customer_id")
	e.Str(o.CustomerID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("odometer_km")
	if o.OdometerKm == nil {
		e.Null()
	} else {
		e.Int(*o.OdometerKm)
	}
	encodeServiceItems(e, o.Items)
	encodeDiscount(e, "discount", o.Discount)
	encodeDiscount(e, "tax", o.Tax)
	e.FieldStart("notes")
	e.Str(o.Notes)
	encodeTimeField(e, "created_at", &o.CreatedAt)
	encodeTimeField(e, "updated_at", &o.UpdatedAt)
	encodeTotals(e, o.Totals())
	e.ObjEnd()
}

func encodeQuote(e *jx.Encoder, q *order.Quote) {
	e.ObjStart()
	encodeServiceItems(e, q.Items)
	encodeTotals(e, q.Totals)
	e.ObjEnd()
}

func encodeInsights(e *jx.Encoder, name string, insights []maintenance.Insight) {
	e.FieldStart(name)
	e.ArrStart()
	for _, in := range insights {
		e.ObjStart()
		e.FieldStart("key")
		e.Str(in.Key)
		e.FieldStart("title")
		e.Str(in.Title)
		e.FieldStart("interval_km")
		e.Int(in.IntervalKm)
		e.FieldStart("last_done_km")
		if in.LastDoneKm == nil {
			e.Null()
		} else {
			e.Int(*in.LastDoneKm)
		}
		e.FieldStart("since_km")
		e.Int(in.SinceKm)
		e.FieldStart("due_in_km")
		e.Int(in.DueInKm)
		e.FieldStart("is_due")
		e.Bool(in.IsDue)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func encodeRecommendation(e *jx.Encoder, vehicleID string, km int, rec maintenance.Recommendation) {
	e.ObjStart()
	e.FieldStart("vehicle_id")
	e.Str(vehicleID)
	e.FieldStart("current_km")
	e.Int(km)
	encodeInsights(e, "due", rec.Due)
	encodeInsights(e, "upcoming", rec.Upcoming)
	e.ObjEnd()
}

// parseKm returns -1 for anything that is not a non-negative integer.
func parseKm(s string) int {
	km, err := strconv.Atoi(s)
	if err != nil || km < 0 {
		return -1
	}
	return km
}
