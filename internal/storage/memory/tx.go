package memory

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
)

// InPurchaseTx runs fn under the store lock and commits its staged writes
// only when fn succeeds.
func (s *Store) InPurchaseTx(ctx context.Context, fn func(ctx context.Context, tx order.PurchaseTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &purchaseTx{
		s:         s,
		purchases: make(map[string]order.Purchase),
		stock:     make(map[string]int),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, p := range tx.purchases {
		s.purchases[id] = p
	}
	for id, qty := range tx.stock {
		part := s.parts[id]
		part.Stock += qty
		s.parts[id] = part
	}
	return nil
}

type purchaseTx struct {
	s         *Store
	purchases map[string]order.Purchase
	stock     map[string]int
}

func (tx *purchaseTx) LockPurchase(_ context.Context, id string) (*order.Purchase, error) {
	p, ok := tx.purchases[id]
	if !ok {
		p, ok = tx.s.purchases[id]
	}
	if !ok {
		return nil, order.ErrNotFound
	}
	out := clonePurchase(p)
	return &out, nil
}

func (tx *purchaseTx) SavePurchase(_ context.Context, p *order.Purchase, expected order.PurchaseStatus) error {
	stored, ok := tx.purchases[p.ID]
	if !ok {
		stored, ok = tx.s.purchases[p.ID]
	}
	if !ok {
		return order.ErrNotFound
	}
	if stored.Status != expected {
		return order.ErrStatusConflict
	}
	tx.purchases[p.ID] = clonePurchase(*p)
	return nil
}

func (tx *purchaseTx) IncrementStock(_ context.Context, partID string, quantity int) error {
	if _, ok := tx.s.parts[partID]; !ok {
		return &catalog.NotFoundError{Kind: catalog.KindPart, ID: partID}
	}
	tx.stock[partID] += quantity
	return nil
}

// InServiceTx runs fn under the store lock and commits its staged writes
// only when fn succeeds.
func (s *Store) InServiceTx(ctx context.Context, fn func(ctx context.Context, tx order.ServiceTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &serviceTx{
		s:        s,
		orders:   make(map[string]order.ServiceOrder),
		odometer: make(map[string]int),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, o := range tx.orders {
		s.serviceOrders[id] = o
	}
	for id, km := range tx.odometer {
		v := s.vehicles[id]
		v.OdometerKm = max(v.OdometerKm, km)
		s.vehicles[id] = v
	}
	return nil
}

type serviceTx struct {
	s        *Store
	orders   map[string]order.ServiceOrder
	odometer map[string]int
}

func (tx *serviceTx) lookup(id string) (order.ServiceOrder, bool) {
	if o, ok := tx.orders[id]; ok {
		return o, true
	}
	o, ok := tx.s.serviceOrders[id]
	return o, ok
}

func (tx *serviceTx) InsertServiceOrder(_ context.Context, o *order.ServiceOrder) error {
	if _, ok := tx.s.vehicles[o.VehicleID]; !ok {
		return maintenance.ErrVehicleNotFound
	}
	if _, ok := tx.lookup(o.ID); ok {
		return errors.Errorf("service order %s already exists", o.ID)
	}
	tx.orders[o.ID] = cloneServiceOrder(*o)
	return nil
}

func (tx *serviceTx) LockServiceOrder(_ context.Context, id string) (*order.ServiceOrder, error) {
	o, ok := tx.lookup(id)
	if !ok {
		return nil, order.ErrNotFound
	}
	out := cloneServiceOrder(o)
	return &out, nil
}

func (tx *serviceTx) SaveServiceOrder(_ context.Context, o *order.ServiceOrder, expected order.ServiceStatus) error {
	stored, ok := tx.lookup(o.ID)
	if !ok {
		return order.ErrNotFound
	}
	if stored.Status != expected {
		return order.ErrStatusConflict
	}
	tx.orders[o.ID] = cloneServiceOrder(*o)
	return nil
}

func (tx *serviceTx) PriorMaxOdometerKm(_ context.Context, vehicleID, excludeOrderID string) (int, error) {
	prior := tx.s.priorMaxOdometerKm(vehicleID, excludeOrderID, tx.orders)
	if km, ok := tx.odometer[vehicleID]; ok {
		prior = max(prior, km)
	}
	return prior, nil
}

func (tx *serviceTx) RecordOdometer(_ context.Context, vehicleID string, km int) error {
	if _, ok := tx.s.vehicles[vehicleID]; !ok {
		return maintenance.ErrVehicleNotFound
	}
	tx.odometer[vehicleID] = max(tx.odometer[vehicleID], km)
	return nil
}
