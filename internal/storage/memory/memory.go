// Package memory is an in-process implementation of the order, catalog and
// vehicle history collaborators. Every unit of work holds a single lock and
// stages its writes, so a failed unit leaves no trace.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/go-faster/errors"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
)

var (
	_ catalog.Repository           = (*Store)(nil)
	_ order.PurchaseRepository     = (*Store)(nil)
	_ order.ServiceOrderRepository = (*Store)(nil)
	_ maintenance.History          = (*Store)(nil)
)

// Vehicle is the stored vehicle record.
type Vehicle struct {
	ID         string
	Plate      string
	OdometerKm int
}

// Store keeps all state in maps guarded by one mutex.
type Store struct {
	mu            sync.Mutex
	parts         map[string]catalog.Part
	services      map[string]catalog.Service
	vehicles      map[string]Vehicle
	purchases     map[string]order.Purchase
	serviceOrders map[string]order.ServiceOrder
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		parts:         make(map[string]catalog.Part),
		services:      make(map[string]catalog.Service),
		vehicles:      make(map[string]Vehicle),
		purchases:     make(map[string]order.Purchase),
		serviceOrders: make(map[string]order.ServiceOrder),
	}
}

// PutPart inserts or replaces a part.
func (s *Store) PutPart(p catalog.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts[p.ID] = p
}

// PutService inserts or replaces a catalog service.
func (s *Store) PutService(svc catalog.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

// PutVehicle inserts or replaces a vehicle.
func (s *Store) PutVehicle(v Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

// PutPurchase inserts or replaces a procurement order without validation.
func (s *Store) PutPurchase(p order.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases[p.ID] = p
}

// PutServiceOrder inserts or replaces a service order without validation.
func (s *Store) PutServiceOrder(o order.ServiceOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serviceOrders[o.ID] = o
}

// Part returns the part with the given ID.
func (s *Store) Part(id string) (catalog.Part, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[id]
	return p, ok
}

// Vehicle returns the vehicle with the given ID.
func (s *Store) Vehicle(id string) (Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	return v, ok
}

// GetPartsByIDs returns the known parts among ids.
func (s *Store) GetPartsByIDs(_ context.Context, ids []string) ([]catalog.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalog.Part, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.parts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetServicesByIDs returns the known services among ids.
func (s *Store) GetServicesByIDs(_ context.Context, ids []string) ([]catalog.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalog.Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := s.services[id]; ok {
			out = append(out, svc)
		}
	}
	return out, nil
}

// CreatePurchase stores a new procurement order.
func (s *Store) CreatePurchase(_ context.Context, p *order.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.purchases[p.ID]; ok {
		return errors.Errorf("purchase %s already exists", p.ID)
	}
	s.purchases[p.ID] = clonePurchase(*p)
	return nil
}

// GetPurchase returns a copy of the stored procurement order.
func (s *Store) GetPurchase(_ context.Context, id string) (*order.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	out := clonePurchase(p)
	return &out, nil
}

// GetServiceOrder returns a copy of the stored service order.
func (s *Store) GetServiceOrder(_ context.Context, id string) (*order.ServiceOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.serviceOrders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	out := cloneServiceOrder(o)
	return &out, nil
}

// CurrentOdometerKm returns the vehicle's recorded odometer.
func (s *Store) CurrentOdometerKm(_ context.Context, vehicleID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[vehicleID]
	if !ok {
		return 0, maintenance.ErrVehicleNotFound
	}
	return v.OdometerKm, nil
}

// LastDoneKm derives, per maintenance category, the highest odometer of a
// completed or paid service order containing a service of that category.
func (s *Store) LastDoneKm(_ context.Context, vehicleID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicleID]; !ok {
		return nil, maintenance.ErrVehicleNotFound
	}

	last := make(map[string]int)
	for _, o := range s.serviceOrders {
		if o.VehicleID != vehicleID || o.OdometerKm == nil {
			continue
		}
		if o.Status != order.ServiceCompleted && o.Status != order.ServicePaid {
			continue
		}
		for _, item := range o.Items {
			category := s.services[item.ServiceID].MaintenanceCategory
			if category == "" {
				continue
			}
			if km, ok := last[category]; !ok || *o.OdometerKm > km {
				last[category] = *o.OdometerKm
			}
		}
	}
	return last, nil
}

// priorMaxOdometerKm must be called with s.mu held.
func (s *Store) priorMaxOdometerKm(vehicleID, excludeOrderID string, staged map[string]order.ServiceOrder) int {
	prior := s.vehicles[vehicleID].OdometerKm

	orders := maps.Clone(s.serviceOrders)
	maps.Copy(orders, staged)
	for id, o := range orders {
		if id == excludeOrderID || o.VehicleID != vehicleID || o.OdometerKm == nil {
			continue
		}
		if o.Status == order.ServiceCancelled {
			continue
		}
		prior = max(prior, *o.OdometerKm)
	}
	return prior
}

func clonePurchase(p order.Purchase) order.Purchase {
	p.Items = slices.Clone(p.Items)
	return p
}

func cloneServiceOrder(o order.ServiceOrder) order.ServiceOrder {
	o.Items = slices.Clone(o.Items)
	for i := range o.Items {
		o.Items[i].Parts = slices.Clone(o.Items[i].Parts)
	}
	if o.OdometerKm != nil {
		km := *o.OdometerKm
		o.OdometerKm = &km
	}
	return o
}
