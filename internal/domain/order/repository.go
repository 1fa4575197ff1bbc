package order

import "context"

// Inventory adjusts part stock.
type Inventory interface {
	IncrementStock(ctx context.Context, partID string, quantity int) error
}

// PurchaseRepository persists procurement orders.
type PurchaseRepository interface {
	CreatePurchase(ctx context.Context, p *Purchase) error
	GetPurchase(ctx context.Context, id string) (*Purchase, error)
	// InPurchaseTx runs fn as one unit of work. When fn returns an error every
	// write made through tx is discarded.
	InPurchaseTx(ctx context.Context, fn func(ctx context.Context, tx PurchaseTx) error) error
}

// PurchaseTx is the set of writes a purchase update may perform atomically.
type PurchaseTx interface {
	Inventory
	// LockPurchase loads the order and holds it until the unit of work ends.
	LockPurchase(ctx context.Context, id string) (*Purchase, error)
	// SavePurchase stores p if its persisted status still equals expected,
	// and returns ErrStatusConflict otherwise.
	SavePurchase(ctx context.Context, p *Purchase, expected PurchaseStatus) error
}

// ServiceOrderRepository persists service orders.
type ServiceOrderRepository interface {
	GetServiceOrder(ctx context.Context, id string) (*ServiceOrder, error)
	InServiceTx(ctx context.Context, fn func(ctx context.Context, tx ServiceTx) error) error
}

// ServiceTx is the set of reads and writes a service order change performs
// atomically.
type ServiceTx interface {
	InsertServiceOrder(ctx context.Context, o *ServiceOrder) error
	LockServiceOrder(ctx context.Context, id string) (*ServiceOrder, error)
	SaveServiceOrder(ctx context.Context, o *ServiceOrder, expected ServiceStatus) error
	// PriorMaxOdometerKm returns the highest odometer known for the vehicle,
	// from its own record and from every service order except excludeOrderID.
	PriorMaxOdometerKm(ctx context.Context, vehicleID, excludeOrderID string) (int, error)
	// RecordOdometer raises the vehicle's recorded odometer to km if it is lower.
	RecordOdometer(ctx context.Context, vehicleID string, km int) error
}
