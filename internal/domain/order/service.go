package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
	"github.com/invsblmen/pos-bengkel/internal/domain/pricing"
)

// PurchaseItemInput references a part to procure. UnitPrice overrides the
// catalog buy price when set.
type PurchaseItemInput struct {
	PartID    string
	Quantity  int
	UnitPrice *decimal.Decimal
	Discount  pricing.DiscountSpec
}

// CreatePurchaseRequest holds the input for creating a procurement order.
type CreatePurchaseRequest struct {
	SupplierID           string
	Items                []PurchaseItemInput
	Discount             pricing.DiscountSpec
	Tax                  pricing.DiscountSpec
	Notes                string
	ExpectedDeliveryDate *time.Time
}

// UpdatePurchaseRequest holds a gated procurement order change. Nil fields
// are left unchanged.
type UpdatePurchaseRequest struct {
	Status               *PurchaseStatus
	Items                []PurchaseItemInput
	Discount             *pricing.DiscountSpec
	Tax                  *pricing.DiscountSpec
	Notes                *string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
}

// ServicePartInput references a part fitted during a service.
type ServicePartInput struct {
	PartID   string
	Quantity int
	Discount pricing.DiscountSpec
}

// ServiceItemInput references a catalog service and its parts.
type ServiceItemInput struct {
	ServiceID string
	Discount  pricing.DiscountSpec
	Parts     []ServicePartInput
}

// CreateServiceOrderRequest holds the input for opening a service order.
type CreateServiceOrderRequest struct {
	VehicleID  string
	CustomerID string
	Items      []ServiceItemInput
	Discount   pricing.DiscountSpec
	Tax        pricing.DiscountSpec
	OdometerKm *int
	Notes      string
}

// UpdateServiceOrderRequest holds a gated service order change. Nil fields
// are left unchanged.
type UpdateServiceOrderRequest struct {
	Status     *ServiceStatus
	Items      []ServiceItemInput
	Discount   *pricing.DiscountSpec
	Tax        *pricing.DiscountSpec
	OdometerKm *int
	Notes      *string
}

// QuoteRequest holds draft service items to price.
type QuoteRequest struct {
	Items    []ServiceItemInput
	Discount pricing.DiscountSpec
	Tax      pricing.DiscountSpec
}

// Quote is the priced form of a QuoteRequest.
type Quote struct {
	Items  []ServiceItem
	Values []ItemValue
	Totals pricing.Totals
}

// Service runs order operations: it prices items from the catalog, decides
// transitions and applies their effects through the repositories.
type Service struct {
	catalog   catalog.Repository
	purchases PurchaseRepository
	services  ServiceOrderRepository

	now   func() time.Time
	newID func() string
}

// NewService creates an order Service with the required collaborators.
func NewService(
	catalogRepo catalog.Repository,
	purchases PurchaseRepository,
	services ServiceOrderRepository,
) *Service {
	return &Service{
		catalog:   catalogRepo,
		purchases: purchases,
		services:  services,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Quote prices service items without persisting anything.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	items, err := s.resolveServiceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	o := ServiceOrder{Items: items, Discount: req.Discount.Sanitize(), Tax: req.Tax.Sanitize()}
	if err := pricing.ValidateLines(o.Lines()); err != nil {
		return nil, err
	}

	q := &Quote{Items: items, Values: make([]ItemValue, len(items)), Totals: o.Totals()}
	for i, item := range items {
		q.Values[i] = item.Value()
	}
	return q, nil
}

// CreatePurchase prices and stores a new pending procurement order.
func (s *Service) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*Purchase, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	items, err := s.resolvePurchaseItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Purchase{
		ID:                   s.newID(),
		SupplierID:           req.SupplierID,
		Status:               PurchasePending,
		Items:                items,
		Discount:             req.Discount.Sanitize(),
		Tax:                  req.Tax.Sanitize(),
		Notes:                req.Notes,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := pricing.ValidateLines(p.Lines()); err != nil {
		return nil, err
	}

	if err := s.purchases.CreatePurchase(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create purchase")
	}
	return p, nil
}

// GetPurchase returns a stored procurement order.
func (s *Service) GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	return s.purchases.GetPurchase(ctx, id)
}

// UpdatePurchase applies a gated change. The status change and the stock
// increments it implies are committed together or not at all.
func (s *Service) UpdatePurchase(ctx context.Context, id string, req UpdatePurchaseRequest) (*PurchaseDecision, error) {
	upd := PurchaseUpdate{
		Status:               req.Status,
		Discount:             req.Discount,
		Tax:                  req.Tax,
		Notes:                req.Notes,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		ActualDeliveryDate:   req.ActualDeliveryDate,
	}
	if req.Items != nil {
		items, err := s.resolvePurchaseItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		upd.Items = items
	}

	var decision PurchaseDecision
	err := s.purchases.InPurchaseTx(ctx, func(ctx context.Context, tx PurchaseTx) error {
		current, err := tx.LockPurchase(ctx, id)
		if err != nil {
			return err
		}

		decision, err = DecidePurchase(*current, upd)
		if err != nil {
			return err
		}
		decision.Order.UpdatedAt = s.now()

		if err := tx.SavePurchase(ctx, &decision.Order, decision.From); err != nil {
			return errors.Wrap(err, "save purchase")
		}
		for _, adj := range decision.Adjustments {
			if err := tx.IncrementStock(ctx, adj.PartID, adj.Quantity); err != nil {
				return errors.Wrapf(err, "increment stock of part %s", adj.PartID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// CreateServiceOrder prices and stores a new pending service order.
func (s *Service) CreateServiceOrder(ctx context.Context, req CreateServiceOrderRequest) (*ServiceOrder, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	items, err := s.resolveServiceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &ServiceOrder{
		ID:         s.newID(),
		VehicleID:  req.VehicleID,
		CustomerID: req.CustomerID,
		Status:     ServicePending,
		Items:      items,
		Discount:   req.Discount.Sanitize(),
		Tax:        req.Tax.Sanitize(),
		OdometerKm: req.OdometerKm,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := pricing.ValidateLines(o.Lines()); err != nil {
		return nil, err
	}

	err = s.services.InServiceTx(ctx, func(ctx context.Context, tx ServiceTx) error {
		if o.OdometerKm != nil {
			prior, err := tx.PriorMaxOdometerKm(ctx, o.VehicleID, "")
			if err != nil {
				return errors.Wrap(err, "prior odometer")
			}
			if *o.OdometerKm < prior {
				return &OdometerRegressionError{Provided: *o.OdometerKm, PriorMax: prior}
			}
		}
		return tx.InsertServiceOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetServiceOrder returns a stored service order.
func (s *Service) GetServiceOrder(ctx context.Context, id string) (*ServiceOrder, error) {
	return s.services.GetServiceOrder(ctx, id)
}

// UpdateServiceOrder applies a gated change. Completing or paying an order
// raises the vehicle's recorded odometer in the same unit of work.
func (s *Service) UpdateServiceOrder(ctx context.Context, id string, req UpdateServiceOrderRequest) (*ServiceDecision, error) {
	upd := ServiceUpdate{
		Status:     req.Status,
		Discount:   req.Discount,
		Tax:        req.Tax,
		OdometerKm: req.OdometerKm,
		Notes:      req.Notes,
	}
	if req.Items != nil {
		items, err := s.resolveServiceItems(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		upd.Items = items
	}

	var decision ServiceDecision
	err := s.services.InServiceTx(ctx, func(ctx context.Context, tx ServiceTx) error {
		current, err := tx.LockServiceOrder(ctx, id)
		if err != nil {
			return err
		}

		prior, err := tx.PriorMaxOdometerKm(ctx, current.VehicleID, current.ID)
		if err != nil {
			return errors.Wrap(err, "prior odometer")
		}

		decision, err = DecideService(*current, upd, prior)
		if err != nil {
			return err
		}
		decision.Order.UpdatedAt = s.now()

		if err := tx.SaveServiceOrder(ctx, &decision.Order, decision.From); err != nil {
			return errors.Wrap(err, "save service order")
		}
		if decision.RecordOdometerKm != nil {
			if err := tx.RecordOdometer(ctx, current.VehicleID, *decision.RecordOdometerKm); err != nil {
				return errors.Wrap(err, "record odometer")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

func (s *Service) resolvePurchaseItems(ctx context.Context, inputs []PurchaseItemInput) ([]PurchaseItem, error) {
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.PartID
	}
	idx, err := catalog.Load(ctx, s.catalog, ids, nil)
	if err != nil {
		return nil, err
	}

	items := make([]PurchaseItem, 0, len(inputs))
	for _, in := range inputs {
		part, err := idx.Part(in.PartID)
		if err != nil {
			return nil, err
		}
		price := part.BuyPrice
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		items = append(items, PurchaseItem{
			PartID:    part.ID,
			Quantity:  in.Quantity,
			UnitPrice: price,
			Discount:  in.Discount.Sanitize(),
		})
	}
	return items, nil
}

func (s *Service) resolveServiceItems(ctx context.Context, inputs []ServiceItemInput) ([]ServiceItem, error) {
	var partIDs, serviceIDs []string
	for _, in := range inputs {
		serviceIDs = append(serviceIDs, in.ServiceID)
		for _, p := range in.Parts {
			partIDs = append(partIDs, p.PartID)
		}
	}
	idx, err := catalog.Load(ctx, s.catalog, partIDs, serviceIDs)
	if err != nil {
		return nil, err
	}

	items := make([]ServiceItem, 0, len(inputs))
	for _, in := range inputs {
		svc, err := idx.Service(in.ServiceID)
		if err != nil {
			return nil, err
		}
		item := ServiceItem{
			ServiceID: svc.ID,
			Price:     svc.Price,
			Discount:  in.Discount.Sanitize(),
		}
		for _, pin := range in.Parts {
			part, err := idx.Part(pin.PartID)
			if err != nil {
				return nil, err
			}
			item.Parts = append(item.Parts, ServicePart{
				PartID:    part.ID,
				Quantity:  pin.Quantity,
				UnitPrice: part.SellPrice,
				Discount:  pin.Discount.Sanitize(),
			})
		}
		items = append(items, item)
	}
	return items, nil
}
