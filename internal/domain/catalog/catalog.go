// Package catalog describes the parts and services a workshop sells.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind names the catalog entity a lookup refers to.
type Kind string

const (
	KindPart    Kind = "part"
	KindService Kind = "service"
)

// NotFoundError indicates a referenced catalog entry does not exist.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Part is an inventory item. BuyPrice is the default supplier cost and
// SellPrice the price charged when the part is fitted in a service order.
type Part struct {
	ID        string
	SKU       string
	Name      string
	BuyPrice  decimal.Decimal
	SellPrice decimal.Decimal
	Stock     int
}

// Service is a unit of workshop labor. MaintenanceCategory links the service
// to a recurring maintenance category and may be empty.
type Service struct {
	ID                  string
	Name                string
	Price               decimal.Decimal
	MaintenanceCategory string
}

// Repository defines read operations for the catalog.
type Repository interface {
	GetPartsByIDs(ctx context.Context, ids []string) ([]Part, error)
	GetServicesByIDs(ctx context.Context, ids []string) ([]Service, error)
}

// Index holds catalog entries keyed by ID.
type Index struct {
	Parts    map[string]Part
	Services map[string]Service
}

// Part returns the part with the given ID or a *NotFoundError.
func (x Index) Part(id string) (Part, error) {
	p, ok := x.Parts[id]
	if !ok {
		return Part{}, &NotFoundError{Kind: KindPart, ID: id}
	}
	return p, nil
}

// Service returns the service with the given ID or a *NotFoundError.
func (x Index) Service(id string) (Service, error) {
	s, ok := x.Services[id]
	if !ok {
		return Service{}, &NotFoundError{Kind: KindService, ID: id}
	}
	return s, nil
}

// Load fetches every referenced part and service in one batch each.
func Load(ctx context.Context, repo Repository, partIDs, serviceIDs []string) (Index, error) {
	idx := Index{
		Parts:    make(map[string]Part, len(partIDs)),
		Services: make(map[string]Service, len(serviceIDs)),
	}

	if len(partIDs) > 0 {
		parts, err := repo.GetPartsByIDs(ctx, dedupe(partIDs))
		if err != nil {
			return Index{}, errors.Wrap(err, "get parts")
		}
		for _, p := range parts {
			idx.Parts[p.ID] = p
		}
	}

	if len(serviceIDs) > 0 {
		services, err := repo.GetServicesByIDs(ctx, dedupe(serviceIDs))
		if err != nil {
			return Index{}, errors.Wrap(err, "get services")
		}
		for _, s := range services {
			idx.Services[s.ID] = s
		}
	}

	return idx, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
