package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
)

const (
	getPartsByIDsSQL = `SELECT id, sku, name, buy_price, sell_price, stock_quantity
		FROM parts WHERE id = ANY($1)`

	getServicesByIDsSQL = `SELECT id, name, price, maintenance_category
		FROM services WHERE id = ANY($1)`

	upsertPartSQL = `INSERT INTO parts (id, sku, name, buy_price, sell_price, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name,
			buy_price = EXCLUDED.buy_price, sell_price = EXCLUDED.sell_price`

	upsertServiceSQL = `INSERT INTO services (id, name, price, maintenance_category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
			maintenance_category = EXCLUDED.maintenance_category`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// GetPartsByIDs returns parts matching any of the given IDs.
func (r *CatalogRepository) GetPartsByIDs(ctx context.Context, ids []string) ([]catalog.Part, error) {
	rows, err := r.pool.Query(ctx, getPartsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting parts by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanPart)
}

// GetServicesByIDs returns services matching any of the given IDs.
func (r *CatalogRepository) GetServicesByIDs(ctx context.Context, ids []string) ([]catalog.Service, error) {
	rows, err := r.pool.Query(ctx, getServicesByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting services by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanService)
}

// UpsertPart inserts a part or refreshes its catalog fields. Stock of an
// existing part is left as is.
func (r *CatalogRepository) UpsertPart(ctx context.Context, p catalog.Part) error {
	_, err := r.pool.Exec(ctx, upsertPartSQL, p.ID, p.SKU, p.Name, p.BuyPrice, p.SellPrice, p.Stock)
	if err != nil {
		return fmt.Errorf("upserting part %q: %w", p.ID, err)
	}
	return nil
}

// UpsertService inserts or refreshes a catalog service.
func (r *CatalogRepository) UpsertService(ctx context.Context, s catalog.Service) error {
	_, err := r.pool.Exec(ctx, upsertServiceSQL, s.ID, s.Name, s.Price, s.MaintenanceCategory)
	if err != nil {
		return fmt.Errorf("upserting service %q: %w", s.ID, err)
	}
	return nil
}

func scanPart(row pgx.CollectableRow) (catalog.Part, error) {
	var p catalog.Part
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.BuyPrice, &p.SellPrice, &p.Stock)
	return p, err
}

func scanService(row pgx.CollectableRow) (catalog.Service, error) {
	var s catalog.Service
	err := row.Scan(&s.ID, &s.Name, &s.Price, &s.MaintenanceCategory)
	return s, err
}
