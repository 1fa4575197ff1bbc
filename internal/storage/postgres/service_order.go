package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
)

const (
	serviceOrderColumns = `id, vehicle_id, customer_id, status, items,
		discount_mode, discount_value, tax_mode, tax_value, odometer_km, notes,
		created_at, updated_at`

	insertServiceOrderSQL = `INSERT INTO service_orders (` + serviceOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	getServiceOrderSQL = `SELECT ` + serviceOrderColumns + ` FROM service_orders WHERE id = $1`

	lockServiceOrderSQL = getServiceOrderSQL + ` FOR UPDATE`

	saveServiceOrderSQL = `UPDATE service_orders SET status = $2, items = $3,
			discount_mode = $4, discount_value = $5, tax_mode = $6, tax_value = $7,
			odometer_km = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND status = $11`

	// Locking the vehicle row serializes odometer checks per vehicle.
	lockVehicleSQL = `SELECT odometer_km FROM vehicles WHERE id = $1 FOR UPDATE`

	priorMaxOrderKmSQL = `SELECT COALESCE(MAX(odometer_km), 0) FROM service_orders
		WHERE vehicle_id = $1 AND id <> $2 AND status <> 'cancelled'
			AND odometer_km IS NOT NULL`

	recordOdometerSQL = `UPDATE vehicles SET odometer_km = GREATEST(odometer_km, $2) WHERE id = $1`
)

// foreignKeyViolation is the SQLSTATE of a failed REFERENCES check.
const foreignKeyViolation = "23503"

var _ order.ServiceOrderRepository = (*ServiceOrderRepository)(nil)

// ServiceOrderRepository implements order.ServiceOrderRepository backed by
// PostgreSQL.
type ServiceOrderRepository struct {
	pool *pgxpool.Pool
}

// NewServiceOrderRepository returns a ServiceOrderRepository that uses the
// given pool.
func NewServiceOrderRepository(pool *pgxpool.Pool) *ServiceOrderRepository {
	return &ServiceOrderRepository{pool: pool}
}

// GetServiceOrder loads a service order by ID.
func (r *ServiceOrderRepository) GetServiceOrder(ctx context.Context, id string) (*order.ServiceOrder, error) {
	return scanServiceOrder(r.pool.QueryRow(ctx, getServiceOrderSQL, id))
}

// InServiceTx runs fn inside a database transaction.
func (r *ServiceOrderRepository) InServiceTx(ctx context.Context, fn func(ctx context.Context, tx order.ServiceTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &serviceTx{tx: tx})
	})
}

type serviceTx struct {
	tx pgx.Tx
}

func (t *serviceTx) InsertServiceOrder(ctx context.Context, o *order.ServiceOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal service items: %w", err)
	}
	_, err = t.tx.Exec(ctx, insertServiceOrderSQL,
		o.ID, o.VehicleID, o.CustomerID, string(o.Status), items,
		string(o.Discount.Mode), o.Discount.Value, string(o.Tax.Mode), o.Tax.Value,
		o.OdometerKm, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return maintenance.ErrVehicleNotFound
		}
		return fmt.Errorf("inserting service order %q: %w", o.ID, err)
	}
	return nil
}

func (t *serviceTx) LockServiceOrder(ctx context.Context, id string) (*order.ServiceOrder, error) {
	return scanServiceOrder(t.tx.QueryRow(ctx, lockServiceOrderSQL, id))
}

func (t *serviceTx) SaveServiceOrder(ctx context.Context, o *order.ServiceOrder, expected order.ServiceStatus) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal service items: %w", err)
	}
	tag, err := t.tx.Exec(ctx, saveServiceOrderSQL,
		o.ID, string(o.Status), items,
		string(o.Discount.Mode), o.Discount.Value, string(o.Tax.Mode), o.Tax.Value,
		o.OdometerKm, o.Notes, o.UpdatedAt, string(expected),
	)
	if err != nil {
		return fmt.Errorf("saving service order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrStatusConflict
	}
	return nil
}

func (t *serviceTx) PriorMaxOdometerKm(ctx context.Context, vehicleID, excludeOrderID string) (int, error) {
	var vehicleKm int
	if err := t.tx.QueryRow(ctx, lockVehicleSQL, vehicleID).Scan(&vehicleKm); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("locking vehicle %q: %w", vehicleID, err)
		}
	}

	var orderKm int
	if err := t.tx.QueryRow(ctx, priorMaxOrderKmSQL, vehicleID, excludeOrderID).Scan(&orderKm); err != nil {
		return 0, fmt.Errorf("getting prior odometer of vehicle %q: %w", vehicleID, err)
	}
	return max(vehicleKm, orderKm), nil
}

func (t *serviceTx) RecordOdometer(ctx context.Context, vehicleID string, km int) error {
	tag, err := t.tx.Exec(ctx, recordOdometerSQL, vehicleID, km)
	if err != nil {
		return fmt.Errorf("recording odometer of vehicle %q: %w", vehicleID, err)
	}
	if tag.RowsAffected() == 0 {
		return maintenance.ErrVehicleNotFound
	}
	return nil
}

func scanServiceOrder(row pgx.Row) (*order.ServiceOrder, error) {
	var (
		o                     order.ServiceOrder
		status                string
		items                 []byte
		discountMode, taxMode string
		discountValue         decimal.Decimal
		taxValue              decimal.Decimal
	)
	err := row.Scan(&o.ID, &o.VehicleID, &o.CustomerID, &status, &items,
		&discountMode, &discountValue, &taxMode, &taxValue,
		&o.OdometerKm, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("scanning service order: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal service items: %w", err)
	}
	o.Status = order.ServiceStatus(status)
	o.Discount = discountFromColumns(discountMode, discountValue)
	o.Tax = discountFromColumns(taxMode, taxValue)
	return &o, nil
}
