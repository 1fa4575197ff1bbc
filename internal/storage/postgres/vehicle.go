package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invsblmen/pos-bengkel/internal/domain/maintenance"
)

const (
	getVehicleOdometerSQL = `SELECT odometer_km FROM vehicles WHERE id = $1`

	lastDoneKmSQL = `SELECT s.maintenance_category, MAX(o.odometer_km)
		FROM service_orders o
		CROSS JOIN LATERAL jsonb_array_elements(o.items) AS item
		JOIN services s ON s.id = item->>'service_id'
		WHERE o.vehicle_id = $1
			AND o.status IN ('completed', 'paid')
			AND o.odometer_km IS NOT NULL
			AND s.maintenance_category <> ''
		GROUP BY s.maintenance_category`

	vehicleExistsSQL = `SELECT EXISTS(SELECT 1 FROM vehicles WHERE id = $1)`

	upsertVehicleSQL = `INSERT INTO vehicles (id, plate, odometer_km) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET plate = EXCLUDED.plate,
			odometer_km = GREATEST(vehicles.odometer_km, EXCLUDED.odometer_km)`
)

var _ maintenance.History = (*VehicleRepository)(nil)

// VehicleRepository implements maintenance.History backed by PostgreSQL.
type VehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a VehicleRepository that uses the given pool.
func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

// CurrentOdometerKm returns the vehicle's recorded odometer.
func (r *VehicleRepository) CurrentOdometerKm(ctx context.Context, vehicleID string) (int, error) {
	var km int
	if err := r.pool.QueryRow(ctx, getVehicleOdometerSQL, vehicleID).Scan(&km); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, maintenance.ErrVehicleNotFound
		}
		return 0, fmt.Errorf("getting odometer of vehicle %q: %w", vehicleID, err)
	}
	return km, nil
}

// LastDoneKm returns the highest completed-order odometer per maintenance
// category.
func (r *VehicleRepository) LastDoneKm(ctx context.Context, vehicleID string) (map[string]int, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, vehicleExistsSQL, vehicleID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking vehicle %q: %w", vehicleID, err)
	}
	if !exists {
		return nil, maintenance.ErrVehicleNotFound
	}

	rows, err := r.pool.Query(ctx, lastDoneKmSQL, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("getting last done km of vehicle %q: %w", vehicleID, err)
	}
	defer rows.Close()

	last := make(map[string]int)
	for rows.Next() {
		var (
			category string
			km       int
		)
		if err := rows.Scan(&category, &km); err != nil {
			return nil, fmt.Errorf("scanning last done km: %w", err)
		}
		last[category] = km
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading last done km: %w", err)
	}
	return last, nil
}

// UpsertVehicle inserts a vehicle or updates its plate. The recorded
// odometer never decreases.
func (r *VehicleRepository) UpsertVehicle(ctx context.Context, id, plate string, odometerKm int) error {
	if _, err := r.pool.Exec(ctx, upsertVehicleSQL, id, plate, odometerKm); err != nil {
		return fmt.Errorf("upserting vehicle %q: %w", id, err)
	}
	return nil
}
