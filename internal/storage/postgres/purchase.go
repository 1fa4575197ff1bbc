package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/invsblmen/pos-bengkel/internal/domain/catalog"
	"github.com/invsblmen/pos-bengkel/internal/domain/order"
)

const (
	purchaseColumns = `id, supplier_id, status, items, discount_mode, discount_value,
		tax_mode, tax_value, notes, expected_delivery_date, actual_delivery_date,
		created_at, updated_at`

	insertPurchaseSQL = `INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	getPurchaseSQL = `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`

	lockPurchaseSQL = getPurchaseSQL + ` FOR UPDATE`

	savePurchaseSQL = `UPDATE purchases SET status = $2, items = $3,
			discount_mode = $4, discount_value = $5, tax_mode = $6, tax_value = $7,
			notes = $8, expected_delivery_date = $9, actual_delivery_date = $10,
			updated_at = $11
		WHERE id = $1 AND status = $12`

	incrementStockSQL = `UPDATE parts SET stock_quantity = stock_quantity + $2 WHERE id = $1`
)

var _ order.PurchaseRepository = (*PurchaseRepository)(nil)

// PurchaseRepository implements order.PurchaseRepository backed by
// PostgreSQL.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository returns a PurchaseRepository that uses the given pool.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// CreatePurchase inserts a new procurement order.
func (r *PurchaseRepository) CreatePurchase(ctx context.Context, p *order.Purchase) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal purchase items: %w", err)
	}
	_, err = r.pool.Exec(ctx, insertPurchaseSQL,
		p.ID, p.SupplierID, string(p.Status), items,
		string(p.Discount.Mode), p.Discount.Value, string(p.Tax.Mode), p.Tax.Value,
		p.Notes, p.ExpectedDeliveryDate, p.ActualDeliveryDate, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting purchase %q: %w", p.ID, err)
	}
	return nil
}

// GetPurchase loads a procurement order by ID.
func (r *PurchaseRepository) GetPurchase(ctx context.Context, id string) (*order.Purchase, error) {
	return scanPurchase(r.pool.QueryRow(ctx, getPurchaseSQL, id))
}

// InPurchaseTx runs fn inside a database transaction.
func (r *PurchaseRepository) InPurchaseTx(ctx context.Context, fn func(ctx context.Context, tx order.PurchaseTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &purchaseTx{tx: tx})
	})
}

type purchaseTx struct {
	tx pgx.Tx
}

func (t *purchaseTx) LockPurchase(ctx context.Context, id string) (*order.Purchase, error) {
	return scanPurchase(t.tx.QueryRow(ctx, lockPurchaseSQL, id))
}

func (t *purchaseTx) SavePurchase(ctx context.Context, p *order.Purchase, expected order.PurchaseStatus) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("marshal purchase items: %w", err)
	}
	tag, err := t.tx.Exec(ctx, savePurchaseSQL,
		p.ID, string(p.Status), items,
		string(p.Discount.Mode), p.Discount.Value, string(p.Tax.Mode), p.Tax.Value,
		p.Notes, p.ExpectedDeliveryDate, p.ActualDeliveryDate, p.UpdatedAt,
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("saving purchase %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrStatusConflict
	}
	return nil
}

func (t *purchaseTx) IncrementStock(ctx context.Context, partID string, quantity int) error {
	tag, err := t.tx.Exec(ctx, incrementStockSQL, partID, quantity)
	if err != nil {
		return fmt.Errorf("incrementing stock of part %q: %w", partID, err)
	}
	if tag.RowsAffected() == 0 {
		return &catalog.NotFoundError{Kind: catalog.KindPart, ID: partID}
	}
	return nil
}

func scanPurchase(row pgx.Row) (*order.Purchase, error) {
	var (
		p                     order.Purchase
		status                string
		items                 []byte
		discountMode, taxMode string
		discountValue         decimal.Decimal
		taxValue              decimal.Decimal
		expected, actual      *time.Time
	)
	err := row.Scan(&p.ID, &p.SupplierID, &status, &items,
		&discountMode, &discountValue, &taxMode, &taxValue,
		&p.Notes, &expected, &actual, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("scanning purchase: %w", err)
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("unmarshal purchase items: %w", err)
	}
	p.Status = order.PurchaseStatus(status)
	p.Discount = discountFromColumns(discountMode, discountValue)
	p.Tax = discountFromColumns(taxMode, taxValue)
	p.ExpectedDeliveryDate = expected
	p.ActualDeliveryDate = actual
	return &p, nil
}
