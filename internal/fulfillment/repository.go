package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordelix/ordelix/internal/masterdata"
)

// PostgresRepository persists orders in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PostgresRepository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

const orderColumns = `id, product_id, customer_id, quantity, price_type, status, is_pre_order, original_price, discount, final_price, created_at`

// WithTx executes fn inside a read-committed transaction; material rows are locked explicitly.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (Order, error) {
	return getOrder(ctx, r.pool, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (t *txRepo) GetProduct(ctx context.Context, id string) (masterdata.Product, error) {
	var p masterdata.Product
	err := t.tx.QueryRow(ctx, `SELECT id, name, description, labor_hours, complexity, created_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.LaborHours, &p.Complexity, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return masterdata.Product{}, fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return masterdata.Product{}, err
	}

	rows, err := t.tx.Query(ctx, `SELECT material_id, quantity_required FROM product_materials WHERE product_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return masterdata.Product{}, err
	}
	p.Materials, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (masterdata.MaterialRequirement, error) {
		var line masterdata.MaterialRequirement
		err := row.Scan(&line.MaterialID, &line.QuantityRequired)
		return line, err
	})
	return p, err
}

func (t *txRepo) LockMaterials(ctx context.Context, ids []string) (masterdata.MaterialIndex, error) {
	if len(ids) == 0 {
		return masterdata.MaterialIndex{}, nil
	}
	// Ordered locking keeps concurrent placements from deadlocking.
	rows, err := t.tx.Query(ctx, `SELECT id, name, quantity, unit_price, low_stock_threshold, created_at FROM materials WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	materials, err := pgx.CollectRows(rows, masterdata.ScanMaterial)
	if err != nil {
		return nil, err
	}
	return masterdata.IndexMaterials(materials), nil
}

func (t *txRepo) SetMaterialQuantity(ctx context.Context, id string, quantity int) error {
	_, err := t.tx.Exec(ctx, `UPDATE materials SET quantity = $2 WHERE id = $1`, id, quantity)
	return err
}

func (t *txRepo) InsertOrder(ctx context.Context, o Order) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.ProductID, o.CustomerID, o.Quantity, o.PriceType, string(o.Status), o.IsPreOrder,
		o.OriginalPrice, o.Discount, o.FinalPrice, o.CreatedAt)
	return err
}

func (t *txRepo) GetOrderForUpdate(ctx context.Context, id string) (Order, error) {
	return getOrder(ctx, t.tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (t *txRepo) UpdateOrderStatus(ctx context.Context, id string, status Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrOrderNotFound)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getOrder(ctx context.Context, q querier, sql, id string) (Order, error) {
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return Order{}, err
	}
	order, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("%s: %w", id, ErrOrderNotFound)
	}
	return order, err
}

func scanOrder(row pgx.CollectableRow) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.ProductID, &o.CustomerID, &o.Quantity, &o.PriceType, &status, &o.IsPreOrder,
		&o.OriginalPrice, &o.Discount, &o.FinalPrice, &o.CreatedAt)
	o.Status = Status(status)
	return o, err
}
