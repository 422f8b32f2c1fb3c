package masterdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ordelix/ordelix/internal/platform/db"
)

// PostgresRepository persists the catalog in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PostgresRepository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, name, description, labor_hours, complexity, created_at`

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, err
	}
	lines, err := r.loadRequirements(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Materials = lines[products[i].ID]
	}
	return products, nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return Product{}, err
	}
	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%s: %w", id, ErrProductNotFound)
		}
		return Product{}, err
	}
	lines, err := r.loadRequirements(ctx, &id)
	if err != nil {
		return Product{}, err
	}
	product.Materials = lines[id]
	return product, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, product Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO products (id, name, description, labor_hours, complexity, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			product.ID, product.Name, product.Description, product.LaborHours, product.Complexity, product.CreatedAt)
		if err != nil {
			return err
		}
		return insertRequirements(ctx, tx, product)
	})
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, product Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE products SET name = $2, description = $3, labor_hours = $4, complexity = $5 WHERE id = $1`,
			product.ID, product.Name, product.Description, product.LaborHours, product.Complexity)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: %w", product.ID, ErrProductNotFound)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM product_materials WHERE product_id = $1`, product.ID); err != nil {
			return err
		}
		return insertRequirements(ctx, tx, product)
	})
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	return nil
}

const materialColumns = `id, name, quantity, unit_price, low_stock_threshold, created_at`

func (r *PostgresRepository) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, ScanMaterial)
}

func (r *PostgresRepository) GetMaterial(ctx context.Context, id string) (Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
	if err != nil {
		return Material{}, err
	}
	material, err := pgx.CollectExactlyOneRow(rows, ScanMaterial)
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, fmt.Errorf("%s: %w", id, ErrMaterialNotFound)
	}
	return material, err
}

func (r *PostgresRepository) CreateMaterial(ctx context.Context, material Material) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO materials (id, name, quantity, unit_price, low_stock_threshold, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		material.ID, material.Name, material.Quantity, material.UnitPrice, material.LowStockThreshold, material.CreatedAt)
	return err
}

func (r *PostgresRepository) AdjustMaterialQuantity(ctx context.Context, id string, delta int) (Material, error) {
	rows, err := r.pool.Query(ctx, `UPDATE materials SET quantity = quantity + $2 WHERE id = $1 RETURNING `+materialColumns, id, delta)
	if err != nil {
		return Material{}, err
	}
	material, err := pgx.CollectExactlyOneRow(rows, ScanMaterial)
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, fmt.Errorf("%s: %w", id, ErrMaterialNotFound)
	}
	return material, err
}

const customerColumns = `id, name, loyalty_level, purchase_count, payment_behavior`

func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func (r *PostgresRepository) GetCustomer(ctx context.Context, id string) (Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if err != nil {
		return Customer{}, err
	}
	customer, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, fmt.Errorf("%s: %w", id, ErrCustomerNotFound)
	}
	return customer, err
}

func (r *PostgresRepository) CreateCustomers(ctx context.Context, customers []Customer) error {
	batch := &pgx.Batch{}
	for _, c := range customers {
		batch.Queue(`INSERT INTO customers (id, name, loyalty_level, purchase_count, payment_behavior) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, string(c.LoyaltyLevel), c.PurchaseCount, string(c.PaymentBehavior))
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *PostgresRepository) loadRequirements(ctx context.Context, productID *string) (map[string][]MaterialRequirement, error) {
	query := `SELECT product_id, material_id, quantity_required FROM product_materials`
	args := []any{}
	if productID != nil {
		query += ` WHERE product_id = $1`
		args = append(args, *productID)
	}
	query += ` ORDER BY product_id, line_no`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]MaterialRequirement)
	for rows.Next() {
		var (
			pid  string
			line MaterialRequirement
		)
		if err := rows.Scan(&pid, &line.MaterialID, &line.QuantityRequired); err != nil {
			return nil, err
		}
		out[pid] = append(out[pid], line)
	}
	return out, rows.Err()
}

func insertRequirements(ctx context.Context, tx pgx.Tx, product Product) error {
	for i, line := range product.Materials {
		if _, err := tx.Exec(ctx, `INSERT INTO product_materials (product_id, line_no, material_id, quantity_required) VALUES ($1, $2, $3, $4)`,
			product.ID, i+1, line.MaterialID, line.QuantityRequired); err != nil {
			return err
		}
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.LaborHours, &p.Complexity, &p.CreatedAt)
	return p, err
}

// ScanMaterial maps a row selected with the material column list.
func ScanMaterial(row pgx.CollectableRow) (Material, error) {
	var m Material
	err := row.Scan(&m.ID, &m.Name, &m.Quantity, &m.UnitPrice, &m.LowStockThreshold, &m.CreatedAt)
	return m, err
}

func scanCustomer(row pgx.CollectableRow) (Customer, error) {
	var (
		c       Customer
		loyalty string
		payment string
	)
	if err := row.Scan(&c.ID, &c.Name, &loyalty, &c.PurchaseCount, &payment); err != nil {
		return Customer{}, err
	}
	c.LoyaltyLevel = LoyaltyLevel(loyalty)
	c.PaymentBehavior = PaymentBehavior(payment)
	return c, nil
}
