package catalog

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, productID uint64) error
	GetByID(ctx context.Context, productID uint64) (*Product, error)
	List(ctx context.Context, category string) ([]*Product, error)
	QuotePrices(ctx context.Context, productIDs []uint64) (map[uint64]PriceQuote, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, category, price_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Category, p.PriceCents).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p *Product) (*Product, error) {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, category = $3, price_cents = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING created_at, updated_at
	`, p.Name, p.Description, p.Category, p.PriceCents, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, productID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, productID uint64) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price_cents, created_at, updated_at
		FROM products
		WHERE id = $1
	`, productID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, category string) ([]*Product, error) {
	query := `
		SELECT id, name, description, category, price_cents, created_at, updated_at
		FROM products
	`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// QuotePrices resolves current name and price for the given products. Missing
// ids are simply absent from the result map; the caller decides how to fail.
func (r *repository) QuotePrices(ctx context.Context, productIDs []uint64) (map[uint64]PriceQuote, error) {
	quotes := make(map[uint64]PriceQuote, len(productIDs))
	if len(productIDs) == 0 {
		return quotes, nil
	}

	ids := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		ids = append(ids, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price_cents
		FROM products
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q PriceQuote
		if err := rows.Scan(&q.ProductID, &q.Name, &q.PriceCents); err != nil {
			return nil, err
		}
		quotes[q.ProductID] = q
	}
	return quotes, rows.Err()
}
