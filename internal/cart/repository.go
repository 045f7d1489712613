package cart

import (
	"context"
	"database/sql"
)

type Repository interface {
	Upsert(ctx context.Context, params AddItemParams) error
	UpdateQuantity(ctx context.Context, params UpdateItemParams) error
	Remove(ctx context.Context, principal string, productID uint64) error
	Clear(ctx context.Context, principal string) error
	GetItems(ctx context.Context, principal string) ([]*Item, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, params AddItemParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (customer_principal, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_principal, product_id)
		DO UPDATE SET quantity = carts.quantity + EXCLUDED.quantity, updated_at = NOW()
	`, params.Principal, params.ProductID, params.Quantity)
	return err
}

func (r *repository) UpdateQuantity(ctx context.Context, params UpdateItemParams) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET quantity = $1, updated_at = NOW()
		WHERE customer_principal = $2 AND product_id = $3
	`, params.Quantity, params.Principal, params.ProductID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, principal string, productID uint64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE customer_principal = $1 AND product_id = $2
	`, principal, productID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, principal string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE customer_principal = $1
	`, principal)
	return err
}

func (r *repository) GetItems(ctx context.Context, principal string) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.customer_principal, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.name, p.price_cents
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.customer_principal = $1
		ORDER BY c.created_at ASC
	`, principal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Principal, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt, &it.Name, &it.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
