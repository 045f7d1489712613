package customer

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// Postgres unique_violation, returned when a principal registers twice.
const pgUniqueViolation = "23505"

type Repository interface {
	Insert(ctx context.Context, c *Customer) error
	GetByPrincipal(ctx context.Context, principal string) (*Customer, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, c *Customer) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (principal, name, phone_number, pickup_address)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.Principal, c.Name, c.PhoneNumber, c.PickupAddress).Scan(&c.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pgUniqueViolation {
		return ErrAlreadyRegistered
	}
	return err
}

func (r *repository) GetByPrincipal(ctx context.Context, principal string) (*Customer, error) {
	var c Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT principal, name, phone_number, pickup_address, created_at
		FROM customers
		WHERE principal = $1
	`, principal).Scan(&c.Principal, &c.Name, &c.PhoneNumber, &c.PickupAddress, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
