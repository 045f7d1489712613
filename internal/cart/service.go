package cart

import (
	"context"

	"grocerly-be/internal/catalog"
)

// Service defines the business logic for carts.
type Service interface {
	AddItem(ctx context.Context, params AddItemParams) error
	UpdateItem(ctx context.Context, params UpdateItemParams) error
	RemoveItem(ctx context.Context, principal string, productID uint64) error
	Clear(ctx context.Context, principal string) error
	GetCart(ctx context.Context, principal string) ([]*Item, error)
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
}

func NewService(repo Repository, catalogRepo catalog.Repository) Service {
	return &service{repo: repo, catalogRepo: catalogRepo}
}

func (s *service) AddItem(ctx context.Context, params AddItemParams) error {
	if params.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	// Only products that still exist can enter the cart.
	if _, err := s.catalogRepo.GetByID(ctx, params.ProductID); err != nil {
		return err
	}

	return s.repo.Upsert(ctx, params)
}

func (s *service) UpdateItem(ctx context.Context, params UpdateItemParams) error {
	if params.Quantity <= 0 {
		// Zero or negative means remove the line.
		return s.repo.Remove(ctx, params.Principal, params.ProductID)
	}
	return s.repo.UpdateQuantity(ctx, params)
}

func (s *service) RemoveItem(ctx context.Context, principal string, productID uint64) error {
	return s.repo.Remove(ctx, principal, productID)
}

func (s *service) Clear(ctx context.Context, principal string) error {
	return s.repo.Clear(ctx, principal)
}

func (s *service) GetCart(ctx context.Context, principal string) ([]*Item, error) {
	return s.repo.GetItems(ctx, principal)
}
