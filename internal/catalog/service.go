package catalog

import (
	"context"
	"fmt"

	"grocerly-be/internal/auth"
	"grocerly-be/internal/logger"

	"go.uber.org/zap"
)

// Service exposes catalog reads to everyone and mutations to admins only.
type Service interface {
	ListProducts(ctx context.Context, category string) ([]*Product, error)
	GetProduct(ctx context.Context, productID uint64) (*Product, error)
	QuotePrices(ctx context.Context, productIDs []uint64) (map[uint64]PriceQuote, error)
	CreateProduct(ctx context.Context, params ProductParams) (*Product, error)
	UpdateProduct(ctx context.Context, productID uint64, params ProductParams) (*Product, error)
	DeleteProduct(ctx context.Context, productID uint64) error
}

type ProductParams struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context, category string) ([]*Product, error) {
	return s.repo.List(ctx, category)
}

func (s *service) GetProduct(ctx context.Context, productID uint64) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

func (s *service) QuotePrices(ctx context.Context, productIDs []uint64) (map[uint64]PriceQuote, error) {
	return s.repo.QuotePrices(ctx, productIDs)
}

func (s *service) CreateProduct(ctx context.Context, params ProductParams) (*Product, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if params.PriceCents <= 0 {
		return nil, ErrInvalidPrice
	}

	p, err := s.repo.Create(ctx, &Product{
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		PriceCents:  params.PriceCents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logger.FromCtx(ctx).Info("product created",
		zap.Uint64("product_id", p.ID),
		zap.String("name", p.Name),
	)
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uint64, params ProductParams) (*Product, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if params.PriceCents <= 0 {
		return nil, ErrInvalidPrice
	}

	return s.repo.Update(ctx, &Product{
		ID:          productID,
		Name:        params.Name,
		Description: params.Description,
		Category:    params.Category,
		PriceCents:  params.PriceCents,
	})
}

func (s *service) DeleteProduct(ctx context.Context, productID uint64) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.Delete(ctx, productID)
}
