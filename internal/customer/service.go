package customer

import (
	"context"
	"fmt"
)

type Service interface {
	Register(ctx context.Context, principal, name, phone, pickupAddress string) (*Customer, error)
	GetByPrincipal(ctx context.Context, principal string) (*Customer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, principal, name, phone, pickupAddress string) (*Customer, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	c := &Customer{
		Principal:     principal,
		Name:          name,
		PhoneNumber:   phone,
		PickupAddress: pickupAddress,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByPrincipal(ctx context.Context, principal string) (*Customer, error) {
	return s.repo.GetByPrincipal(ctx, principal)
}
