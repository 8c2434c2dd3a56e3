package pricelevels

import (
	"context"
	"fmt"

	"github.com/storekeep/storekeep/internal/shared"
	"github.com/storekeep/storekeep/internal/textx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, hubID int64) ([]PriceLevel, error) {
	return s.repo.List(ctx, hubID)
}

func (s *Service) Get(ctx context.Context, hubID, id int64) (PriceLevel, error) {
	return s.repo.Get(ctx, hubID, id)
}

func (s *Service) Create(ctx context.Context, hubID int64, req CreatePriceLevelRequest) (PriceLevel, error) {
	name := textx.CleanInline(req.Name)
	if name == "" {
		return PriceLevel{}, fmt.Errorf("price level name is required: %w", shared.ErrValidation)
	}
	return s.repo.Create(ctx, hubID, name)
}

func (s *Service) Update(ctx context.Context, hubID, id int64, req UpdatePriceLevelRequest) (PriceLevel, error) {
	name := textx.CleanInline(req.Name)
	if name == "" {
		return PriceLevel{}, fmt.Errorf("price level name is required: %w", shared.ErrValidation)
	}
	return s.repo.Update(ctx, hubID, id, name)
}

func (s *Service) Delete(ctx context.Context, hubID, id int64) error {
	return s.repo.Delete(ctx, hubID, id)
}
