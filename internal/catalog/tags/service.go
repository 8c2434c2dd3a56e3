package tags

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

func (s *Service) List(ctx context.Context, hubID int64) ([]Tag, error) {
	return s.repo.List(ctx, hubID)
}

func (s *Service) Create(ctx context.Context, hubID int64, req TagRequest) (Tag, error) {
	name := textx.CleanInline(req.Name)
	if name == "" {
		return Tag{}, fmt.Errorf("tag name is required: %w", shared.ErrValidation)
	}
	return s.repo.Create(ctx, hubID, name)
}

func (s *Service) Rename(ctx context.Context, hubID, id int64, req TagRequest) (Tag, error) {
	name := textx.CleanInline(req.Name)
	if name == "" {
		return Tag{}, fmt.Errorf("tag name is required: %w", shared.ErrValidation)
	}
	return s.repo.Rename(ctx, hubID, id, name)
}

func (s *Service) Delete(ctx context.Context, hubID, id int64) error {
	return s.repo.Delete(ctx, hubID, id)
}

func (s *Service) SetProductTags(ctx context.Context, hubID, productID int64, tagIDs []int64) error {
	return s.repo.SetProductTags(ctx, hubID, productID, tagIDs)
}

func (s *Service) ListProductTags(ctx context.Context, hubID, productID int64) ([]Tag, error) {
	return s.repo.ListProductTags(ctx, hubID, productID)
}
