package products

import (
	"context"
	"fmt"
	"time"

	"github.com/storekeep/storekeep/internal/shared"
	"github.com/storekeep/storekeep/internal/textx"
)

// Service is the product pricing consistency manager. A product's rate set
// is only ever replaced wholesale inside one transaction, and product
// creation commits together with its initial rates: a product with a
// rejected rate set never persists.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Product, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, hubID, filters)
}

func (s *Service) Get(ctx context.Context, hubID, id int64) (Product, error) {
	return s.repo.Get(ctx, hubID, id)
}

// CreateWithRates creates a product and attaches its initial rate set in a
// single transaction. Used by the direct add path and the bulk importer.
func (s *Service) CreateWithRates(ctx context.Context, hubID int64, req CreateProductRequest) (Product, error) {
	p, err := buildProduct(hubID, req)
	if err != nil {
		return Product{}, err
	}

	var created Product
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if p.CategoryID != nil {
			ok, err := repo.CategoryExists(ctx, hubID, *p.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("category %d: %w", *p.CategoryID, shared.ErrNotFound)
			}
		}
		created, err = repo.Insert(ctx, p)
		if err != nil {
			return err
		}
		if len(req.Rates) > 0 {
			if err := replaceRates(ctx, repo, hubID, created.ID, req.Rates); err != nil {
				return err
			}
			created.Rates, err = repo.ListRates(ctx, created.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return created, nil
}

// ReplaceRates atomically swaps a product's full rate set. This is the sole
// mutation path for rates; there is no per-row upsert.
func (s *Service) ReplaceRates(ctx context.Context, hubID, productID int64, rates []RateInput) ([]Rate, error) {
	var out []Rate
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := replaceRates(ctx, repo, hubID, productID, rates); err != nil {
			return err
		}
		var err error
		out, err = repo.ListRates(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replaceRates runs the full-replace steps against an already-open
// transaction: verify hub ownership, delete the old set unconditionally,
// verify every referenced price level (distinct ids collapse to one
// verification unit, duplicate rows still all insert), insert the new set.
func replaceRates(ctx context.Context, repo Repository, hubID, productID int64, rates []RateInput) error {
	ok, err := repo.ExistsInHub(ctx, hubID, productID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %d: %w", productID, shared.ErrNotFound)
	}
	if err := repo.DeleteRates(ctx, productID); err != nil {
		return err
	}
	if len(rates) == 0 {
		return nil
	}

	distinct := distinctLevelIDs(rates)
	count, err := repo.CountPriceLevels(ctx, hubID, distinct)
	if err != nil {
		return err
	}
	if count != len(distinct) {
		return fmt.Errorf("one or more price levels: %w", shared.ErrNotFound)
	}
	return repo.InsertRates(ctx, productID, rates, time.Now().UTC())
}

func (s *Service) Update(ctx context.Context, hubID, id int64, req UpdateProductRequest) (Product, error) {
	var updated Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, hubID, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			current.Name = textx.CleanInline(*req.Name)
			if current.Name == "" {
				return fmt.Errorf("product name is required: %w", shared.ErrValidation)
			}
		}
		if req.SKU != nil {
			current.SKU = optionalInline(*req.SKU)
		}
		if req.Description != nil {
			current.Description = optionalMultiline(*req.Description)
		}
		if req.Units != nil {
			current.Units = optionalInline(*req.Units)
		}
		if req.Currency != nil {
			code, err := textx.NormalizeCurrency(*req.Currency)
			if err != nil {
				return fmt.Errorf("%s: %w", err, shared.ErrValidation)
			}
			current.Currency = code
		}
		if req.IsArchived != nil {
			current.IsArchived = *req.IsArchived
		}
		switch {
		case req.ClearCategory:
			current.CategoryID = nil
		case req.CategoryID != nil:
			ok, err := repo.CategoryExists(ctx, hubID, *req.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("category %d: %w", *req.CategoryID, shared.ErrNotFound)
			}
			current.CategoryID = req.CategoryID
		}
		updated, err = repo.Update(ctx, hubID, id, current)
		return err
	})
	if err != nil {
		return Product{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, hubID, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		ok, err := repo.ExistsInHub(ctx, hubID, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
		}
		if err := repo.DeleteRates(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, hubID, id)
	})
}

func buildProduct(hubID int64, req CreateProductRequest) (Product, error) {
	name := textx.CleanInline(req.Name)
	if name == "" {
		return Product{}, fmt.Errorf("product name is required: %w", shared.ErrValidation)
	}
	code, err := textx.NormalizeCurrency(req.Currency)
	if err != nil {
		return Product{}, fmt.Errorf("%s: %w", err, shared.ErrValidation)
	}
	p := Product{
		HubID:      hubID,
		Name:       name,
		Currency:   code,
		CategoryID: req.CategoryID,
	}
	if req.SKU != nil {
		p.SKU = optionalInline(*req.SKU)
	}
	if req.Description != nil {
		p.Description = optionalMultiline(*req.Description)
	}
	if req.Units != nil {
		p.Units = optionalInline(*req.Units)
	}
	return p, nil
}

func distinctLevelIDs(rates []RateInput) []int64 {
	seen := make(map[int64]struct{}, len(rates))
	out := make([]int64, 0, len(rates))
	for _, r := range rates {
		if _, dup := seen[r.PriceLevelID]; dup {
			continue
		}
		seen[r.PriceLevelID] = struct{}{}
		out = append(out, r.PriceLevelID)
	}
	return out
}

func optionalInline(s string) *string {
	cleaned := textx.CleanInline(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func optionalMultiline(s string) *string {
	cleaned := textx.CleanMultiline(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
