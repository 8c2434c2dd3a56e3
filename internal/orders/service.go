package orders

import (
	"context"
	"fmt"

	"github.com/storekeep/storekeep/internal/shared"
	"github.com/storekeep/storekeep/internal/textx"
)

// Service manages orders with immutable line snapshots. A line copies the
// product's name, sku, description, currency and the rate under the chosen
// price level at the moment the order is written; later product edits never
// reach back into existing orders.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, hubID int64, filters shared.ListFilters) ([]Order, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, hubID, filters)
}

func (s *Service) Get(ctx context.Context, hubID, id int64) (Order, error) {
	return s.repo.Get(ctx, hubID, id)
}

func (s *Service) Create(ctx context.Context, hubID int64, req CreateOrderRequest) (Order, error) {
	reference := textx.CleanInline(req.Reference)
	if reference == "" {
		return Order{}, fmt.Errorf("order reference is required: %w", shared.ErrValidation)
	}

	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		o := Order{HubID: hubID, Reference: reference, Status: StatusOpen}
		if req.CustomerName != nil {
			o.CustomerName = optionalInline(*req.CustomerName)
		}
		var err error
		created, err = repo.Insert(ctx, o)
		if err != nil {
			return err
		}
		if len(req.Lines) > 0 {
			lines, err := snapshotLines(ctx, repo, hubID, req.Lines)
			if err != nil {
				return err
			}
			if err := repo.InsertLines(ctx, created.ID, lines); err != nil {
				return err
			}
			created.Lines, err = repo.ListLines(ctx, created.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

// Update patches scalar fields and, when the line set is present in the
// request, full-replaces the snapshots in the same transaction. An empty
// present set clears all lines; an absent set leaves them untouched.
func (s *Service) Update(ctx context.Context, hubID, id int64, req UpdateOrderRequest) (Order, error) {
	var updated Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, hubID, id)
		if err != nil {
			return err
		}
		if req.Reference != nil {
			current.Reference = textx.CleanInline(*req.Reference)
			if current.Reference == "" {
				return fmt.Errorf("order reference is required: %w", shared.ErrValidation)
			}
		}
		if req.CustomerName != nil {
			current.CustomerName = optionalInline(*req.CustomerName)
		}
		if req.Status != nil {
			current.Status = *req.Status
		}
		if err := repo.Update(ctx, hubID, id, current); err != nil {
			return err
		}
		if req.Lines.Set {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			if len(req.Lines.Lines) > 0 {
				lines, err := snapshotLines(ctx, repo, hubID, req.Lines.Lines)
				if err != nil {
					return err
				}
				if err := repo.InsertLines(ctx, id, lines); err != nil {
					return err
				}
			}
		}
		updated, err = repo.Get(ctx, hubID, id)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, hubID, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteLines(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, hubID, id)
	})
}

func snapshotLines(ctx context.Context, repo Repository, hubID int64, inputs []LineInput) ([]Line, error) {
	lines := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		snap, err := repo.ResolveSnapshot(ctx, hubID, in.ProductID, in.PriceLevelID)
		if err != nil {
			return nil, err
		}
		productID := snap.ProductID
		lines = append(lines, Line{
			ProductID:   &productID,
			Name:        snap.Name,
			SKU:         snap.SKU,
			Description: snap.Description,
			PriceCents:  snap.PriceCents,
			Currency:    snap.Currency,
			Quantity:    in.Quantity,
		})
	}
	return lines, nil
}

func optionalInline(s string) *string {
	cleaned := textx.CleanInline(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
