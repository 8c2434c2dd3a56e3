package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/catalog/products"
)

// productCreator is the slice of the product service the importer needs.
type productCreator interface {
	CreateWithRates(ctx context.Context, hubID int64, req products.CreateProductRequest) (products.Product, error)
}

// levelStore covers the price-level lookups and creation the importer needs.
type levelStore interface {
	List(ctx context.Context, hubID int64) ([]pricelevels.PriceLevel, error)
	Create(ctx context.Context, hubID int64, req pricelevels.CreatePriceLevelRequest) (pricelevels.PriceLevel, error)
}

// Service drives both import flavours: parse the whole file first, then
// persist. A parse error therefore never leaves partial rows behind; a
// persistence error can (each product commits in its own transaction), and
// the row number in the returned error tells the caller where it stopped.
type Service struct {
	logger   *slog.Logger
	levels   levelStore
	products productCreator
}

func NewService(logger *slog.Logger, levels levelStore, products productCreator) *Service {
	return &Service{logger: logger, levels: levels, products: products}
}

// ImportPriceLevels creates one price level per parsed name and returns the
// created count. An empty file is a valid zero-count import.
func (s *Service) ImportPriceLevels(ctx context.Context, hubID int64, data []byte) (int, error) {
	names, err := ParsePriceLevels(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	created := 0
	for _, name := range names {
		if _, err := s.levels.Create(ctx, hubID, pricelevels.CreatePriceLevelRequest{Name: name}); err != nil {
			return created, fmt.Errorf("create price level %q: %w", name, err)
		}
		created++
	}
	s.logger.Info("price levels imported", slog.Int64("hub_id", hubID), slog.Int("created", created))
	return created, nil
}

// ImportProducts parses the file against the hub's current price levels and
// creates each product with its rates through the transactional create path.
func (s *Service) ImportProducts(ctx context.Context, hubID int64, data []byte) (int, error) {
	levels, err := s.levels.List(ctx, hubID)
	if err != nil {
		return 0, err
	}
	reqs, err := ParseProducts(bytes.NewReader(data), levels)
	if err != nil {
		return 0, err
	}
	created := 0
	for i, req := range reqs {
		if _, err := s.products.CreateWithRates(ctx, hubID, req); err != nil {
			// Parsed rows are in file order; header is row 1.
			return created, fmt.Errorf("row %d (%s): %w", i+2, req.Name, err)
		}
		created++
	}
	s.logger.Info("products imported", slog.Int64("hub_id", hubID), slog.Int("created", created))
	return created, nil
}
