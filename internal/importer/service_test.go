package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/catalog/products"
	"github.com/storekeep/storekeep/internal/shared"
)

type fakeLevels struct {
	levels []pricelevels.PriceLevel
	nextID int64
}

func (f *fakeLevels) List(ctx context.Context, hubID int64) ([]pricelevels.PriceLevel, error) {
	var out []pricelevels.PriceLevel
	for _, l := range f.levels {
		if l.HubID == hubID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLevels) Create(ctx context.Context, hubID int64, req pricelevels.CreatePriceLevelRequest) (pricelevels.PriceLevel, error) {
	f.nextID++
	l := pricelevels.PriceLevel{ID: f.nextID, HubID: hubID, Name: req.Name}
	f.levels = append(f.levels, l)
	return l, nil
}

type fakeProducts struct {
	created []products.CreateProductRequest
	failOn  string
}

func (f *fakeProducts) CreateWithRates(ctx context.Context, hubID int64, req products.CreateProductRequest) (products.Product, error) {
	if req.Name == f.failOn {
		return products.Product{}, fmt.Errorf("price level: %w", shared.ErrNotFound)
	}
	f.created = append(f.created, req)
	return products.Product{ID: int64(len(f.created)), HubID: hubID, Name: req.Name}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestImportPriceLevels(t *testing.T) {
	levels := &fakeLevels{}
	svc := NewService(discardLogger(), levels, &fakeProducts{})

	created, err := svc.ImportPriceLevels(context.Background(), 1, []byte("name\nRetail\nWholesale\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, levels.levels, 2)
}

func TestImportPriceLevelsEmptyIsZero(t *testing.T) {
	svc := NewService(discardLogger(), &fakeLevels{}, &fakeProducts{})
	created, err := svc.ImportPriceLevels(context.Background(), 1, []byte("name\n"))
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestImportProducts(t *testing.T) {
	levels := &fakeLevels{levels: []pricelevels.PriceLevel{{ID: 10, HubID: 1, Name: "Retail"}}}
	prods := &fakeProducts{}
	svc := NewService(discardLogger(), levels, prods)

	created, err := svc.ImportProducts(context.Background(), 1, []byte("name,currency,Retail\nWidget,USD,12.50\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, prods.created, 1)
	require.Len(t, prods.created[0].Rates, 1)
	assert.Equal(t, int64(1250), prods.created[0].Rates[0].PriceCents)
}

func TestImportProductsParseErrorPersistsNothing(t *testing.T) {
	prods := &fakeProducts{}
	svc := NewService(discardLogger(), &fakeLevels{}, prods)

	_, err := svc.ImportProducts(context.Background(), 1, []byte("name,currency\nWidget,USD\n,USD\n"))
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, prods.created, "validation precedes persistence")
}

func TestImportProductsPersistErrorReportsRow(t *testing.T) {
	prods := &fakeProducts{failOn: "Gadget"}
	svc := NewService(discardLogger(), &fakeLevels{}, prods)

	created, err := svc.ImportProducts(context.Background(), 1, []byte("name,currency\nWidget,USD\nGadget,USD\n"))
	require.Error(t, err)
	assert.Equal(t, 1, created)
	assert.Contains(t, err.Error(), "row 3")
}
