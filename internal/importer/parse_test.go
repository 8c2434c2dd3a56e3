package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/shared"
)

func TestParsePriceLevels(t *testing.T) {
	names, err := ParsePriceLevels(strings.NewReader("Name\nRetail\n\nWholesale\n  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Retail", "Wholesale"}, names)
}

func TestParsePriceLevelsEmptyBodyIsFine(t *testing.T) {
	names, err := ParsePriceLevels(strings.NewReader("name\n"))
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = ParsePriceLevels(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestParsePriceLevelsMissingHeader(t *testing.T) {
	_, err := ParsePriceLevels(strings.NewReader("title\nRetail\n"))
	var missing *MissingHeadersError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"name"}, missing.Headers)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func testLevels() []pricelevels.PriceLevel {
	return []pricelevels.PriceLevel{
		{ID: 10, HubID: 1, Name: "Retail"},
		{ID: 11, HubID: 1, Name: "Wholesale"},
	}
}

func TestParseProducts(t *testing.T) {
	csv := "SKU,Name,Currency,Retail,wholesale,ignored\n" +
		"W-1,Widget,usd,12.5,9,whatever\n" +
		"W-2,Gadget,EUR,,,\n"
	reqs, err := ParseProducts(strings.NewReader(csv), testLevels())
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "Widget", reqs[0].Name)
	assert.Equal(t, "USD", reqs[0].Currency)
	require.NotNil(t, reqs[0].SKU)
	assert.Equal(t, "W-1", *reqs[0].SKU)
	require.Len(t, reqs[0].Rates, 2)
	assert.Equal(t, int64(10), reqs[0].Rates[0].PriceLevelID)
	assert.Equal(t, int64(1250), reqs[0].Rates[0].PriceCents)
	assert.Equal(t, int64(11), reqs[0].Rates[1].PriceLevelID)
	assert.Equal(t, int64(900), reqs[0].Rates[1].PriceCents)

	assert.Equal(t, "Gadget", reqs[1].Name)
	assert.Empty(t, reqs[1].Rates, "blank rate cells mean no rate")
}

func TestParseProductsMissingHeaders(t *testing.T) {
	_, err := ParseProducts(strings.NewReader("sku,description\nW-1,x\n"), nil)
	var missing *MissingHeadersError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"name", "currency"}, missing.Headers)
}

func TestParseProductsBlankNameCitesRow(t *testing.T) {
	// Header is row 1; the blank name sits on the second data row, row 3.
	csv := "name,currency\nWidget,USD\n,USD\n"
	_, err := ParseProducts(strings.NewReader(csv), nil)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, "name", rowErr.Column)
}

func TestParseProductsAcceptsUnlistedCurrency(t *testing.T) {
	// A well-formed three-letter code passes even when ISO-4217 does not
	// list it.
	reqs, err := ParseProducts(strings.NewReader("name,currency\nWidget,abc\n"), nil)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "ABC", reqs[0].Currency)
}

func TestParseProductsBadCurrencyCitesValue(t *testing.T) {
	csv := "name,currency\nWidget,DOLLARS\n"
	_, err := ParseProducts(strings.NewReader(csv), nil)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "DOLLARS", rowErr.Value)
}

func TestParseProductsBadAmountCitesLevel(t *testing.T) {
	csv := "name,currency,Retail\nWidget,USD,12.555\n"
	_, err := ParseProducts(strings.NewReader(csv), testLevels())
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "Retail", rowErr.Column)
	assert.Equal(t, "12.555", rowErr.Value)
}

func TestParseProductsFixedHeadersWinOverLevelNames(t *testing.T) {
	// A price level named like a fixed column maps to the fixed column, not
	// to a rate column.
	levels := []pricelevels.PriceLevel{{ID: 10, HubID: 1, Name: "sku"}}
	reqs, err := ParseProducts(strings.NewReader("name,currency,sku\nWidget,USD,12.50\n"), levels)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Rates)
	require.NotNil(t, reqs[0].SKU)
	assert.Equal(t, "12.50", *reqs[0].SKU)
}

func TestParseProductsEmptyUpload(t *testing.T) {
	for _, body := range []string{"", "name,currency\n"} {
		_, err := ParseProducts(strings.NewReader(body), nil)
		var empty *EmptyUploadError
		assert.ErrorAs(t, err, &empty, "body %q", body)
	}
}
