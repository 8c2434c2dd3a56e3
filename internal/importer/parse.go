// Package importer turns uploaded CSV files into catalog creation payloads.
// Parsing is strict for products (row-numbered errors, whole-file abort) and
// lenient for price levels (blank cells skipped, empty body fine).
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/storekeep/storekeep/internal/catalog/pricelevels"
	"github.com/storekeep/storekeep/internal/catalog/products"
	"github.com/storekeep/storekeep/internal/textx"
)

// ParsePriceLevels reads the case-insensitive "name" column and returns the
// cleaned names in file order. Blank cells are skipped, an empty body yields
// zero names, and a missing name header is the only structural error.
func ParsePriceLevels(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameCol := -1
	for i, h := range header {
		if strings.EqualFold(textx.CleanInline(h), "name") {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, &MissingHeadersError{Headers: []string{"name"}}
	}

	var names []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if nameCol >= len(record) {
			continue
		}
		if name := textx.CleanInline(record[nameCol]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// productColumns maps header positions after a case-insensitive match.
// Unrecognized columns are dropped unless they match a price-level name.
type productColumns struct {
	name        int
	currency    int
	sku         int
	description int
	units       int
	rates       map[int]pricelevels.PriceLevel // column index -> price level
}

// ParseProducts parses a product CSV into creation payloads. Required
// columns are "name" and "currency"; "sku", "description" and "units" are
// optional; any other column whose header equals a hub price-level name
// (case-insensitive) carries per-row amounts for that level. Column order
// is irrelevant. The first error aborts the whole import; zero parsed
// products is an EmptyUploadError.
func ParseProducts(r io.Reader, levels []pricelevels.PriceLevel) ([]products.CreateProductRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &EmptyUploadError{}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapProductColumns(header, levels)
	if err != nil {
		return nil, err
	}

	var out []products.CreateProductRequest
	row := 1 // header
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row++

		req, err := parseProductRow(record, cols, row)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if len(out) == 0 {
		return nil, &EmptyUploadError{}
	}
	return out, nil
}

// mapProductColumns resolves header positions. Fixed headers take
// precedence: a price level named "name", "currency", "sku", "description"
// or "units" cannot act as a rate column.
func mapProductColumns(header []string, levels []pricelevels.PriceLevel) (productColumns, error) {
	cols := productColumns{
		name: -1, currency: -1, sku: -1, description: -1, units: -1,
		rates: make(map[int]pricelevels.PriceLevel),
	}
	for i, raw := range header {
		h := strings.ToLower(textx.CleanInline(raw))
		switch h {
		case "name":
			cols.name = i
		case "currency":
			cols.currency = i
		case "sku":
			cols.sku = i
		case "description":
			cols.description = i
		case "units":
			cols.units = i
		default:
			for _, level := range levels {
				if strings.EqualFold(level.Name, h) {
					cols.rates[i] = level
					break
				}
			}
		}
	}
	var missing []string
	if cols.name < 0 {
		missing = append(missing, "name")
	}
	if cols.currency < 0 {
		missing = append(missing, "currency")
	}
	if len(missing) > 0 {
		return productColumns{}, &MissingHeadersError{Headers: missing}
	}
	return cols, nil
}

func parseProductRow(record []string, cols productColumns, row int) (products.CreateProductRequest, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}

	name := textx.CleanInline(cell(cols.name))
	if name == "" {
		return products.CreateProductRequest{}, &RowError{Row: row, Column: "name", Reason: "name is required"}
	}
	rawCurrency := textx.CleanInline(cell(cols.currency))
	if rawCurrency == "" {
		return products.CreateProductRequest{}, &RowError{Row: row, Column: "currency", Reason: "currency is required"}
	}
	currency, err := textx.NormalizeCurrency(rawCurrency)
	if err != nil {
		return products.CreateProductRequest{}, &RowError{Row: row, Column: "currency", Value: rawCurrency, Reason: "invalid currency code"}
	}

	req := products.CreateProductRequest{Name: name, Currency: currency}
	if v := cell(cols.sku); v != "" {
		req.SKU = &v
	}
	if v := cell(cols.description); v != "" {
		req.Description = &v
	}
	if v := cell(cols.units); v != "" {
		req.Units = &v
	}

	for i := 0; i < len(record); i++ {
		level, ok := cols.rates[i]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(cell(i))
		if raw == "" {
			continue
		}
		cents, err := textx.ParseMoney(raw)
		if err != nil {
			return products.CreateProductRequest{}, &RowError{
				Row: row, Column: level.Name, Value: raw, Reason: "invalid amount",
			}
		}
		req.Rates = append(req.Rates, products.RateInput{PriceLevelID: level.ID, PriceCents: cents})
	}
	return req, nil
}
