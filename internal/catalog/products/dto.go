package products

// CreateProductRequest creates a product, optionally with its initial rate
// set. Creation and rate attachment commit together or not at all.
type CreateProductRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	SKU         *string     `json:"sku"`
	Description *string     `json:"description"`
	Units       *string     `json:"units"`
	Currency    string      `json:"currency" validate:"required"`
	CategoryID  *int64      `json:"category_id" validate:"omitempty,gt=0"`
	Rates       []RateInput `json:"price_levels" validate:"dive"`
}

// UpdateProductRequest is a field-level optional patch: nil means leave the
// field untouched. ClearCategory detaches the product from its category;
// it wins over CategoryID.
type UpdateProductRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	SKU           *string `json:"sku"`
	Description   *string `json:"description"`
	Units         *string `json:"units"`
	Currency      *string `json:"currency"`
	IsArchived    *bool   `json:"is_archived"`
	CategoryID    *int64  `json:"category_id" validate:"omitempty,gt=0"`
	ClearCategory bool    `json:"clear_category"`
}

// ReplaceRatesRequest full-replaces a product's rate set.
type ReplaceRatesRequest struct {
	Rates []RateInput `json:"price_levels" validate:"dive"`
}
