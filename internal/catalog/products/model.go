package products

import "time"

// Product is a hub-scoped catalog item. Rates is the product's full set of
// price-level rates; it is only ever mutated as a whole (full replace).
type Product struct {
	ID          int64     `json:"id"`
	HubID       int64     `json:"hub_id"`
	Name        string    `json:"name"`
	SKU         *string   `json:"sku,omitempty"`
	Description *string   `json:"description,omitempty"`
	Units       *string   `json:"units,omitempty"`
	Currency    string    `json:"currency"`
	IsArchived  bool      `json:"is_archived"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Rates       []Rate    `json:"price_levels"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rate is a product's price under one price level, in integer smallest
// currency units.
type Rate struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	PriceLevelID int64     `json:"price_level_id"`
	PriceCents   int64     `json:"price_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RateInput is one (price level, amount) pair for rate replacement.
type RateInput struct {
	PriceLevelID int64 `json:"price_level_id" validate:"required,gt=0"`
	PriceCents   int64 `json:"price_cents" validate:"gte=0"`
}
