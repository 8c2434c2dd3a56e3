package pricelevels

import "time"

// PriceLevel is a named pricing tier ("Retail", "Wholesale"). Its name is
// also the column key the product importer matches rate columns against.
type PriceLevel struct {
	ID        int64     `json:"id"`
	HubID     int64     `json:"hub_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePriceLevelRequest is the payload for creating a price level.
type CreatePriceLevelRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdatePriceLevelRequest is the payload for renaming a price level.
type UpdatePriceLevelRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
