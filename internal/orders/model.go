package orders

import "time"

// Order statuses. Orders start open; status transitions are free-form
// scalar edits, there is no workflow engine.
const (
	StatusOpen      = "open"
	StatusFulfilled = "fulfilled"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID           int64     `json:"id"`
	HubID        int64     `json:"hub_id"`
	Reference    string    `json:"reference"`
	CustomerName *string   `json:"customer_name,omitempty"`
	Status       string    `json:"status"`
	Lines        []Line    `json:"products"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Line is an immutable snapshot of a product at order time. Later edits to
// the product never change it; ProductID is informational and may dangle
// after the product is deleted.
type Line struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   *int64  `json:"product_id,omitempty"`
	Name        string  `json:"name"`
	SKU         *string `json:"sku,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  int64   `json:"price_cents"`
	Currency    string  `json:"currency"`
	Quantity    int64   `json:"quantity"`
}

// LineInput names a product and one of its price levels; the service
// resolves both in the caller's hub and snapshots the result.
type LineInput struct {
	ProductID    int64 `json:"product_id" validate:"required,gt=0"`
	PriceLevelID int64 `json:"price_level_id" validate:"required,gt=0"`
	Quantity     int64 `json:"quantity" validate:"required,gt=0"`
}
