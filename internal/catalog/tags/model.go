package tags

import "time"

// Tag is a hub-scoped label that products can carry.
type Tag struct {
	ID        int64     `json:"id"`
	HubID     int64     `json:"hub_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// SetProductTagsRequest full-replaces a product's tag links.
type SetProductTagsRequest struct {
	TagIDs []int64 `json:"tag_ids" validate:"dive,gt=0"`
}
