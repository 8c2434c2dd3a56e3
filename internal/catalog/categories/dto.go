package categories

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parent_id" validate:"omitempty,gt=0"`
}

// UpdateCategoryRequest is the payload for editing name, description and
// the archive flag. Reparenting has its own endpoint.
type UpdateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	IsArchived  *bool   `json:"is_archived"`
}

// ReparentRequest moves a category under a new parent; a nil parent
// detaches it to the root of the forest.
type ReparentRequest struct {
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

// AssignChildrenRequest replaces the full child set of a parent category.
type AssignChildrenRequest struct {
	ChildIDs []int64 `json:"child_ids"`
}
