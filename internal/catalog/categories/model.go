package categories

import "time"

// Category is a node of a hub's category forest. ParentID, when set, always
// references a category in the same hub; the parent edges within one hub
// never form a cycle.
type Category struct {
	ID          int64      `json:"id"`
	HubID       int64      `json:"hub_id"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	IsArchived  bool       `json:"is_archived"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TreeNode is a category with its resolved children, as served by Tree.
type TreeNode struct {
	Category
	Children []*TreeNode `json:"children"`
}
