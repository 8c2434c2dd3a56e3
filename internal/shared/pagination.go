package shared

const (
	// Default pagination
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 200
)

// ListFilters represents standard list filters shared by hub-scoped
// listings. The hub id is always passed separately; it is never optional.
type ListFilters struct {
	Page            int
	Limit           int
	Search          string
	IncludeArchived bool
	CategoryID      *int64
}

// Offset converts page/limit into a row offset, clamping at zero.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}

// Normalize fills defaults and clamps the limit.
func (f *ListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}
