package tracking

import "context"

// ListFilter selects a page of orders that carry tracking metadata
type ListFilter struct {
	Page     int
	PageSize int
}

// Normalize clamps Page to [1, MaxPage] and PageSize to [1, MaxPageSize],
// using DefaultPageSize when unset
func (f ListFilter) Normalize() ListFilter {
	f.Page = min(max(f.Page, 1), MaxPage)
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	f.PageSize = min(f.PageSize, MaxPageSize)
	return f
}

// Offset returns the number of orders skipped before the page
func (f ListFilter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Repository reads and writes order tracking metadata
type Repository interface {
	// Get returns the tracking of orderID, empty when the order has none
	Get(ctx context.Context, orderID int64) (OrderTracking, error)
	// Save writes the given meta values of orderID
	Save(ctx context.Context, orderID int64, values map[string]string) error
	// List returns a page of tracked orders, newest order first, and the total count
	List(ctx context.Context, filter ListFilter) ([]OrderTracking, int64, error)
}
