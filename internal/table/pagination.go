package table

// Order is the active sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// PageRequest is the full pagination descriptor reported on every sort,
// page, or page-size change. Page is 1-based. A page-size change always
// carries Page=1; callers never need to detect the reset themselves.
type PageRequest struct {
	Page     int
	PageSize int
	SortBy   string
	Order    Order
	Filters  map[string]string
}

// TotalPages returns how many pages the given total spans, at least 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	n := (total + pageSize - 1) / pageSize
	if n < 1 {
		n = 1
	}
	return n
}
