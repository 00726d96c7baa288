package shared

// Page size bounds for list endpoints
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter is the list query every repository accepts. OrderBy and the keys of
// Filters are checked against a per-table whitelist before reaching SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter is the first page, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

// WithPageSize clamps n into [1, MaxPageSize]
func (f Filter) WithPageSize(n int) Filter {
	switch {
	case n < 1:
		n = DefaultPageSize
	case n > MaxPageSize:
		n = MaxPageSize
	}
	f.PageSize = n
	return f
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
