package pagination

import "strconv"

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params is a normalised page request. Page is 1-based.
type Params struct {
	Page    int
	PerPage int
}

// Parse builds Params from raw query-string values, clamping out-of-range
// input instead of rejecting it.
func Parse(pageStr, perPageStr string) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(perPageStr); err == nil && n > 0 {
		p.PerPage = n
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

// Page is one page of results plus the counts clients need to paginate.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// NewPage wraps items in a Page envelope, deriving TotalPages from total.
func NewPage[T any](items []T, total int64, params Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage != 0 {
		totalPages++
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	}
}
