package kernel

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginationOptions struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize clamps page and page size into their valid ranges
func (p PaginationOptions) Normalize() PaginationOptions {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset returns the number of rows to skip
func (p PaginationOptions) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
	Total  int `json:"total"`
	Pages  int `json:"pages"`
}

type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"page"`
	Empty bool `json:"empty"`
}

// NewPaginated builds a page envelope for items out of total matches
func NewPaginated[T any](items []T, pagination PaginationOptions, total int) *Paginated[T] {
	p := pagination.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Paginated[T]{
		Items: items,
		Page: Page{
			Number: p.Page,
			Size:   p.PageSize,
			Total:  total,
			Pages:  (total + p.PageSize - 1) / p.PageSize,
		},
		Empty: len(items) == 0,
	}
}

// PageOf slices an in-memory result set
func PageOf[T any](all []T, pagination PaginationOptions) *Paginated[T] {
	p := pagination.Normalize()
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.PageSize
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return NewPaginated(items, p, len(all))
}
