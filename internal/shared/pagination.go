package shared

// Page limits applied to every paginated listing. Out-of-range values are
// clamped, never rejected.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest carries 1-based pagination parameters.
type PageRequest struct {
	Number int
	Size   int
}

// Clamp normalises the request into valid bounds.
func (p PageRequest) Clamp() PageRequest {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the 0-based slice offset for the page.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// PagedResponse wraps a page of results with its pre-pagination total.
type PagedResponse[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// NewPagedResponse slices items for the requested page. TotalCount always
// reflects the full filtered set.
func NewPagedResponse[T any](items []T, page PageRequest) PagedResponse[T] {
	page = page.Clamp()
	total := len(items)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	data := items[start:end]
	if data == nil {
		data = []T{}
	}
	return PagedResponse[T]{
		Data:       data,
		TotalCount: total,
		PageNumber: page.Number,
		PageSize:   page.Size,
	}
}
