package pagination

import "math"

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in default values when page or page_size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Slice returns the page of items selected by req, applying the defaults.
// A page past the end is empty but keeps the totals.
func Slice[T any](items []T, req PageRequest) PageResponse[T] {
	req.Defaults()
	start := min(req.Offset(), len(items))
	end := min(start+req.PageSize, len(items))
	return NewPageResponse(items[start:end], req.Page, req.PageSize, int64(len(items)))
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](p PageResponse[T], fn func(T) U) PageResponse[U] {
	out := make([]U, len(p.Data))
	for i, item := range p.Data {
		out[i] = fn(item)
	}
	return PageResponse[U]{
		Data:       out,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}
