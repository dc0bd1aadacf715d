package domain

import (
	"fmt"
	"math"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a zero-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// Normalize applies the listing defaults: a non-positive size becomes
// DefaultPageSize and sizes above MaxPageSize are capped. A negative page is
// rejected.
func (r PageRequest) Normalize() (PageRequest, error) {
	if r.Page < 0 {
		return PageRequest{}, fmt.Errorf("%w: page must be >= 0", ErrValidation)
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	return r, nil
}

// Offset is the number of items skipped before this page. ok is false when
// the page lies beyond any addressable offset; such a page is always empty.
func (r PageRequest) Offset() (offset int, ok bool) {
	return PageOffset(r.Page, r.Size)
}

// PageOffset returns page*size for stores paging by offset. ok is false for
// a negative page, a non-positive size, or a product that overflows int.
func PageOffset(page, size int) (offset int, ok bool) {
	if page < 0 || size <= 0 || page > math.MaxInt/size {
		return 0, false
	}
	return page * size, true
}

// Page is one slice of an ordered listing plus the listing's total size.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// NewPage assembles a page, computing TotalPages from total and req.Size.
func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Size:       req.Size,
		TotalPages: pages,
	}
}
