package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// PageSize is the fixed number of rows on a client-side paged list.
const PageSize = 10

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. Page is clamped into
// [1, TotalPages] so a stale page number never yields an empty slice of a
// non-empty list.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = PageSize
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset is the index of the first row on the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p Pagination) NextPage() int { return p.Page + 1 }

// Paginate slices items to the page described by p.
func Paginate[T any](items []T, p Pagination) []T {
	start := p.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// MatchesSearch reports whether any field contains search, ignoring case.
// An empty search matches everything.
func MatchesSearch(search string, fields ...string) bool {
	needle := cases.Fold().String(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(cases.Fold().String(f), needle) {
			return true
		}
	}
	return false
}

// Filter keeps the items whose fields match search.
func Filter[T any](items []T, search string, fields func(T) []string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if MatchesSearch(search, fields(item)...) {
			out = append(out, item)
		}
	}
	return out
}

// FilterAndPage filters first and then slices the filtered set into the
// requested page.
func FilterAndPage[T any](items []T, search string, page int, fields func(T) []string) ([]T, Pagination) {
	filtered := Filter(items, search, fields)
	p := NewPagination(page, PageSize, len(filtered))
	return Paginate(filtered, p), p
}
