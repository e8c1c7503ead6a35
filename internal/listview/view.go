// Package listview derives the visible page of a collection from a search
// term and a 1-based page number.
package listview

import "strings"

// PageSize is the fixed number of items per page.
const PageSize = 10

type Query struct {
	Term string
	Page int
}

type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// Filter keeps the items whose name contains term, ignoring case. An empty
// term keeps everything. Relative order is preserved and the result never
// aliases items.
func Filter[T any](items []T, term string, name func(T) string) []T {
	out := make([]T, 0, len(items))
	if term == "" {
		return append(out, items...)
	}

	needle := strings.ToLower(term)
	for _, it := range items {
		if strings.Contains(strings.ToLower(name(it)), needle) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate returns items[(page-1)*size : (page-1)*size+size], clamped to the
// end of items. Out of range pages yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}

	// compare page counts first so huge page numbers cannot overflow start
	if page-1 >= (len(items)+size-1)/size {
		return []T{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return append([]T{}, items[start:end]...)
}

// View filters items by q.Term and cuts out page q.Page.
func View[T any](items []T, q Query, name func(T) string) Page[T] {
	filtered := Filter(items, q.Term, name)
	return Page[T]{
		Items:    Paginate(filtered, q.Page, PageSize),
		Page:     q.Page,
		PageSize: PageSize,
		Total:    len(filtered),
		Pages:    (len(filtered) + PageSize - 1) / PageSize,
	}
}
