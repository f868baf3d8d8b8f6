package result

import (
	"encoding/json"
	"fmt"
)

// Page is one page of a larger result set.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
}

// NewPage builds a page. A nil items slice becomes empty so it encodes as [].
func NewPage[T any](items []T, currentPage, pageSize, totalCount int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, CurrentPage: currentPage, PageSize: pageSize, TotalCount: totalCount}
}

// TotalPages is ceil(TotalCount / PageSize).
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

func (p Page[T]) HasPreviousPage() bool { return p.CurrentPage > 1 }

func (p Page[T]) HasNextPage() bool { return p.CurrentPage < p.TotalPages() }

// Count is the number of items on this page.
func (p Page[T]) Count() int { return len(p.Items) }

// ItemsRange renders the position of this page, e.g. "11-20 of 100".
func (p Page[T]) ItemsRange() string {
	if p.TotalCount == 0 || len(p.Items) == 0 {
		return fmt.Sprintf("0-0 of %d", p.TotalCount)
	}
	start := (p.CurrentPage-1)*p.PageSize + 1
	return fmt.Sprintf("%d-%d of %d", start, start+len(p.Items)-1, p.TotalCount)
}

// MapPage converts the items of a page, keeping its paging data.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return Page[U]{Items: items, CurrentPage: p.CurrentPage, PageSize: p.PageSize, TotalCount: p.TotalCount}
}

// MarshalJSON includes the derived paging fields.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(struct {
		Items           []T    `json:"items"`
		CurrentPage     int    `json:"currentPage"`
		PageSize        int    `json:"pageSize"`
		TotalCount      int    `json:"totalCount"`
		TotalPages      int    `json:"totalPages"`
		HasPreviousPage bool   `json:"hasPreviousPage"`
		HasNextPage     bool   `json:"hasNextPage"`
		ItemsRange      string `json:"itemsRange"`
	}{items, p.CurrentPage, p.PageSize, p.TotalCount, p.TotalPages(), p.HasPreviousPage(), p.HasNextPage(), p.ItemsRange()})
}
