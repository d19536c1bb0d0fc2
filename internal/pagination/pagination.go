// Package pagination tracks server-paginated list state and computes
// the compact page selector rendered by the admin screens.
package pagination

import (
	"encoding/json"
	"strconv"
)

// DefaultDelta is the window radius around the current page.
const DefaultDelta = 2

// Item is one entry of the page selector: either a page number or an
// ellipsis marker standing in for a run of hidden pages.
type Item struct {
	Number   int
	Ellipsis bool
}

func (i Item) MarshalJSON() ([]byte, error) {
	if i.Ellipsis {
		return json.Marshal("...")
	}
	return []byte(strconv.Itoa(i.Number)), nil
}

// State tracks the position within a server-paginated collection.
type State struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	PageSize    int   `json:"pageSize"`
}

// New builds a State positioned on page 1. A non-positive page size
// falls back to 20.
func New(totalItems int64, pageSize int) *State {
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return &State{
		CurrentPage: 1,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PageSize:    pageSize,
	}
}

// GoToPage moves to page n. Out-of-range requests are ignored
// silently; the selector never navigates outside [1, TotalPages].
func (s *State) GoToPage(n int) {
	if n < 1 || n > s.TotalPages {
		return
	}
	s.CurrentPage = n
}

// Next advances one page, a no-op on the last page.
func (s *State) Next() {
	if s.CurrentPage < s.TotalPages {
		s.CurrentPage++
	}
}

// Prev steps back one page, a no-op on the first page.
func (s *State) Prev() {
	if s.CurrentPage > 1 {
		s.CurrentPage--
	}
}

// Offset returns the row offset of the current page for LIMIT/OFFSET
// queries.
func (s *State) Offset() int {
	return (s.CurrentPage - 1) * s.PageSize
}

// Visible returns the selector items for the current position.
func (s *State) Visible() []Item {
	return VisiblePages(s.CurrentPage, s.TotalPages, DefaultDelta)
}

// VisiblePages materializes the selector: page 1 and page total are
// always present, every page within current±delta (clamped to the
// interior) is shown, and a single ellipsis covers each gap.
func VisiblePages(current, total, delta int) []Item {
	if total < 1 {
		return []Item{}
	}

	items := []Item{{Number: 1}}
	if total == 1 {
		return items
	}

	low := current - delta
	if low < 2 {
		low = 2
	}
	high := current + delta
	if high > total-1 {
		high = total - 1
	}

	if low > 2 {
		items = append(items, Item{Ellipsis: true})
	}
	for page := low; page <= high; page++ {
		items = append(items, Item{Number: page})
	}
	if high < total-1 {
		items = append(items, Item{Ellipsis: true})
	}

	return append(items, Item{Number: total})
}
