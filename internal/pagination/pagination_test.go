package pagination

import (
	"encoding/json"
	"testing"
)

func pagesEqual(got []Item, expected []any) bool {
	if len(got) != len(expected) {
		return false
	}
	for i, want := range expected {
		switch v := want.(type) {
		case int:
			if got[i].Ellipsis || got[i].Number != v {
				return false
			}
		case string:
			if !got[i].Ellipsis {
				return false
			}
		}
	}
	return true
}

func TestVisiblePages(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		total    int
		expected []any
	}{
		{name: "single page", current: 1, total: 1, expected: []any{1}},
		{name: "two pages", current: 1, total: 2, expected: []any{1, 2}},
		{name: "middle of long list", current: 5, total: 10, expected: []any{1, "...", 3, 4, 5, 6, 7, "...", 10}},
		{name: "start of long list", current: 1, total: 10, expected: []any{1, 2, 3, "...", 10}},
		{name: "end of long list", current: 10, total: 10, expected: []any{1, "...", 8, 9, 10}},
		{name: "no gap needed", current: 3, total: 6, expected: []any{1, 2, 3, 4, 5, 6}},
		{name: "gap only at end", current: 2, total: 9, expected: []any{1, 2, 3, 4, "...", 9}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := VisiblePages(tc.current, tc.total, DefaultDelta)
			if !pagesEqual(got, tc.expected) {
				t.Fatalf("expected %v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestVisiblePagesSingleEllipsisPerGap(t *testing.T) {
	got := VisiblePages(50, 100, DefaultDelta)
	ellipses := 0
	for _, item := range got {
		if item.Ellipsis {
			ellipses++
		}
	}
	if ellipses != 2 {
		t.Fatalf("expected exactly 2 ellipses, got %d", ellipses)
	}
}

func TestGoToPageIgnoresOutOfRange(t *testing.T) {
	state := New(95, 10)
	if state.TotalPages != 10 {
		t.Fatalf("expected 10 pages, got %d", state.TotalPages)
	}

	state.GoToPage(7)
	if state.CurrentPage != 7 {
		t.Fatalf("expected page 7, got %d", state.CurrentPage)
	}

	state.GoToPage(0)
	state.GoToPage(11)
	state.GoToPage(-3)
	if state.CurrentPage != 7 {
		t.Fatalf("out-of-range requests must be ignored, got page %d", state.CurrentPage)
	}
}

func TestNextPrevBoundaries(t *testing.T) {
	state := New(25, 10)

	state.Prev()
	if state.CurrentPage != 1 {
		t.Fatalf("Prev on first page must be a no-op, got %d", state.CurrentPage)
	}

	state.Next()
	state.Next()
	state.Next()
	if state.CurrentPage != 3 {
		t.Fatalf("expected last page 3, got %d", state.CurrentPage)
	}

	state.Next()
	if state.CurrentPage != 3 {
		t.Fatalf("Next on last page must be a no-op, got %d", state.CurrentPage)
	}
}

func TestNewWithNoItems(t *testing.T) {
	state := New(0, 20)
	if state.TotalPages != 1 || state.CurrentPage != 1 {
		t.Fatalf("empty collection still has one page, got %+v", state)
	}
	if !pagesEqual(state.Visible(), []any{1}) {
		t.Fatalf("expected [1], got %+v", state.Visible())
	}
}

func TestItemJSON(t *testing.T) {
	data, err := json.Marshal([]Item{{Number: 1}, {Ellipsis: true}, {Number: 9}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `[1,"...",9]` {
		t.Fatalf("unexpected JSON %s", data)
	}
}
