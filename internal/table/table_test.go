package table

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type testRow struct {
	name   string
	pages  int
	status string
}

func testColumns() []Column[testRow] {
	return []Column[testRow]{
		{ID: "name", Title: "Name", Width: 20, Sortable: true, Render: func(r testRow) string { return r.name }},
		{ID: "pages", Title: "Pages", Width: 8, Sortable: true, Render: func(r testRow) string { return fmt.Sprintf("%d", r.pages) }},
		{ID: "status", Title: "Status", Width: 12, Render: func(r testRow) string { return r.status }},
	}
}

func testRows(n int) []testRow {
	rows := make([]testRow, n)
	for i := range rows {
		rows[i] = testRow{name: fmt.Sprintf("doc-%04d", i), pages: i, status: "processed"}
	}
	return rows
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func capture(m *Model[testRow]) *[]PageRequest {
	reqs := &[]PageRequest{}
	m.OnChange = func(r PageRequest) tea.Cmd {
		*reqs = append(*reqs, r)
		return nil
	}
	return reqs
}

func TestSortToggleAscThenDesc(t *testing.T) {
	m := New(testColumns())
	reqs := capture(&m)
	m.SetData(testRows(5), 5)

	m, _ = m.Update(keyRune('s'))
	m, _ = m.Update(keyRune('s'))

	if len(*reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(*reqs))
	}
	if (*reqs)[0].SortBy != "name" || (*reqs)[0].Order != Asc {
		t.Fatalf("first sort = %+v, want name asc", (*reqs)[0])
	}
	if (*reqs)[1].SortBy != "name" || (*reqs)[1].Order != Desc {
		t.Fatalf("second sort = %+v, want name desc", (*reqs)[1])
	}
}

func TestSortDifferentColumnResetsToAsc(t *testing.T) {
	m := New(testColumns())
	reqs := capture(&m)
	m.SetData(testRows(5), 5)

	m, _ = m.Update(keyRune('s')) // name asc
	m, _ = m.Update(keyRune('s')) // name desc
	m, _ = m.Update(keyRune('l')) // focus pages
	m, _ = m.Update(keyRune('s'))

	last := (*reqs)[len(*reqs)-1]
	if last.SortBy != "pages" || last.Order != Asc {
		t.Fatalf("sort after column change = %+v, want pages asc", last)
	}
}

func TestSortIgnoredOnUnsortableColumn(t *testing.T) {
	m := New(testColumns())
	reqs := capture(&m)
	m.SetData(testRows(5), 5)

	m, _ = m.Update(keyRune('l'))
	m, _ = m.Update(keyRune('l')) // focus status, not sortable
	m, _ = m.Update(keyRune('s'))

	if len(*reqs) != 0 {
		t.Fatalf("requests = %d, want 0 for unsortable column", len(*reqs))
	}
}

func TestPageSizeChangeAlwaysEmitsPageOne(t *testing.T) {
	m := New(testColumns())
	reqs := capture(&m)
	m.SetData(testRows(25), 500)
	m.Page = 7

	m, _ = m.Update(keyRune('p'))

	if len(*reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(*reqs))
	}
	req := (*reqs)[0]
	if req.Page != 1 {
		t.Fatalf("page = %d, want 1 on page-size change", req.Page)
	}
	if req.PageSize != 50 {
		t.Fatalf("page size = %d, want 50 (next after 25)", req.PageSize)
	}
	if m.Page != 1 {
		t.Fatalf("model page = %d, want 1", m.Page)
	}
}

func TestPageNavigationBounds(t *testing.T) {
	m := New(testColumns())
	reqs := capture(&m)
	m.SetData(testRows(25), 100) // 4 pages at size 25

	m, _ = m.Update(keyRune('[')) // already at page 1
	if len(*reqs) != 0 {
		t.Fatalf("prev-page on first page emitted %d requests, want 0", len(*reqs))
	}

	m, _ = m.Update(keyRune(']'))
	if len(*reqs) != 1 || (*reqs)[0].Page != 2 {
		t.Fatalf("next page requests = %+v, want one request for page 2", *reqs)
	}

	m.Page = 4
	m, _ = m.Update(keyRune(']'))
	if len(*reqs) != 1 {
		t.Fatalf("next-page beyond last page emitted %d requests, want 1 total", len(*reqs))
	}
}

func TestSortRidesAlongOnPageChange(t *testing.T) {
	m := New(testColumns())
	reqs := capture(&m)
	m.SetData(testRows(25), 100)

	m, _ = m.Update(keyRune('s'))
	m, _ = m.Update(keyRune(']'))

	last := (*reqs)[len(*reqs)-1]
	if last.SortBy != "name" || last.Order != Asc {
		t.Fatalf("page change descriptor = %+v, want name asc carried along", last)
	}
}

func TestVirtualizationBoundsMountedRows(t *testing.T) {
	m := New(testColumns())
	m.Virtualize = true
	m.SetSize(80, 22) // 20 row lines between header and footer
	m.SetData(testRows(10000), 10000)

	bound := m.rowBudget() + 2*m.Overscan
	for _, cursor := range []int{0, 137, 5000, 9999} {
		m.SetCursor(cursor)
		start, end := m.window()
		if mounted := end - start; mounted > bound {
			t.Fatalf("cursor %d: mounted rows = %d, want <= %d", cursor, mounted, bound)
		}
		if cursor < start || cursor >= end {
			t.Fatalf("cursor %d outside mounted window [%d,%d)", cursor, start, end)
		}
		lines := strings.Count(m.View(), "\n") + 1
		if lines > bound+2 {
			t.Fatalf("cursor %d: rendered %d lines, want <= %d", cursor, lines, bound+2)
		}
	}
}

func TestVirtualizationDisabledRendersEverything(t *testing.T) {
	m := New(testColumns())
	m.SetSize(80, 22)
	m.SetData(testRows(100), 100)

	start, end := m.window()
	if start != 0 || end != 100 {
		t.Fatalf("window = [%d,%d), want [0,100)", start, end)
	}
	lines := strings.Count(m.View(), "\n") + 1
	if lines != 102 { // header + 100 rows + footer
		t.Fatalf("rendered %d lines, want 102", lines)
	}
}

func TestEmptyAndLoadingStates(t *testing.T) {
	m := New(testColumns())
	m.EmptyMessage = "no documents"
	m.SetSize(80, 22)

	if v := m.View(); !strings.Contains(v, "no documents") {
		t.Fatalf("empty view missing message:\n%s", v)
	}

	m.Loading = true
	if v := m.View(); strings.Contains(v, "no documents") {
		t.Fatalf("loading view shows empty message:\n%s", v)
	}

	// stale rows stay visible during refresh
	m.SetData(testRows(3), 3)
	v := m.View()
	if !strings.Contains(v, "doc-0000") {
		t.Fatalf("loading view cleared stale rows:\n%s", v)
	}
	if !strings.Contains(v, "refreshing") {
		t.Fatalf("loading view missing refresh indicator:\n%s", v)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{0, 25, 1},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{100, 25, 4},
		{100, 0, 1},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.size); got != c.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}
