package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DefaultOverscan is how many extra rows are rendered either side of the
// visible window when virtualization is on.
const DefaultOverscan = 5

var defaultPageSizes = []int{10, 25, 50, 100}

const (
	sortAscMarker  = " ▲"
	sortDescMarker = " ▼"
)

// Styles are the lipgloss styles for widget chrome.
type Styles struct {
	Header      lipgloss.Style
	FocusHeader lipgloss.Style
	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	Footer      lipgloss.Style
	Empty       lipgloss.Style
	Loading     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		FocusHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")).Underline(true),
		Row:         lipgloss.NewStyle(),
		SelectedRow: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")),
		Footer:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Empty:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Loading:     lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
	}
}

// Model renders rows of T. Data, Page, PageSize and Total are caller-owned:
// the widget only displays them and reports change requests through
// OnChange. Sort state is kept solely to render the active indicator.
type Model[T any] struct {
	Columns []Column[T]
	Data    []T

	Page     int // 1-based
	PageSize int
	Total    int
	// PageSizes is the cycle order for the page-size key.
	PageSizes []int

	// OnChange is invoked with the full pagination descriptor whenever the
	// user requests a different sort, page, or page size.
	OnChange func(PageRequest) tea.Cmd

	Loading      bool
	EmptyMessage string

	// Virtualize limits rendering to the rows intersecting the viewport
	// plus Overscan either side. Purely a rendering optimization.
	Virtualize bool
	Overscan   int

	// Filters ride along unchanged on every PageRequest.
	Filters map[string]string

	KeyMap KeyMap
	Styles Styles

	width    int
	height   int
	cursor   int
	offset   int
	focusCol int
	sortBy   string
	order    Order
	spin     spinner.Model
}

// New builds a widget with default key bindings, styles, and page sizes.
func New[T any](cols []Column[T]) Model[T] {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return Model[T]{
		Columns:      cols,
		Page:         1,
		PageSize:     defaultPageSizes[1],
		PageSizes:    append([]int(nil), defaultPageSizes...),
		Overscan:     DefaultOverscan,
		EmptyMessage: "no rows",
		KeyMap:       DefaultKeyMap(),
		Styles:       DefaultStyles(),
		spin:         s,
	}
}

// SetSize tells the widget how much room it has, in cells.
func (m *Model[T]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampScroll()
}

// SetData replaces the current page of rows and the result total.
func (m *Model[T]) SetData(rows []T, total int) {
	m.Data = rows
	m.Total = total
	if m.cursor >= len(rows) {
		m.cursor = 0
		m.offset = 0
	}
	m.clampScroll()
}

// SetCursor jumps the row cursor, clamped to the current page.
func (m *Model[T]) SetCursor(i int) {
	if i < 0 {
		i = 0
	}
	if n := len(m.Data); n > 0 && i >= n {
		i = n - 1
	}
	m.cursor = i
	m.clampScroll()
}

// Cursor returns the selected row index within Data, -1 when empty.
func (m Model[T]) Cursor() int {
	if len(m.Data) == 0 {
		return -1
	}
	return m.cursor
}

// Sort returns the active sort indicator state.
func (m Model[T]) Sort() (string, Order) { return m.sortBy, m.order }

// Tick starts the loading spinner; batch it with the command that sets
// Loading.
func (m Model[T]) Tick() tea.Cmd { return m.spin.Tick }

func (m Model[T]) Update(msg tea.Msg) (Model[T], tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case spinner.TickMsg:
		if m.Loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.CursorUp):
			m.moveCursor(-1)
		case key.Matches(msg, m.KeyMap.CursorDown):
			m.moveCursor(1)
		case key.Matches(msg, m.KeyMap.PrevCol):
			m.moveFocus(-1)
		case key.Matches(msg, m.KeyMap.NextCol):
			m.moveFocus(1)
		case key.Matches(msg, m.KeyMap.ToggleSort):
			return m.toggleSort()
		case key.Matches(msg, m.KeyMap.NextPage):
			return m.changePage(1)
		case key.Matches(msg, m.KeyMap.PrevPage):
			return m.changePage(-1)
		case key.Matches(msg, m.KeyMap.CyclePageSize):
			return m.cyclePageSize()
		}
	}
	return m, nil
}

func (m *Model[T]) moveCursor(delta int) {
	n := len(m.Data)
	if n == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	m.clampScroll()
}

func (m *Model[T]) moveFocus(delta int) {
	n := len(m.Columns)
	if n == 0 {
		return
	}
	m.focusCol += delta
	if m.focusCol < 0 {
		m.focusCol = 0
	}
	if m.focusCol >= n {
		m.focusCol = n - 1
	}
}

// toggleSort cycles the focused sortable column ascending then descending;
// sorting a different column starts over at ascending.
func (m Model[T]) toggleSort() (Model[T], tea.Cmd) {
	if len(m.Columns) == 0 {
		return m, nil
	}
	col := m.Columns[m.focusCol]
	if !col.Sortable {
		return m, nil
	}
	if m.sortBy == col.ID && m.order == Asc {
		m.order = Desc
	} else {
		m.sortBy = col.ID
		m.order = Asc
	}
	return m, m.emit(m.Page, m.PageSize)
}

func (m Model[T]) changePage(delta int) (Model[T], tea.Cmd) {
	page := m.Page + delta
	if page < 1 || page > TotalPages(m.Total, m.PageSize) {
		return m, nil
	}
	m.Page = page
	m.cursor = 0
	m.offset = 0
	return m, m.emit(page, m.PageSize)
}

// cyclePageSize advances to the next configured page size and always
// requests page 1.
func (m Model[T]) cyclePageSize() (Model[T], tea.Cmd) {
	sizes := m.PageSizes
	if len(sizes) == 0 {
		return m, nil
	}
	idx := 0
	for i, s := range sizes {
		if s == m.PageSize {
			idx = i
			break
		}
	}
	m.PageSize = sizes[(idx+1)%len(sizes)]
	m.Page = 1
	m.cursor = 0
	m.offset = 0
	return m, m.emit(1, m.PageSize)
}

func (m Model[T]) emit(page, size int) tea.Cmd {
	if m.OnChange == nil {
		return nil
	}
	return m.OnChange(PageRequest{
		Page:     page,
		PageSize: size,
		SortBy:   m.sortBy,
		Order:    m.order,
		Filters:  m.Filters,
	})
}

// rowBudget is how many row lines fit between header and footer.
func (m Model[T]) rowBudget() int {
	h := m.height
	if h <= 0 {
		h = 22
	}
	budget := h - 2
	if budget < 1 {
		budget = 1
	}
	return budget
}

// window returns the half-open row range to mount. With virtualization the
// range is the visible rows plus Overscan either side; otherwise all rows.
func (m Model[T]) window() (start, end int) {
	n := len(m.Data)
	if !m.Virtualize {
		return 0, n
	}
	visible := m.rowBudget()
	if n <= visible {
		return 0, n
	}
	start = m.offset - m.Overscan
	if start < 0 {
		start = 0
	}
	end = m.offset + visible + m.Overscan
	if end > n {
		end = n
	}
	return start, end
}

func (m *Model[T]) clampScroll() {
	visible := m.rowBudget()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model[T]) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	if len(m.Data) == 0 {
		if m.Loading {
			b.WriteString(m.Styles.Loading.Render(m.spin.View() + " loading"))
		} else {
			b.WriteString(m.Styles.Empty.Render(m.EmptyMessage))
		}
		b.WriteByte('\n')
		b.WriteString(m.renderFooter())
		return b.String()
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteByte('\n')
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model[T]) renderHeader() string {
	cells := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		title := col.Title
		if col.ID == m.sortBy {
			switch m.order {
			case Asc:
				title += sortAscMarker
			case Desc:
				title += sortDescMarker
			}
		}
		style := m.Styles.Header
		if i == m.focusCol {
			style = m.Styles.FocusHeader
		}
		cells[i] = style.Render(pad(title, col.Width))
	}
	return strings.Join(cells, " ")
}

func (m Model[T]) renderRow(i int) string {
	item := m.Data[i]
	cells := make([]string, len(m.Columns))
	for c, col := range m.Columns {
		cells[c] = pad(col.Render(item), col.Width)
	}
	line := strings.Join(cells, " ")
	if i == m.cursor {
		return m.Styles.SelectedRow.Render(line)
	}
	return m.Styles.Row.Render(line)
}

func (m Model[T]) renderFooter() string {
	pages := TotalPages(m.Total, m.PageSize)
	parts := []string{
		fmt.Sprintf("page %d/%d", m.Page, pages),
		fmt.Sprintf("%d/page", m.PageSize),
		fmt.Sprintf("%d items", m.Total),
	}
	if m.Loading && len(m.Data) > 0 {
		parts = append(parts, m.spin.View()+" refreshing")
	}
	return m.Styles.Footer.Render(strings.Join(parts, " · "))
}

// pad truncates or right-pads a cell to the column width, ANSI-aware.
func pad(s string, width int) string {
	if width <= 0 {
		return s
	}
	s = ansi.Truncate(s, width, "…")
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
