package table

// Column describes one column: a pure projection from a row to a cell
// string. Render must be side-effect free; the widget may call it any number
// of times for rows inside the rendered window.
type Column[T any] struct {
	ID       string
	Title    string
	Width    int
	Sortable bool
	Render   func(T) string
}
