package table

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the widget key bindings.
type KeyMap struct {
	CursorUp      key.Binding
	CursorDown    key.Binding
	PrevCol       key.Binding
	NextCol       key.Binding
	ToggleSort    key.Binding
	PrevPage      key.Binding
	NextPage      key.Binding
	CyclePageSize key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		CursorUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		CursorDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevCol:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		NextCol:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		ToggleSort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		PrevPage:      key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "prev page")),
		NextPage:      key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),
		CyclePageSize: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "page size")),
	}
}
