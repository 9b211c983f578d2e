package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Queue     key.Binding
	Documents key.Binding
	Clients   key.Binding
	Activity  key.Binding
	Analytics key.Binding
	Settings  key.Binding
	Refresh   key.Binding
	Reconnect key.Binding
	Jump      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Queue:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "queue")),
		Documents: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "documents")),
		Clients:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "clients")),
		Activity:  key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "activity")),
		Analytics: key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "analytics")),
		Settings:  key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "settings")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Reconnect: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "reconnect")),
		Jump:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "jump to view")),
	}
}
