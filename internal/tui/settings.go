package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rkeel/docdeck/internal/config"
)

// settingsRow is one adjustable preference. adjust moves the value by delta
// steps and clamps at the bounds.
type settingsRow struct {
	label  string
	value  func(a *App) string
	adjust func(a *App, delta int)
}

var settingsRows = []settingsRow{
	{
		label: "page size",
		value: func(a *App) string { return fmt.Sprintf("%d", a.cfg.UI.PageSize) },
		adjust: func(a *App, delta int) {
			sizes := a.queueTable.PageSizes
			idx := 0
			for i, s := range sizes {
				if s == a.cfg.UI.PageSize {
					idx = i
					break
				}
			}
			a.cfg.UI.PageSize = sizes[(idx+delta+len(sizes))%len(sizes)]
			a.applyTableSettings()
		},
	},
	{
		label: "overscan",
		value: func(a *App) string { return fmt.Sprintf("%d", a.cfg.UI.Overscan) },
		adjust: func(a *App, delta int) {
			a.cfg.UI.Overscan = clampInt(a.cfg.UI.Overscan+delta, 0, 20)
			a.applyTableSettings()
		},
	},
	{
		label: "journal keep",
		value: func(a *App) string { return fmt.Sprintf("%d", a.cfg.History.Keep) },
		adjust: func(a *App, delta int) {
			a.cfg.History.Keep = clampInt(a.cfg.History.Keep+delta*100, 100, 5000)
		},
	},
	{
		label: "max reconnects",
		value: func(a *App) string {
			if a.cfg.Realtime.MaxReconnects < 0 {
				return "off"
			}
			return fmt.Sprintf("%d", a.cfg.Realtime.MaxReconnects)
		},
		adjust: func(a *App, delta int) {
			// -1 disables automatic reconnection
			a.cfg.Realtime.MaxReconnects = clampInt(a.cfg.Realtime.MaxReconnects+delta, -1, 10)
		},
	},
	{
		label: "heartbeat interval",
		value: func(a *App) string { return a.cfg.Realtime.HeartbeatInterval.String() },
		adjust: func(a *App, delta int) {
			v := a.cfg.Realtime.HeartbeatInterval + time.Duration(delta)*5*time.Second
			if v < 5*time.Second {
				v = 5 * time.Second
			}
			if v > 2*time.Minute {
				v = 2 * time.Minute
			}
			a.cfg.Realtime.HeartbeatInterval = v
		},
	},
}

// applyTableSettings pushes the UI preferences onto the live tables. A new
// page size restarts each table at its first page.
func (a *App) applyTableSettings() {
	a.queueTable.PageSize, a.queueTable.Page = a.cfg.UI.PageSize, 1
	a.docsTable.PageSize, a.docsTable.Page = a.cfg.UI.PageSize, 1
	a.clientTable.PageSize, a.clientTable.Page = a.cfg.UI.PageSize, 1
	a.queueTable.Overscan = a.cfg.UI.Overscan
	a.docsTable.Overscan = a.cfg.UI.Overscan
	a.clientTable.Overscan = a.cfg.UI.Overscan
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case "down", "j":
		if a.settingsCursor < len(settingsRows)-1 {
			a.settingsCursor++
		}
	case "left", "h":
		settingsRows[a.settingsCursor].adjust(a, -1)
	case "right", "l":
		settingsRows[a.settingsCursor].adjust(a, 1)
	case "enter":
		return a, a.saveConfigCmd()
	}
	return a, nil
}

func (a *App) saveConfigCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg("config saved (connection settings apply on restart)")
	}
}

func (a *App) renderSettings() string {
	lines := []string{panelTitleStyle.Render("Settings"), ""}
	for i, row := range settingsRows {
		marker := "  "
		label := mutedStyle.Render(fmt.Sprintf("%-20s", row.label))
		if i == a.settingsCursor {
			marker = keyStyle.Render("▸ ")
			label = metricStyle.Render(fmt.Sprintf("%-20s", row.label))
		}
		lines = append(lines, marker+label+metricStyle.Render(row.value(a)))
	}
	lines = append(lines, "", mutedStyle.Render("h/l adjust · enter save"))
	return strings.Join(lines, "\n")
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
