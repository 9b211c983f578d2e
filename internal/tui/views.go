package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rkeel/docdeck/internal/realtime"
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderTabs())
	b.WriteString("\n")
	switch a.state {
	case viewQueue:
		b.WriteString(a.queueTable.View())
	case viewDocuments:
		b.WriteString(a.docsTable.View())
	case viewClients:
		b.WriteString(a.clientTable.View())
	case viewActivity:
		b.WriteString(a.renderActivity())
	case viewAnalytics:
		b.WriteString(a.renderAnalytics())
	case viewSettings:
		b.WriteString(a.renderSettings())
	}
	b.WriteString("\n")
	b.WriteString(a.renderStatus())
	b.WriteString("\n")
	b.WriteString(a.renderHelp())
	return b.String()
}

func (a *App) renderHeader() string {
	var badge string
	switch a.connState {
	case realtime.StateConnected:
		badge = connUpStyle.Render("● " + a.connState.String())
	case realtime.StateConnecting, realtime.StateDisconnecting:
		badge = connBusyStyle.Render("● " + a.connState.String())
	default:
		badge = connDownStyle.Render("● " + a.connState.String())
	}
	return headerStyle.Render("docdeck") + " " + badge
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(allViews))
	for i, v := range allViews {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == a.state {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderActivity() string {
	if len(a.activity) == 0 {
		return mutedStyle.Render("No events journaled yet.")
	}
	lines := make([]string, 0, len(a.activity))
	for _, e := range a.activity {
		payload := e.Payload
		if len(payload) > 60 {
			payload = payload[:57] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s  %-22s %s",
			mutedStyle.Render(e.ReceivedAt.Local().Format("15:04:05")),
			metricStyle.Render(e.Name),
			mutedStyle.Render(payload)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderAnalytics() string {
	s := a.summary
	lines := []string{
		panelTitleStyle.Render("Today"),
		fmt.Sprintf("  %s %s", metricStyle.Render(fmt.Sprintf("%6d", s.ProcessedToday)), mutedStyle.Render("processed")),
		fmt.Sprintf("  %s %s", metricStyle.Render(fmt.Sprintf("%6d", s.FailedToday)), mutedStyle.Render("failed")),
		fmt.Sprintf("  %s %s", metricStyle.Render(fmt.Sprintf("%6d", s.QueueDepth)), mutedStyle.Render("queued")),
		fmt.Sprintf("  %s %s", metricStyle.Render(fmt.Sprintf("%5.1fs", s.AvgProcessingSeconds)), mutedStyle.Render("avg processing")),
		"",
		panelTitleStyle.Render(fmt.Sprintf("All documents (%d)", s.TotalDocuments)),
	}
	statuses := make([]string, 0, len(s.ByStatus))
	for name := range s.ByStatus {
		statuses = append(statuses, name)
	}
	sort.Strings(statuses)
	for _, name := range statuses {
		lines = append(lines, fmt.Sprintf("  %s %s",
			metricStyle.Render(fmt.Sprintf("%6d", s.ByStatus[name])),
			mutedStyle.Render(name)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderStatus() string {
	if a.jumping {
		return statusBarStyle.Render(":" + a.jumpBuf)
	}
	if a.status == "" {
		return statusBarStyle.Render("ready")
	}
	if a.statusErr {
		return statusErrStyle.Render(a.status)
	}
	return statusBarStyle.Render(a.status)
}

func (a *App) renderHelp() string {
	k := a.keys
	parts := []string{
		helpEntry(k.Queue), helpEntry(k.Documents), helpEntry(k.Clients),
		helpEntry(k.Activity), helpEntry(k.Analytics), helpEntry(k.Settings),
		helpEntry(k.Refresh), helpEntry(k.Reconnect), helpEntry(k.Jump), helpEntry(k.Quit),
	}
	return " " + strings.Join(parts, helpDescStyle.Render(" · "))
}

func helpEntry(b key.Binding) string {
	h := b.Help()
	return keyStyle.Render(h.Key) + " " + helpDescStyle.Render(h.Desc)
}
