// Package tui is the docdeck console: a handful of views over the backend's
// REST endpoints, kept fresh by the realtime channel.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/rkeel/docdeck/internal/api"
	"github.com/rkeel/docdeck/internal/config"
	"github.com/rkeel/docdeck/internal/history"
	"github.com/rkeel/docdeck/internal/realtime"
	"github.com/rkeel/docdeck/internal/table"
)

type view string

const (
	viewQueue     view = "queue"
	viewDocuments view = "documents"
	viewClients   view = "clients"
	viewActivity  view = "activity"
	viewAnalytics view = "analytics"
	viewSettings  view = "settings"
)

var allViews = []view{viewQueue, viewDocuments, viewClients, viewActivity, viewAnalytics, viewSettings}

func viewNames() []string {
	names := make([]string, len(allViews))
	for i, v := range allViews {
		names[i] = string(v)
	}
	return names
}

// watchedEvents are the backend pushes that keep the queue, document, and
// activity views current.
var watchedEvents = []string{
	"queue.updated",
	"processing.failed",
	"document.ingested",
	"document.processed",
}

// App ties the views, the API client, the realtime channel, and the local
// event journal into one bubbletea model.
type App struct {
	ctx     context.Context
	cfg     config.Config
	api     *api.Client
	channel *realtime.Channel
	events  *history.EventRepo

	state     view
	width     int
	height    int
	status    string
	statusErr bool
	connState realtime.State
	jumping   bool
	jumpBuf   string
	keys      keyMap

	settingsCursor int

	queueTable  table.Model[api.QueueItem]
	docsTable   table.Model[api.Document]
	clientTable table.Model[api.ClientAccount]
	activity    []history.Event
	summary     api.Summary

	rt chan realtimeMsg
}

func New(ctx context.Context, cfg config.Config, client *api.Client, ch *realtime.Channel, events *history.EventRepo) *App {
	a := &App{
		ctx:     ctx,
		cfg:     cfg,
		api:     client,
		channel: ch,
		events:  events,
		state:   viewQueue,
		keys:    defaultKeyMap(),
		rt:      make(chan realtimeMsg, 64),
	}

	a.queueTable = newModel(cfg, queueColumns())
	a.docsTable = newModel(cfg, documentColumns())
	a.clientTable = newModel(cfg, clientColumns())
	a.queueTable.OnChange = func(r table.PageRequest) tea.Cmd { return a.loadQueue(r) }
	a.docsTable.OnChange = func(r table.PageRequest) tea.Cmd { return a.loadDocuments(r) }
	a.clientTable.OnChange = func(r table.PageRequest) tea.Cmd { return a.loadClients(r) }

	if ch != nil {
		for _, name := range watchedEvents {
			ch.On(name, func(event string, data json.RawMessage) {
				select {
				case a.rt <- realtimeMsg{name: event, data: data}:
				default:
					// UI is behind; the next refresh covers it
				}
			})
		}
		ch.OnError(func(err error) {
			select {
			case a.rt <- realtimeMsg{err: err}:
			default:
			}
		})
	}
	return a
}

func newModel[T any](cfg config.Config, cols []table.Column[T]) table.Model[T] {
	m := table.New(cols)
	m.Virtualize = true
	if cfg.UI.PageSize > 0 {
		m.PageSize = cfg.UI.PageSize
	}
	if cfg.UI.Overscan > 0 {
		m.Overscan = cfg.UI.Overscan
	}
	return m
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.connectCmd(),
		a.loadQueue(firstPage(a.queueTable)),
		a.loadSummary(),
		a.waitForEvent(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		body := a.bodyHeight()
		a.queueTable.SetSize(m.Width, body)
		a.docsTable.SetSize(m.Width, body)
		a.clientTable.SetSize(m.Width, body)
	case tea.KeyMsg:
		return a.handleKey(m)
	case connStateMsg:
		a.connState = realtime.State(m)
		if a.connState == realtime.StateConnected {
			a.status, a.statusErr = "connected", false
		}
	case errMsg:
		a.status, a.statusErr = m.err.Error(), true
		if a.channel != nil {
			a.connState = a.channel.State()
		}
		a.queueTable.Loading = false
		a.docsTable.Loading = false
		a.clientTable.Loading = false
	case statusMsg:
		a.status, a.statusErr = string(m), false
	case queueMsg:
		a.queueTable.Loading = false
		a.queueTable.Page, a.queueTable.PageSize = m.req.Page, m.req.PageSize
		a.queueTable.SetData(m.page.Items, m.page.Total)
	case documentsMsg:
		a.docsTable.Loading = false
		a.docsTable.Page, a.docsTable.PageSize = m.req.Page, m.req.PageSize
		a.docsTable.SetData(m.page.Items, m.page.Total)
	case clientsMsg:
		a.clientTable.Loading = false
		a.clientTable.Page, a.clientTable.PageSize = m.req.Page, m.req.PageSize
		a.clientTable.SetData(m.page.Items, m.page.Total)
	case summaryMsg:
		a.summary = api.Summary(m)
	case activityMsg:
		a.activity = m
	case realtimeMsg:
		return a.handleRealtime(m)
	default:
		// spinner ticks and other widget traffic
		var cmd tea.Cmd
		switch a.state {
		case viewQueue:
			a.queueTable, cmd = a.queueTable.Update(msg)
		case viewDocuments:
			a.docsTable, cmd = a.docsTable.Update(msg)
		case viewClients:
			a.clientTable, cmd = a.clientTable.Update(msg)
		}
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.jumping {
		return a.handleJumpKey(m)
	}
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Queue):
		a.state = viewQueue
		return a, a.refreshActive()
	case key.Matches(m, a.keys.Documents):
		a.state = viewDocuments
		return a, a.refreshActive()
	case key.Matches(m, a.keys.Clients):
		a.state = viewClients
		return a, a.refreshActive()
	case key.Matches(m, a.keys.Activity):
		a.state = viewActivity
		return a, a.refreshActive()
	case key.Matches(m, a.keys.Analytics):
		a.state = viewAnalytics
		return a, a.refreshActive()
	case key.Matches(m, a.keys.Settings):
		a.state = viewSettings
		return a, nil
	case key.Matches(m, a.keys.Refresh):
		return a, a.refreshActive()
	case key.Matches(m, a.keys.Reconnect):
		return a, a.connectCmd()
	case key.Matches(m, a.keys.Jump):
		a.jumping, a.jumpBuf = true, ""
		return a, nil
	}

	var cmd tea.Cmd
	switch a.state {
	case viewSettings:
		return a.handleSettingsKey(m)
	case viewQueue:
		a.queueTable, cmd = a.queueTable.Update(m)
		if cmd != nil {
			a.queueTable.Loading = true
			return a, tea.Batch(cmd, a.queueTable.Tick())
		}
	case viewDocuments:
		a.docsTable, cmd = a.docsTable.Update(m)
		if cmd != nil {
			a.docsTable.Loading = true
			return a, tea.Batch(cmd, a.docsTable.Tick())
		}
	case viewClients:
		a.clientTable, cmd = a.clientTable.Update(m)
		if cmd != nil {
			a.clientTable.Loading = true
			return a, tea.Batch(cmd, a.clientTable.Tick())
		}
	}
	return a, nil
}

func (a *App) handleJumpKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.jumping = false
	case tea.KeyEnter:
		a.jumping = false
		return a.jumpTo(a.jumpBuf)
	case tea.KeyBackspace:
		if len(a.jumpBuf) > 0 {
			a.jumpBuf = a.jumpBuf[:len(a.jumpBuf)-1]
		}
	case tea.KeyRunes:
		a.jumpBuf += string(m.Runes)
	}
	return a, nil
}

func (a *App) jumpTo(name string) (tea.Model, tea.Cmd) {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, v := range allViews {
		if string(v) == target {
			a.state = v
			return a, a.refreshActive()
		}
	}
	if alt, ok := closestView(target, viewNames()); ok {
		a.status, a.statusErr = fmt.Sprintf("unknown view %q (did you mean %q?)", target, alt), true
	} else {
		a.status, a.statusErr = fmt.Sprintf("unknown view %q", target), true
	}
	return a, nil
}

func (a *App) handleRealtime(m realtimeMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{a.waitForEvent()}
	if a.channel != nil {
		a.connState = a.channel.State()
	}
	if m.err != nil {
		a.status, a.statusErr = m.err.Error(), true
		return a, tea.Batch(cmds...)
	}
	cmds = append(cmds, a.recordEvent(m))
	switch m.name {
	case "queue.updated", "processing.failed":
		if a.state == viewQueue {
			cmds = append(cmds, a.loadQueue(currentRequest(a.queueTable)))
		}
	case "document.ingested", "document.processed":
		if a.state == viewDocuments {
			cmds = append(cmds, a.loadDocuments(currentRequest(a.docsTable)))
		}
	}
	if a.state == viewActivity {
		cmds = append(cmds, a.loadActivity())
	}
	return a, tea.Batch(cmds...)
}

func (a *App) refreshActive() tea.Cmd {
	switch a.state {
	case viewQueue:
		a.queueTable.Loading = true
		return tea.Batch(a.loadQueue(currentRequest(a.queueTable)), a.queueTable.Tick())
	case viewDocuments:
		a.docsTable.Loading = true
		return tea.Batch(a.loadDocuments(currentRequest(a.docsTable)), a.docsTable.Tick())
	case viewClients:
		a.clientTable.Loading = true
		return tea.Batch(a.loadClients(currentRequest(a.clientTable)), a.clientTable.Tick())
	case viewActivity:
		return a.loadActivity()
	case viewAnalytics:
		return a.loadSummary()
	}
	return nil
}

// commands

func (a *App) connectCmd() tea.Cmd {
	return func() tea.Msg {
		if a.channel == nil {
			return nil
		}
		if err := a.channel.Connect(a.ctx); err != nil {
			return errMsg{err}
		}
		return connStateMsg(realtime.StateConnected)
	}
}

func (a *App) loadQueue(req table.PageRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := a.api.ListQueue(a.ctx, listParams(req))
		if err != nil {
			return errMsg{err}
		}
		return queueMsg{page: page, req: req}
	}
}

func (a *App) loadDocuments(req table.PageRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := a.api.ListDocuments(a.ctx, listParams(req))
		if err != nil {
			return errMsg{err}
		}
		return documentsMsg{page: page, req: req}
	}
}

func (a *App) loadClients(req table.PageRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := a.api.ListClients(a.ctx, listParams(req))
		if err != nil {
			return errMsg{err}
		}
		return clientsMsg{page: page, req: req}
	}
}

func (a *App) loadSummary() tea.Cmd {
	return func() tea.Msg {
		s, err := a.api.AnalyticsSummary(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return summaryMsg(s)
	}
}

func (a *App) loadActivity() tea.Cmd {
	return func() tea.Msg {
		if a.events == nil {
			return activityMsg(nil)
		}
		recent, err := a.events.ListRecent(a.ctx, a.bodyHeight())
		if err != nil {
			return errMsg{err}
		}
		return activityMsg(recent)
	}
}

func (a *App) recordEvent(m realtimeMsg) tea.Cmd {
	return func() tea.Msg {
		if a.events == nil {
			return nil
		}
		e := history.Event{
			ID:         uuid.NewString(),
			Name:       m.name,
			Payload:    string(m.data),
			ReceivedAt: history.Now(),
		}
		if err := a.events.Insert(a.ctx, e); err != nil {
			return errMsg{fmt.Errorf("journal event: %w", err)}
		}
		keep := a.cfg.History.Keep
		if keep <= 0 {
			keep = 500
		}
		_ = a.events.Prune(a.ctx, keep)
		return nil
	}
}

func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.rt
		if !ok {
			return nil
		}
		return ev
	}
}

// helpers

func listParams(r table.PageRequest) api.ListParams {
	return api.ListParams{
		Page:     r.Page,
		PageSize: r.PageSize,
		SortBy:   r.SortBy,
		Order:    string(r.Order),
		Filters:  r.Filters,
	}
}

func firstPage[T any](m table.Model[T]) table.PageRequest {
	sortBy, order := m.Sort()
	return table.PageRequest{Page: 1, PageSize: m.PageSize, SortBy: sortBy, Order: order, Filters: m.Filters}
}

func currentRequest[T any](m table.Model[T]) table.PageRequest {
	sortBy, order := m.Sort()
	return table.PageRequest{Page: m.Page, PageSize: m.PageSize, SortBy: sortBy, Order: order, Filters: m.Filters}
}

func (a *App) bodyHeight() int {
	// header, tab bar, status bar, footer
	h := a.height - 4
	if h < 5 {
		h = 5
	}
	return h
}
