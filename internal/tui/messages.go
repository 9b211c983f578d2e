package tui

import (
	"encoding/json"

	"github.com/rkeel/docdeck/internal/api"
	"github.com/rkeel/docdeck/internal/history"
	"github.com/rkeel/docdeck/internal/realtime"
	"github.com/rkeel/docdeck/internal/table"
)

type errMsg struct{ err error }

func (m errMsg) Error() string { return m.err.Error() }

type statusMsg string

type connStateMsg realtime.State

type queueMsg struct {
	page api.Page[api.QueueItem]
	req  table.PageRequest
}

type documentsMsg struct {
	page api.Page[api.Document]
	req  table.PageRequest
}

type clientsMsg struct {
	page api.Page[api.ClientAccount]
	req  table.PageRequest
}

type summaryMsg api.Summary

type activityMsg []history.Event

// realtimeMsg is one inbound channel event (or background channel error)
// bridged onto the program loop.
type realtimeMsg struct {
	name string
	data json.RawMessage
	err  error
}
