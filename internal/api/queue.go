package api

import (
	"context"
	"time"
)

// QueueItem is one document moving through the processing pipeline.
type QueueItem struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	Stage      string    `json:"stage"`
	Progress   float64   `json:"progress"` // 0..1
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	Error      string    `json:"error,omitempty"`
}

// ListQueue fetches one page of the processing queue.
func (c *Client) ListQueue(ctx context.Context, p ListParams) (Page[QueueItem], error) {
	var page Page[QueueItem]
	err := c.get(ctx, "/api/processing/queue", p.query(), &page)
	return page, err
}
