package api

import (
	"context"
	"time"
)

// Document is one ingested file as the backend reports it.
type Document struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Pages      int       `json:"pages"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ListDocuments fetches one page of documents.
func (c *Client) ListDocuments(ctx context.Context, p ListParams) (Page[Document], error) {
	var page Page[Document]
	err := c.get(ctx, "/api/documents", p.query(), &page)
	return page, err
}
