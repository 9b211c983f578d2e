package api

import (
	"context"
	"time"
)

// ClientAccount is one portal client organization.
type ClientAccount struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Documents int       `json:"documents"`
	CreatedAt time.Time `json:"created_at"`
}

// ListClients fetches one page of client accounts.
func (c *Client) ListClients(ctx context.Context, p ListParams) (Page[ClientAccount], error) {
	var page Page[ClientAccount]
	err := c.get(ctx, "/api/clients", p.query(), &page)
	return page, err
}
