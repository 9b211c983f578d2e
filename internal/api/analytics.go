package api

import "context"

// Summary is the dashboard roll-up the backend computes.
type Summary struct {
	TotalDocuments       int            `json:"total_documents"`
	ProcessedToday       int            `json:"processed_today"`
	FailedToday          int            `json:"failed_today"`
	QueueDepth           int            `json:"queue_depth"`
	AvgProcessingSeconds float64        `json:"avg_processing_seconds"`
	ByStatus             map[string]int `json:"by_status"`
}

// AnalyticsSummary fetches the dashboard roll-up.
func (c *Client) AnalyticsSummary(ctx context.Context) (Summary, error) {
	var s Summary
	err := c.get(ctx, "/api/analytics/summary", nil, &s)
	return s, err
}
