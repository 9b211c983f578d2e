package tui

import (
	"fmt"

	"github.com/rkeel/docdeck/internal/api"
	"github.com/rkeel/docdeck/internal/table"
)

func queueColumns() []table.Column[api.QueueItem] {
	return []table.Column[api.QueueItem]{
		{ID: "name", Title: "Document", Width: 28, Sortable: true,
			Render: func(q api.QueueItem) string { return q.Name }},
		{ID: "stage", Title: "Stage", Width: 12, Sortable: true,
			Render: func(q api.QueueItem) string { return q.Stage }},
		{ID: "progress", Title: "Progress", Width: 10,
			Render: func(q api.QueueItem) string { return fmt.Sprintf("%3.0f%%", q.Progress*100) }},
		{ID: "attempts", Title: "Attempts", Width: 8,
			Render: func(q api.QueueItem) string { return fmt.Sprintf("%d", q.Attempts) }},
		{ID: "enqueued_at", Title: "Enqueued", Width: 16, Sortable: true,
			Render: func(q api.QueueItem) string { return q.EnqueuedAt.Local().Format("02 Jan 15:04") }},
		{ID: "error", Title: "Error", Width: 24,
			Render: func(q api.QueueItem) string { return q.Error }},
	}
}

func documentColumns() []table.Column[api.Document] {
	return []table.Column[api.Document]{
		{ID: "name", Title: "Name", Width: 30, Sortable: true,
			Render: func(d api.Document) string { return d.Name }},
		{ID: "status", Title: "Status", Width: 12, Sortable: true,
			Render: func(d api.Document) string { return d.Status }},
		{ID: "pages", Title: "Pages", Width: 6, Sortable: true,
			Render: func(d api.Document) string { return fmt.Sprintf("%d", d.Pages) }},
		{ID: "size_bytes", Title: "Size", Width: 9, Sortable: true,
			Render: func(d api.Document) string { return humanBytes(d.SizeBytes) }},
		{ID: "uploaded_at", Title: "Uploaded", Width: 16, Sortable: true,
			Render: func(d api.Document) string { return d.UploadedAt.Local().Format("02 Jan 15:04") }},
	}
}

func clientColumns() []table.Column[api.ClientAccount] {
	return []table.Column[api.ClientAccount]{
		{ID: "name", Title: "Client", Width: 24, Sortable: true,
			Render: func(c api.ClientAccount) string { return c.Name }},
		{ID: "email", Title: "Email", Width: 28,
			Render: func(c api.ClientAccount) string { return c.Email }},
		{ID: "active", Title: "Active", Width: 7,
			Render: func(c api.ClientAccount) string {
				if c.Active {
					return "yes"
				}
				return "no"
			}},
		{ID: "documents", Title: "Docs", Width: 6, Sortable: true,
			Render: func(c api.ClientAccount) string { return fmt.Sprintf("%d", c.Documents) }},
		{ID: "created_at", Title: "Since", Width: 12, Sortable: true,
			Render: func(c api.ClientAccount) string { return c.CreatedAt.Local().Format("02 Jan 2006") }},
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
