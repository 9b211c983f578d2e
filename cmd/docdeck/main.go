package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rkeel/docdeck/internal/api"
	"github.com/rkeel/docdeck/internal/config"
	"github.com/rkeel/docdeck/internal/history"
	"github.com/rkeel/docdeck/internal/realtime"
	"github.com/rkeel/docdeck/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
		log.Fatalf("mkdir history dir: %v", err)
	}

	if err := history.RunMigrations(cfg.History.Path, "internal/history/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Fatalf("open history db: %v", err)
	}
	defer db.Close()

	events := history.NewEventRepo(db)

	client, err := api.New(cfg.Server.URL, cfg.Token())
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	channel := realtime.NewChannel(realtime.Options{
		Endpoint:             cfg.WSEndpoint(),
		Token:                cfg.Token(),
		ConnectTimeout:       cfg.Realtime.ConnectTimeout,
		HeartbeatInterval:    cfg.Realtime.HeartbeatInterval,
		BaseDelay:            cfg.Realtime.BaseDelay,
		MaxDelay:             cfg.Realtime.MaxDelay,
		MaxReconnectAttempts: cfg.Realtime.MaxReconnects,
		QueueLimit:           cfg.Realtime.QueueLimit,
	})
	defer channel.Disconnect()

	p := tea.NewProgram(tui.New(ctx, cfg, client, channel, events), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
