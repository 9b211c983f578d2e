package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Realtime RealtimeConfig
	UI       UIConfig
	History  HistoryConfig
}

// ServerConfig holds backend connection settings.
type ServerConfig struct {
	URL      string `mapstructure:"url"`
	WSPath   string `mapstructure:"ws_path"`
	Token    string `mapstructure:"token"`
	TokenEnv string `mapstructure:"token_env"`
}

// RealtimeConfig holds channel settings.
type RealtimeConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	BaseDelay         time.Duration `mapstructure:"base_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	MaxReconnects     int           `mapstructure:"max_reconnects"`
	QueueLimit        int           `mapstructure:"queue_limit"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize int `mapstructure:"page_size"`
	Overscan int `mapstructure:"overscan"`
}

// HistoryConfig holds the local journal settings.
type HistoryConfig struct {
	Path string
	Keep int
}

// Load reads configuration from file and env. Env var overrides use prefix DOCDECK_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.url", "http://localhost:8000")
	v.SetDefault("server.ws_path", "/ws")
	v.SetDefault("server.token", "")
	v.SetDefault("server.token_env", "DOCDECK_TOKEN")
	v.SetDefault("realtime.connect_timeout", "5s")
	v.SetDefault("realtime.heartbeat_interval", "30s")
	v.SetDefault("realtime.base_delay", "1s")
	v.SetDefault("realtime.max_delay", "30s")
	v.SetDefault("realtime.max_reconnects", 5)
	v.SetDefault("realtime.queue_limit", 100)
	v.SetDefault("ui.page_size", 25)
	v.SetDefault("ui.overscan", 5)
	v.SetDefault("history.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "docdeck", "history.db"))
	v.SetDefault("history.keep", 500)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("DOCDECK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "docdeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DOCDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Token resolves the bearer token: environment first, then the config file.
func (c Config) Token() string {
	if env := strings.TrimSpace(c.Server.TokenEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.Server.Token)
}

// WSEndpoint derives the websocket URL from the backend base URL.
func (c Config) WSEndpoint() string {
	u := strings.TrimRight(c.Server.URL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + c.Server.WSPath
}

// Save writes the provided config to disk, creating the config directory if needed.
// This is primarily used by the TUI settings view for non-sensitive preferences.
// The token is stored in plain text in the config file; encourage users to prefer env vars.
func Save(cfg Config) error {
	path := os.Getenv("DOCDECK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "docdeck", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.ws_path", cfg.Server.WSPath)
	v.Set("server.token", cfg.Server.Token)
	v.Set("server.token_env", cfg.Server.TokenEnv)
	v.Set("realtime.connect_timeout", cfg.Realtime.ConnectTimeout.String())
	v.Set("realtime.heartbeat_interval", cfg.Realtime.HeartbeatInterval.String())
	v.Set("realtime.base_delay", cfg.Realtime.BaseDelay.String())
	v.Set("realtime.max_delay", cfg.Realtime.MaxDelay.String())
	v.Set("realtime.max_reconnects", cfg.Realtime.MaxReconnects)
	v.Set("realtime.queue_limit", cfg.Realtime.QueueLimit)
	v.Set("ui.page_size", cfg.UI.PageSize)
	v.Set("ui.overscan", cfg.UI.Overscan)
	v.Set("history.path", cfg.History.Path)
	v.Set("history.keep", cfg.History.Keep)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
