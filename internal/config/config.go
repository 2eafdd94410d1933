package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Transports supported by the MCP server.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config is the top-level chatvolt-mcp configuration.
type Config struct {
	Chatvolt ChatvoltConfig      `yaml:"chatvolt"`
	Server   ServerConfig        `yaml:"server"`
	Tools    protocol.ToolFilter `yaml:"tools"`
	API      APIConfig           `yaml:"api"`
	Journal  JournalConfig       `yaml:"journal"`
	Alerts   AlertsConfig        `yaml:"alerts"`
	Docs     DocsConfig          `yaml:"docs"`
	Log      LogConfig           `yaml:"log"`
}

// ChatvoltConfig holds the remote API settings.
type ChatvoltConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the per-request timeout.
func (c ChatvoltConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"`          // stdio, sse or http
	Addr      string `yaml:"addr,omitempty"`     // listen address for sse and http
	BaseURL   string `yaml:"base_url,omitempty"` // public URL advertised by the SSE transport
}

// APIConfig holds admin REST API settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Key     string `yaml:"api_key"`
}

// JournalConfig holds call journal settings. An empty path disables the journal.
type JournalConfig struct {
	Path           string `yaml:"path"`
	RetentionHours int    `yaml:"retention_hours"`
	PruneSchedule  string `yaml:"prune_schedule"`
}

// Retention returns how long journal entries are kept; zero keeps them forever.
func (j JournalConfig) Retention() time.Duration {
	return time.Duration(j.RetentionHours) * time.Hour
}

// AlertsConfig holds Slack alert settings. An empty URL disables alerts.
type AlertsConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"`
	CooldownSeconds int    `yaml:"cooldown_seconds,omitempty"`
}

// DocsConfig holds documentation lookup settings.
type DocsConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Chatvolt.BaseURL == "" {
		c.Chatvolt.BaseURL = "https://api.chatvolt.ai"
	}
	if c.Chatvolt.TimeoutSeconds == 0 {
		c.Chatvolt.TimeoutSeconds = 60
	}
	if c.Server.Name == "" {
		c.Server.Name = "chatvolt-mcp"
	}
	if c.Server.Transport == "" {
		c.Server.Transport = TransportStdio
	}
	if c.Server.Addr == "" && c.Server.Transport != TransportStdio {
		c.Server.Addr = ":8000"
	}
	if c.API.Host == "" {
		c.API.Host = "127.0.0.1"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = "@every 1h"
	}
	if c.Alerts.CooldownSeconds == 0 {
		c.Alerts.CooldownSeconds = 300
	}
	if c.Docs.BaseURL == "" {
		c.Docs.BaseURL = "https://docs.chatvolt.ai"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load reads configuration from a YAML file. ${VAR} references are expanded
// from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv builds config from CHATVOLT_ environment variables. Variables
// in the given .env files (default ".env") are loaded first without
// overriding the real environment; missing files are ignored.
func LoadFromEnv(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	cfg := &Config{
		Chatvolt: ChatvoltConfig{
			APIKey:         os.Getenv("CHATVOLT_API_KEY"),
			BaseURL:        os.Getenv("CHATVOLT_BASE_URL"),
			TimeoutSeconds: getenvInt("CHATVOLT_TIMEOUT_SECONDS", 0),
		},
		Server: ServerConfig{
			Name:      os.Getenv("CHATVOLT_SERVER_NAME"),
			Transport: os.Getenv("CHATVOLT_TRANSPORT"),
			Addr:      os.Getenv("CHATVOLT_ADDR"),
			BaseURL:   os.Getenv("CHATVOLT_PUBLIC_URL"),
		},
		Tools: protocol.ToolFilter{
			Allow: splitList(os.Getenv("CHATVOLT_TOOLS_ALLOW")),
			Deny:  splitList(os.Getenv("CHATVOLT_TOOLS_DENY")),
		},
		API: APIConfig{
			Enabled: getenvBool("CHATVOLT_ADMIN_ENABLED", false),
			Host:    os.Getenv("CHATVOLT_ADMIN_HOST"),
			Port:    getenvInt("CHATVOLT_ADMIN_PORT", 0),
			Key:     os.Getenv("CHATVOLT_ADMIN_API_KEY"),
		},
		Journal: JournalConfig{
			Path:           os.Getenv("CHATVOLT_JOURNAL_PATH"),
			RetentionHours: getenvInt("CHATVOLT_JOURNAL_RETENTION_HOURS", 0),
			PruneSchedule:  os.Getenv("CHATVOLT_JOURNAL_PRUNE_SCHEDULE"),
		},
		Alerts: AlertsConfig{
			SlackWebhookURL: os.Getenv("CHATVOLT_SLACK_WEBHOOK_URL"),
			CooldownSeconds: getenvInt("CHATVOLT_ALERT_COOLDOWN_SECONDS", 0),
		},
		Docs: DocsConfig{BaseURL: os.Getenv("CHATVOLT_DOCS_BASE_URL")},
		Log:  LogConfig{Level: os.Getenv("CHATVOLT_LOG_LEVEL")},
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Chatvolt.APIKey == "" {
		errs = append(errs, "chatvolt.api_key is required")
	}
	if !strings.HasPrefix(c.Chatvolt.BaseURL, "http://") && !strings.HasPrefix(c.Chatvolt.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("chatvolt.base_url must be an http(s) URL, got %q", c.Chatvolt.BaseURL))
	}
	if c.Chatvolt.TimeoutSeconds < 0 {
		errs = append(errs, "chatvolt.timeout_seconds must not be negative")
	}

	switch c.Server.Transport {
	case TransportStdio:
	case TransportSSE, TransportHTTP:
		if c.Server.Addr == "" {
			errs = append(errs, fmt.Sprintf("server.addr is required for the %s transport", c.Server.Transport))
		}
	default:
		errs = append(errs, fmt.Sprintf("server.transport must be stdio, sse or http, got %q", c.Server.Transport))
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, fmt.Sprintf("api.port must be between 1 and 65535, got %d", c.API.Port))
	}
	if len(c.Tools.Allow) > 0 && len(c.Tools.Deny) > 0 {
		errs = append(errs, "tools.allow and tools.deny are mutually exclusive")
	}

	if c.Journal.RetentionHours < 0 {
		errs = append(errs, "journal.retention_hours must not be negative")
	}
	if c.Journal.Path != "" && c.Journal.RetentionHours > 0 {
		if _, err := cron.ParseStandard(c.Journal.PruneSchedule); err != nil {
			errs = append(errs, fmt.Sprintf("journal.prune_schedule is invalid: %v", err))
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
