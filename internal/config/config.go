package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceURL      = "https://aws.api.mercor.com/work/listings-public?format=json&search="
	DefaultJobURLTemplate = "https://work.mercor.com/jobs/%s"
	DefaultPath           = "config.yaml"
	PathEnv               = "LISTINGWATCH_CONFIG"

	slackWebhookPrefix = "https://hooks.slack.com/"
)

// Config is the root configuration for listingwatch.
type Config struct {
	Source        SourceConfig
	CheckInterval time.Duration
	ErrorDelay    time.Duration
	Notification  NotificationConfig
	Store         StoreConfig
	Dashboard     DashboardConfig
	Log           LogConfig
}

// SourceConfig describes the listing endpoint.
type SourceConfig struct {
	URL            string
	Timeout        time.Duration
	JobURLTemplate string // fmt template with one %s for the listing id
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type     string // "telegram", "slack" or "log"
	Telegram TelegramConfig
	Slack    SlackConfig
	Timeout  time.Duration // per-message delivery timeout
	MinDelay time.Duration // minimum gap between consecutive messages
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// StoreConfig selects the known-listings backend.
type StoreConfig struct {
	Type string // "json" or "sqlite"
	Path string
}

// DashboardConfig controls the HTTP dashboard.
type DashboardConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// Addr returns host:port for net/http.
func (d DashboardConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

type LogConfig struct {
	File  string
	Level slog.Level
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Source        rawSourceConfig       `yaml:"source"`
	CheckInterval string                `yaml:"check_interval"`
	ErrorDelay    string                `yaml:"error_delay"`
	Notification  rawNotificationConfig `yaml:"notification"`
	Store         rawStoreConfig        `yaml:"store"`
	Dashboard     rawDashboardConfig    `yaml:"dashboard"`
	Log           rawLogConfig          `yaml:"log"`
}

type rawSourceConfig struct {
	URL            string `yaml:"url"`
	Timeout        string `yaml:"timeout"`
	JobURLTemplate string `yaml:"job_url_template"`
}

type rawNotificationConfig struct {
	Type     string         `yaml:"type"`
	Telegram TelegramConfig `yaml:"telegram"`
	Slack    SlackConfig    `yaml:"slack"`
	Timeout  string         `yaml:"timeout"`
	MinDelay string         `yaml:"min_delay"`
}

type rawStoreConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

type rawDashboardConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type rawLogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// ResolvePath picks the config file: the flag value, then $LISTINGWATCH_CONFIG,
// then ./config.yaml.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// LoadDotEnv loads a .env file into the environment. A missing file is not
// an error. Variables already set are not overwritten.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the YAML config file at path, applies defaults and
// environment overrides, validates it, and returns Config. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	var raw rawConfig

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		// Expand environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error
	cfg := &Config{
		Source: SourceConfig{
			URL:            orDefault(raw.Source.URL, DefaultSourceURL),
			JobURLTemplate: orDefault(raw.Source.JobURLTemplate, DefaultJobURLTemplate),
		},
		Notification: NotificationConfig{
			Type:     strings.ToLower(orDefault(raw.Notification.Type, "telegram")),
			Telegram: raw.Notification.Telegram,
			Slack:    raw.Notification.Slack,
		},
		Store: StoreConfig{
			Type: strings.ToLower(orDefault(raw.Store.Type, "json")),
			Path: raw.Store.Path,
		},
		Dashboard: DashboardConfig{
			Enabled: raw.Dashboard.Enabled == nil || *raw.Dashboard.Enabled,
			Host:    orDefault(raw.Dashboard.Host, "0.0.0.0"),
			Port:    raw.Dashboard.Port,
		},
		Log: LogConfig{
			File: orDefault(raw.Log.File, "listingwatch.log"),
		},
	}

	durations := []struct {
		key  string
		raw  string
		def  time.Duration
		dest *time.Duration
	}{
		{"source.timeout", raw.Source.Timeout, 30 * time.Second, &cfg.Source.Timeout},
		{"check_interval", raw.CheckInterval, 60 * time.Second, &cfg.CheckInterval},
		{"error_delay", raw.ErrorDelay, 10 * time.Second, &cfg.ErrorDelay},
		{"notification.timeout", raw.Notification.Timeout, 10 * time.Second, &cfg.Notification.Timeout},
		{"notification.min_delay", raw.Notification.MinDelay, 1 * time.Second, &cfg.Notification.MinDelay},
	}
	for _, d := range durations {
		*d.dest = d.def
		if d.raw == "" {
			continue
		}
		if *d.dest, err = time.ParseDuration(d.raw); err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
	}

	if cfg.Dashboard.Port == 0 {
		cfg.Dashboard.Port = 5000
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "known_jobs.json"
		if cfg.Store.Type == "sqlite" {
			cfg.Store.Path = "known_jobs.db"
		}
	}
	if raw.Log.Level != "" {
		if err := cfg.Log.Level.UnmarshalText([]byte(raw.Log.Level)); err != nil {
			return nil, fmt.Errorf("parse log.level %q: %w", raw.Log.Level, err)
		}
	}

	return cfg, nil
}

// applyEnv overrides file values with the environment variables the
// deployment already uses.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("MERCOR_API_URL"); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notification.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notification.Telegram.ChatID = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notification.Slack.WebhookURL = v
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse CHECK_INTERVAL %q: %w", v, err)
		}
		cfg.CheckInterval = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("DASHBOARD_HOST"); v != "" {
		cfg.Dashboard.Host = v
	}
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse DASHBOARD_PORT %q: %w", v, err)
		}
		cfg.Dashboard.Port = port
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive, got %v", cfg.CheckInterval)
	}
	if cfg.ErrorDelay <= 0 {
		return fmt.Errorf("error_delay must be positive, got %v", cfg.ErrorDelay)
	}
	if cfg.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if strings.Count(cfg.Source.JobURLTemplate, "%s") != 1 {
		return fmt.Errorf("source.job_url_template must contain exactly one %%s, got %q", cfg.Source.JobURLTemplate)
	}

	switch cfg.Store.Type {
	case "json", "sqlite":
	default:
		return fmt.Errorf("store.type must be \"json\" or \"sqlite\", got %q", cfg.Store.Type)
	}

	switch cfg.Notification.Type {
	case "telegram", "slack", "log":
	default:
		return fmt.Errorf("notification.type must be \"telegram\", \"slack\" or \"log\", got %q", cfg.Notification.Type)
	}
	if u := cfg.Notification.Slack.WebhookURL; u != "" && !strings.HasPrefix(u, slackWebhookPrefix) {
		return fmt.Errorf("notification.slack.webhook_url must start with %s", slackWebhookPrefix)
	}

	if cfg.Dashboard.Port < 1 || cfg.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be between 1 and 65535, got %d", cfg.Dashboard.Port)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
