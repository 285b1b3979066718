// Package config loads eugenio settings from the environment and an
// optional TOML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	ConfigFile string // EUGENIO_CONFIG (optional TOML file)

	TelegramToken  string        // EUGENIO_TELEGRAM_TOKEN or TELEGRAM_TOKEN
	TelegramAPIURL string        // EUGENIO_TELEGRAM_API_URL (default "https://api.telegram.org")
	PollTimeout    time.Duration // EUGENIO_POLL_TIMEOUT (default 30s)
	Workers        int           // EUGENIO_WORKERS (default 8)
	EventTimeout   time.Duration // EUGENIO_EVENT_TIMEOUT (default 15s)

	Store string // EUGENIO_STORE: supabase (default), postgres, memory

	SupabaseURL     string        // EUGENIO_SUPABASE_URL or SUPABASE_URL
	SupabaseKey     string        // EUGENIO_SUPABASE_KEY or SUPABASE_KEY
	SupabaseTable   string        // EUGENIO_SUPABASE_TABLE (default "market_list")
	SupabaseTimeout time.Duration // EUGENIO_SUPABASE_TIMEOUT (default 10s)
	SupabaseRetries int           // EUGENIO_SUPABASE_RETRIES (default 2)

	DatabaseURL string // EUGENIO_DATABASE_URL (required for postgres)

	HTTPAddr  string // EUGENIO_HTTP_ADDR (default ":8080")
	AuthToken string // EUGENIO_AUTH_TOKEN (optional, empty = auth disabled)
	NATSURL   string // EUGENIO_NATS_URL (optional, empty = no events)

	// Sync settings
	SyncInterval   time.Duration // EUGENIO_SYNC_INTERVAL (default 1h; 0 = disabled)
	SyncS3Bucket   string        // EUGENIO_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // EUGENIO_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // EUGENIO_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // EUGENIO_SYNC_S3_KEY (default "eugenio/backup.jsonl")
	SyncS3Dated    bool          // EUGENIO_SYNC_S3_DATED (one object per day)

	// Messages overrides reply texts by key, from the [messages] table of
	// the config file.
	Messages map[string]string
}

// File is the shape of the optional TOML config file.
type File struct {
	Messages map[string]string `toml:"messages"`
}

func Load() (*Config, error) {
	c := &Config{
		ConfigFile:     os.Getenv("EUGENIO_CONFIG"),
		TelegramToken:  envFirst("EUGENIO_TELEGRAM_TOKEN", "TELEGRAM_TOKEN"),
		TelegramAPIURL: envOrDefault("EUGENIO_TELEGRAM_API_URL", "https://api.telegram.org"),
		Store:          envOrDefault("EUGENIO_STORE", StoreSupabase),
		SupabaseURL:    envFirst("EUGENIO_SUPABASE_URL", "SUPABASE_URL"),
		SupabaseKey:    envFirst("EUGENIO_SUPABASE_KEY", "SUPABASE_KEY"),
		SupabaseTable:  envOrDefault("EUGENIO_SUPABASE_TABLE", "market_list"),
		DatabaseURL:    os.Getenv("EUGENIO_DATABASE_URL"),
		HTTPAddr:       envOrDefault("EUGENIO_HTTP_ADDR", ":8080"),
		AuthToken:      os.Getenv("EUGENIO_AUTH_TOKEN"),
		NATSURL:        os.Getenv("EUGENIO_NATS_URL"),
		SyncS3Bucket:   os.Getenv("EUGENIO_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("EUGENIO_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("EUGENIO_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("EUGENIO_SYNC_S3_KEY", "eugenio/backup.jsonl"),
	}

	var err error
	if c.PollTimeout, err = durationEnv("EUGENIO_POLL_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if c.PollTimeout < time.Second {
		return nil, fmt.Errorf("EUGENIO_POLL_TIMEOUT must be at least 1s, got %v", c.PollTimeout)
	}
	if c.EventTimeout, err = durationEnv("EUGENIO_EVENT_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if c.SupabaseTimeout, err = durationEnv("EUGENIO_SUPABASE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if c.SyncInterval, err = durationEnv("EUGENIO_SYNC_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	if c.Workers, err = intEnv("EUGENIO_WORKERS", 8); err != nil {
		return nil, err
	}
	if c.SupabaseRetries, err = intEnv("EUGENIO_SUPABASE_RETRIES", 2); err != nil {
		return nil, err
	}
	if v := os.Getenv("EUGENIO_SYNC_S3_DATED"); v != "" {
		if c.SyncS3Dated, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("EUGENIO_SYNC_S3_DATED: %w", err)
		}
	}

	if c.Workers < 1 {
		return nil, fmt.Errorf("EUGENIO_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.SupabaseRetries < 0 {
		return nil, fmt.Errorf("EUGENIO_SUPABASE_RETRIES must not be negative, got %d", c.SupabaseRetries)
	}

	switch c.Store {
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the %s store", StoreSupabase)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("EUGENIO_DATABASE_URL is required for the %s store", StorePostgres)
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("EUGENIO_STORE: unknown store %q", c.Store)
	}

	if c.ConfigFile != "" {
		f, err := LoadFile(c.ConfigFile)
		if err != nil {
			return nil, err
		}
		c.Messages = f.Messages
	}

	return c, nil
}

// LoadFile decodes a TOML config file. Undecoded keys are an error so
// typos surface at startup.
func LoadFile(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	return &f, nil
}

// RequireTelegram reports an error when no bot token is configured.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envFirst returns the first non-empty value among keys.
func envFirst(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
