package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// allEnvVars lists every variable Load reads; each test clears them first.
var allEnvVars = []string{
	"EUGENIO_CONFIG", "EUGENIO_TELEGRAM_TOKEN", "TELEGRAM_TOKEN", "EUGENIO_TELEGRAM_API_URL",
	"EUGENIO_POLL_TIMEOUT", "EUGENIO_WORKERS", "EUGENIO_EVENT_TIMEOUT", "EUGENIO_STORE",
	"EUGENIO_SUPABASE_URL", "SUPABASE_URL", "EUGENIO_SUPABASE_KEY", "SUPABASE_KEY",
	"EUGENIO_SUPABASE_TABLE", "EUGENIO_SUPABASE_TIMEOUT", "EUGENIO_SUPABASE_RETRIES",
	"EUGENIO_DATABASE_URL", "EUGENIO_HTTP_ADDR", "EUGENIO_AUTH_TOKEN", "EUGENIO_NATS_URL",
	"EUGENIO_SYNC_INTERVAL", "EUGENIO_SYNC_S3_BUCKET", "EUGENIO_SYNC_S3_ENDPOINT",
	"EUGENIO_SYNC_S3_REGION", "EUGENIO_SYNC_S3_KEY", "EUGENIO_SYNC_S3_DATED",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	clearAllEnv(t)
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoad_StoreValidation(t *testing.T) {
	for _, tc := range []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "SupabaseMissingCredentials",
			env:     map[string]string{},
			wantErr: "SUPABASE_URL",
		},
		{
			name: "SupabaseLegacyNames",
			env:  map[string]string{"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_KEY": "k"},
		},
		{
			name:    "PostgresMissingURL",
			env:     map[string]string{"EUGENIO_STORE": "postgres"},
			wantErr: "EUGENIO_DATABASE_URL",
		},
		{
			name: "Postgres",
			env:  map[string]string{"EUGENIO_STORE": "postgres", "EUGENIO_DATABASE_URL": "postgres://localhost/eugenio"},
		},
		{
			name: "Memory",
			env:  map[string]string{"EUGENIO_STORE": "memory"},
		},
		{
			name:    "UnknownStore",
			env:     map[string]string{"EUGENIO_STORE": "redis"},
			wantErr: "unknown store",
		},
		{
			name:    "BadDuration",
			env:     map[string]string{"EUGENIO_STORE": "memory", "EUGENIO_EVENT_TIMEOUT": "soon"},
			wantErr: "EUGENIO_EVENT_TIMEOUT",
		},
		{
			name:    "ZeroWorkers",
			env:     map[string]string{"EUGENIO_STORE": "memory", "EUGENIO_WORKERS": "0"},
			wantErr: "EUGENIO_WORKERS",
		},
		{
			name:    "BadDated",
			env:     map[string]string{"EUGENIO_STORE": "memory", "EUGENIO_SYNC_S3_DATED": "maybe"},
			wantErr: "EUGENIO_SYNC_S3_DATED",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := Load()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"EUGENIO_STORE": "memory"})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelegramAPIURL != "https://api.telegram.org" {
		t.Errorf("TelegramAPIURL = %q", cfg.TelegramAPIURL)
	}
	if cfg.PollTimeout != 30*time.Second || cfg.EventTimeout != 15*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.PollTimeout, cfg.EventTimeout)
	}
	if cfg.Workers != 8 || cfg.SupabaseRetries != 2 {
		t.Errorf("workers/retries = %d/%d", cfg.Workers, cfg.SupabaseRetries)
	}
	if cfg.SupabaseTable != "market_list" {
		t.Errorf("SupabaseTable = %q", cfg.SupabaseTable)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SyncInterval != time.Hour || cfg.SyncS3Key != "eugenio/backup.jsonl" || cfg.SyncS3Dated {
		t.Errorf("sync = %v %q %v", cfg.SyncInterval, cfg.SyncS3Key, cfg.SyncS3Dated)
	}
	if cfg.Messages != nil {
		t.Errorf("Messages = %v, want nil", cfg.Messages)
	}
}

func TestLoad_PollTimeoutTooShort(t *testing.T) {
	for _, v := range []string{"0s", "500ms"} {
		setEnv(t, map[string]string{"EUGENIO_STORE": "memory", "EUGENIO_POLL_TIMEOUT": v})
		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "EUGENIO_POLL_TIMEOUT") {
			t.Errorf("poll timeout %s: err = %v", v, err)
		}
	}

	setEnv(t, map[string]string{"EUGENIO_STORE": "memory", "EUGENIO_POLL_TIMEOUT": "1s"})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollTimeout != time.Second {
		t.Errorf("PollTimeout = %v", cfg.PollTimeout)
	}
}

func TestLoad_PrefixedNamesWin(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_TOKEN":         "legacy",
		"EUGENIO_TELEGRAM_TOKEN": "new",
		"SUPABASE_URL":           "https://legacy",
		"EUGENIO_SUPABASE_URL":   "https://new",
		"SUPABASE_KEY":           "k",
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TelegramToken != "new" || cfg.SupabaseURL != "https://new" || cfg.SupabaseKey != "k" {
		t.Errorf("got token=%q url=%q key=%q", cfg.TelegramToken, cfg.SupabaseURL, cfg.SupabaseKey)
	}
}

func TestRequireTelegram(t *testing.T) {
	if err := (&Config{}).RequireTelegram(); err == nil {
		t.Error("expected error without token")
	}
	if err := (&Config{TelegramToken: "t"}).RequireTelegram(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eugenio.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ConfigFileMessages(t *testing.T) {
	path := writeFile(t, `
[messages]
item_added = "added %s"
empty_list = "nothing here"
`)
	setEnv(t, map[string]string{"EUGENIO_STORE": "memory", "EUGENIO_CONFIG": path})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Messages["item_added"] != "added %s" || cfg.Messages["empty_list"] != "nothing here" {
		t.Errorf("Messages = %v", cfg.Messages)
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeFile(t, "[mesages]\nhelp = \"hi\"\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("error = %v, want unknown key", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
