package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"HTTP_PORT", "BACKEND", "SQLITE_DSN", "POSTGRES_DSN", "REMOTE_URL", "REMOTE_TOKEN",
	"REMOTE_TIMEOUT", "SESSION_SECRET", "SESSION_TTL", "REFRESH_SCHEDULE", "REPORT_SCHEDULE",
	"REPORT_SINK", "REPORT_DIR", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PATH_STYLE",
	"S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "ADMIN_EMAIL", "ADMIN_PASSWORD", "LOG_LEVEL",
}

// clearEnv unsets every variable for the test; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allKeys {
		t.Setenv(key(name), "")
		if err := os.Unsetenv(key(name)); err != nil {
			t.Fatalf("failed to unset %s: %v", key(name), err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HACKTOWN_SESSION_SECRET", "super-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Backend != BackendSQLite || cfg.SQLiteDSN != "data/hacktown.db" {
			t.Fatalf("expected sqlite defaults, got %q %q", cfg.Backend, cfg.SQLiteDSN)
		}
		if cfg.RefreshSchedule != "@every 5m" || cfg.ReportSchedule != "0 2 * * *" {
			t.Fatalf("unexpected schedules %q %q", cfg.RefreshSchedule, cfg.ReportSchedule)
		}
		if cfg.ReportSink != ReportSinkFile || cfg.LogLevel != "info" {
			t.Fatalf("unexpected sink or level: %q %q", cfg.ReportSink, cfg.LogLevel)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HACKTOWN_BACKEND", "remote")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "variáveis de ambiente obrigatórias ausentes: HACKTOWN_REMOTE_URL, HACKTOWN_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports invalid values together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HACKTOWN_SESSION_SECRET", "s")
		t.Setenv("HACKTOWN_HTTP_PORT", "http")
		t.Setenv("HACKTOWN_SESSION_TTL", "-1h")
		t.Setenv("HACKTOWN_REFRESH_SCHEDULE", "every minute")
		t.Setenv("HACKTOWN_LOG_LEVEL", "verbose")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected invalid value error")
		}
		for _, name := range []string{"HACKTOWN_HTTP_PORT", "HACKTOWN_SESSION_TTL", "HACKTOWN_REFRESH_SCHEDULE", "HACKTOWN_LOG_LEVEL"} {
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("expected %s in %q", name, err.Error())
			}
		}
	})

	t.Run("parses s3 sink and remote backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HACKTOWN_SESSION_SECRET", "secret-value")
		t.Setenv("HACKTOWN_BACKEND", "REMOTE")
		t.Setenv("HACKTOWN_REMOTE_URL", "https://api.hacktown.example/")
		t.Setenv("HACKTOWN_REMOTE_TIMEOUT", "3s")
		t.Setenv("HACKTOWN_REPORT_SINK", "s3")
		t.Setenv("HACKTOWN_S3_BUCKET", "relatorios")
		t.Setenv("HACKTOWN_S3_PATH_STYLE", "true")
		t.Setenv("HACKTOWN_REPORT_SCHEDULE", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Backend != BackendRemote || cfg.RemoteURL != "https://api.hacktown.example" {
			t.Fatalf("unexpected remote settings %q %q", cfg.Backend, cfg.RemoteURL)
		}
		if cfg.RemoteTimeout != 3*time.Second {
			t.Fatalf("expected 3s timeout, got %s", cfg.RemoteTimeout)
		}
		if cfg.S3.Bucket != "relatorios" || !cfg.S3.PathStyle {
			t.Fatalf("unexpected s3 settings %+v", cfg.S3)
		}
		if cfg.ReportSchedule != "" {
			t.Fatalf("expected report schedule disabled, got %q", cfg.ReportSchedule)
		}
	})

	t.Run("admin password required with admin email", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HACKTOWN_SESSION_SECRET", "s")
		t.Setenv("HACKTOWN_ADMIN_EMAIL", "org@hacktown.com.br")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "HACKTOWN_ADMIN_PASSWORD") {
			t.Fatalf("expected missing admin password, got %v", err)
		}
	})
}

func TestLoader_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "HACKTOWN_SESSION_SECRET=from-file\nHACKTOWN_HTTP_PORT=9191\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("HACKTOWN_HTTP_PORT", "7070")
	// godotenv sets variables directly; register them for restoration.
	t.Setenv("HACKTOWN_SESSION_SECRET", "")
	if err := os.Unsetenv("HACKTOWN_SESSION_SECRET"); err != nil {
		t.Fatalf("failed to unset: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionSecret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.SessionSecret)
	}
	if cfg.HTTPPort != 7070 {
		t.Fatalf("expected process environment to win, got %d", cfg.HTTPPort)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for missing env file")
	}
}
