package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Backend kinds.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRemote   = "remote"
)

// Report sinks.
const (
	ReportSinkFile = "file"
	ReportSinkS3   = "s3"
)

// S3Config locates the bucket that receives exported reports.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Config captures environment driven configuration values for the Hacktown
// operations service.
type Config struct {
	HTTPPort int

	Backend       string
	SQLiteDSN     string
	PostgresDSN   string
	RemoteURL     string
	RemoteToken   string
	RemoteTimeout time.Duration

	SessionSecret string
	SessionTTL    time.Duration

	// RefreshSchedule and ReportSchedule are cron specs; an empty
	// ReportSchedule disables the nightly export.
	RefreshSchedule string
	ReportSchedule  string
	ReportSink      string
	ReportDir       string
	S3              S3Config

	AdminEmail    string
	AdminPassword string

	LogLevel string
}

// Load reads HACKTOWN_* variables from the process environment. Files listed
// in envFiles are loaded first with godotenv without overriding variables
// already set; with no files, a ".env" in the working directory is used when
// present.
//
// Defaults apply to optional values; every missing and invalid variable is
// reported in a single error.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:        8080,
		Backend:         BackendSQLite,
		SQLiteDSN:       "data/hacktown.db",
		RemoteTimeout:   15 * time.Second,
		SessionTTL:      24 * time.Hour,
		RefreshSchedule: "@every 5m",
		ReportSchedule:  "0 2 * * *",
		ReportSink:      ReportSinkFile,
		ReportDir:       "reports",
		LogLevel:        "info",
	}

	var missing, invalid []string

	if v := env("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, key("HTTP_PORT"))
		} else {
			cfg.HTTPPort = port
		}
	}

	if v := env("BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := env("SQLITE_DSN"); v != "" {
		cfg.SQLiteDSN = v
	}
	cfg.PostgresDSN = env("POSTGRES_DSN")
	cfg.RemoteURL = strings.TrimRight(env("REMOTE_URL"), "/")
	cfg.RemoteToken = env("REMOTE_TOKEN")

	switch cfg.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			missing = append(missing, key("POSTGRES_DSN"))
		}
	case BackendRemote:
		if cfg.RemoteURL == "" {
			missing = append(missing, key("REMOTE_URL"))
		}
	default:
		invalid = append(invalid, key("BACKEND"))
	}

	if d, ok := duration("REMOTE_TIMEOUT", &invalid); ok {
		cfg.RemoteTimeout = d
	}

	if secret := env("SESSION_SECRET"); secret == "" {
		missing = append(missing, key("SESSION_SECRET"))
	} else {
		cfg.SessionSecret = secret
	}
	if d, ok := duration("SESSION_TTL", &invalid); ok {
		cfg.SessionTTL = d
	}

	if v, set := os.LookupEnv(key("REFRESH_SCHEDULE")); set {
		cfg.RefreshSchedule = strings.TrimSpace(v)
	}
	if v, set := os.LookupEnv(key("REPORT_SCHEDULE")); set {
		cfg.ReportSchedule = strings.TrimSpace(v)
	}
	if cfg.RefreshSchedule == "" {
		missing = append(missing, key("REFRESH_SCHEDULE"))
	} else if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
		invalid = append(invalid, key("REFRESH_SCHEDULE"))
	}
	if cfg.ReportSchedule != "" {
		if _, err := cron.ParseStandard(cfg.ReportSchedule); err != nil {
			invalid = append(invalid, key("REPORT_SCHEDULE"))
		}
	}

	if v := env("REPORT_SINK"); v != "" {
		cfg.ReportSink = strings.ToLower(v)
	}
	if v := env("REPORT_DIR"); v != "" {
		cfg.ReportDir = v
	}
	cfg.S3 = S3Config{
		Bucket:          env("S3_BUCKET"),
		Region:          env("S3_REGION"),
		Endpoint:        env("S3_ENDPOINT"),
		AccessKeyID:     env("S3_ACCESS_KEY_ID"),
		SecretAccessKey: env("S3_SECRET_ACCESS_KEY"),
	}
	if v := env("S3_PATH_STYLE"); v != "" {
		pathStyle, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, key("S3_PATH_STYLE"))
		} else {
			cfg.S3.PathStyle = pathStyle
		}
	}
	switch cfg.ReportSink {
	case ReportSinkFile:
	case ReportSinkS3:
		if cfg.S3.Bucket == "" {
			missing = append(missing, key("S3_BUCKET"))
		}
	default:
		invalid = append(invalid, key("REPORT_SINK"))
	}

	cfg.AdminEmail = env("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv(key("ADMIN_PASSWORD"))
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		missing = append(missing, key("ADMIN_PASSWORD"))
	}

	if v := env("LOG_LEVEL"); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "warning", "error":
			cfg.LogLevel = strings.ToLower(v)
		default:
			invalid = append(invalid, key("LOG_LEVEL"))
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente obrigatórias ausentes: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valores inválidos nas variáveis de ambiente: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

const prefix = "HACKTOWN_"

func key(name string) string {
	return prefix + name
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(key(name)))
}

func duration(name string, invalid *[]string) (time.Duration, bool) {
	v := env(name)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		*invalid = append(*invalid, key(name))
		return 0, false
	}
	return d, true
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files %s: %w", strings.Join(files, ", "), err)
	}
	return nil
}
