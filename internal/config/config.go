package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (local development)
	AuthModeToken AuthMode = "token" // Admin bearer tokens checked against bcrypt hashes
)

type SessionBackend string

const (
	SessionBackendMemory SessionBackend = "memory"
	SessionBackendRedis  SessionBackend = "redis"
)

type (
	Config struct {
		HTTP
		Global
		Logging
		Database
		Auth
		Import
		SessionStore
		Tasks
		Housekeeping
		CORS
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Logging struct {
		Mode string // "development" or "production"
	}
	Database struct {
		Driver string // "sqlite" (default) or "postgres"
		Path   string // sqlite file path
		DSN    string // postgres connection string
	}
	Auth struct {
		Mode             AuthMode
		AdminTokenHashes []string // bcrypt hashes of accepted admin tokens
		BcryptCost       int
	}
	Import struct {
		BatchSize      int
		MaxLogs        int
		PollInterval   time.Duration // Progress stream poll interval
		Retention      time.Duration // How long completed sessions stay readable
		MaxUploadBytes int64
	}
	SessionStore struct {
		Backend     SessionBackend
		RedisAddr   string
		RedisPrefix string
		RedisTTL    time.Duration // Upper bound for a session that never completes
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks go back to the queue after this
		CleanupInterval time.Duration
	}
	Housekeeping struct {
		Enabled       bool
		SweepSchedule string // Cron format, e.g. "@every 1m"
	}
	CORS struct {
		AllowedOrigins []string
	}
	Audit struct {
		Dir            string
		RetentionDays  int
		ArchiveUploads bool // Keep a copy of every uploaded workbook under Dir
	}
)

// splitList parses comma-separated env values, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_mode", "development")

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_admin_token_hashes", "")
	v.SetDefault("auth_bcrypt_cost", 12)

	// Import pipeline defaults
	v.SetDefault("import_batch_size", DefaultBatchSize)
	v.SetDefault("import_max_logs", DefaultMaxLogs)
	v.SetDefault("import_poll_interval", "500ms")
	v.SetDefault("import_retention", "30s")
	v.SetDefault("import_max_upload_bytes", 20<<20)

	// Session store defaults
	v.SetDefault("session_store_backend", "memory")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_prefix", "qbank:import:")
	v.SetDefault("redis_ttl", "2h")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("housekeeping_enabled", true)
	v.SetDefault("housekeeping_sweep_schedule", "@every 1m")

	v.SetDefault("cors_allowed_origins", "")

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_archive_uploads", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Logging: Logging{
			Mode: v.GetString("LOG_MODE"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			AdminTokenHashes: splitList(v.GetString("AUTH_ADMIN_TOKEN_HASHES")),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
		},
		Import: Import{
			BatchSize:      v.GetInt("IMPORT_BATCH_SIZE"),
			MaxLogs:        v.GetInt("IMPORT_MAX_LOGS"),
			PollInterval:   v.GetDuration("IMPORT_POLL_INTERVAL"),
			Retention:      v.GetDuration("IMPORT_RETENTION"),
			MaxUploadBytes: v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
		},
		SessionStore: SessionStore{
			Backend:     SessionBackend(v.GetString("SESSION_STORE_BACKEND")),
			RedisAddr:   v.GetString("REDIS_ADDR"),
			RedisPrefix: v.GetString("REDIS_PREFIX"),
			RedisTTL:    v.GetDuration("REDIS_TTL"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Housekeeping: Housekeeping{
			Enabled:       v.GetBool("HOUSEKEEPING_ENABLED"),
			SweepSchedule: v.GetString("HOUSEKEEPING_SWEEP_SCHEDULE"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Audit: Audit{
			Dir:            v.GetString("AUDIT_DIR"),
			RetentionDays:  v.GetInt("AUDIT_RETENTION_DAYS"),
			ArchiveUploads: v.GetBool("AUDIT_ARCHIVE_UPLOADS"),
		},
	}
}
