package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Sink kinds accepted by SINK_KIND / WORKER_SINK_KIND.
const (
	SinkBigQuery = "bigquery"
	SinkPostgres = "postgres"
	SinkS3       = "s3"
	SinkQueue    = "queue"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Only fit for local runs.
const DefaultJWTSecret = "change-me-in-production"

// Config holds application configuration loaded from environment.
type Config struct {
	Server         ServerConfig
	Service        ServiceConfig
	ServiceAccount ServiceAccountConfig
	JWT            JWTConfig
	Forward        ForwardConfig
	Sink           SinkConfig
	BigQuery       BigQueryConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	AWS            AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string   // comma-separated; entries may contain one '*' (e.g. https://*.unifecaf.edu.br)
	TrustedProxies     []string // empty = trust none, ClientIP is the socket peer
}

// ServiceConfig describes this service in the root and health endpoints.
type ServiceConfig struct {
	Name    string
	Version string
}

// ServiceAccountConfig is the fixed account used for the forwarding hop and accepted by /token.
type ServiceAccountConfig struct {
	Username string
	Password string
}

// JWTConfig holds service token signing settings.
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
}

// ForwardConfig controls the forward-and-insert hop to a peer instance.
type ForwardConfig struct {
	Enabled    bool
	BaseURL    string // empty = this instance over loopback, http://127.0.0.1:<PORT>
	TimeoutSec int
}

// SinkConfig selects the event sink.
type SinkConfig struct {
	Kind       string
	WorkerKind string // durable sink drained into by cmd/worker
	URLColumn  string // link_zoom or meeting_url
}

// BigQueryConfig holds the analytical table coordinates and service account key.
type BigQueryConfig struct {
	Project         string
	Dataset         string
	Table           string
	CredentialsJSON string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/checkin?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Table    string
	Migrate  bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds AWS credentials and the check-in archive bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	CheckinsBucket  string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// TableID returns project.dataset.table.
func (c BigQueryConfig) TableID() string {
	return c.Project + "." + c.Dataset + "." + c.Table
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "https://letalock.github.io,https://*.unifecaf.edu.br,http://localhost:3000"),
			TrustedProxies:     splitTrim(getEnv("TRUSTED_PROXIES", ""), ","),
		},
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "Check-in UniFECAF"),
			Version: getEnv("SERVICE_VERSION", "1.0.0"),
		},
		ServiceAccount: ServiceAccountConfig{
			Username: getEnv("SERVICE_USER", "zoom"),
			Password: getEnv("SERVICE_PASS", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", DefaultJWTSecret),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 30),
		},
		Forward: ForwardConfig{
			Enabled:    getEnvBool("FORWARD_ENABLED", true),
			BaseURL:    strings.TrimRight(getEnv("FORWARD_BASE_URL", ""), "/"),
			TimeoutSec: getEnvInt("FORWARD_TIMEOUT_SEC", 10),
		},
		Sink: SinkConfig{
			Kind:       strings.ToLower(getEnv("SINK_KIND", SinkBigQuery)),
			WorkerKind: strings.ToLower(getEnv("WORKER_SINK_KIND", SinkBigQuery)),
			URLColumn:  getEnv("SINK_URL_COLUMN", "link_zoom"),
		},
		BigQuery: BigQueryConfig{
			Project:         getEnv("BQ_PROJECT", "unifecaf-data"),
			Dataset:         getEnv("BQ_DATASET", "unifecaf_zoom"),
			Table:           getEnv("BQ_TABLE", "ds_checkins"),
			CredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "checkin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Table:    getEnv("DB_TABLE", "checkins"),
			Migrate:  getEnvBool("DB_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			CheckinsBucket:  getEnv("AWS_S3_CHECKINS_BUCKET", "checkin-archive"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Warnings lists settings that load fine but are unsafe to run with.
func (c *Config) Warnings() []string {
	var out []string
	if c.JWT.Secret == DefaultJWTSecret && c.ServiceAccount.Password != "" {
		out = append(out, "JWT_SECRET is the built-in default while SERVICE_PASS is set; service tokens can be forged")
	}
	return out
}

func (c *Config) validate() error {
	for _, kind := range []string{c.Sink.Kind, c.Sink.WorkerKind} {
		switch kind {
		case SinkBigQuery, SinkPostgres, SinkS3, SinkQueue:
		default:
			return fmt.Errorf("unknown sink kind %q", kind)
		}
	}
	if c.Sink.WorkerKind == SinkQueue {
		return fmt.Errorf("worker sink cannot be %q", SinkQueue)
	}
	switch c.Sink.URLColumn {
	case "link_zoom", "meeting_url":
	default:
		return fmt.Errorf("unsupported url column %q", c.Sink.URLColumn)
	}
	if c.Forward.TimeoutSec <= 0 {
		return fmt.Errorf("FORWARD_TIMEOUT_SEC must be positive")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
