package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/contester/internal/xdg"
)

const AppName = "contester"

type Config struct {
	Log      LogConfig      `toml:"log"`
	Postgres PostgresConfig `toml:"postgres"`
	NATS     NATSConfig     `toml:"nats"`
	SQS      SQSConfig      `toml:"sqs"`
	Ingest   IngestConfig   `toml:"ingest"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type PostgresConfig struct {
	// URL or keyword/value DSN. Empty means the in-memory store.
	URL      string `toml:"url"`
	MaxConns int32  `toml:"max_conns"`
	Migrate  bool   `toml:"migrate"`
}

type NATSConfig struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
	Queue   string `toml:"queue"`
	// Standing updates go to <NotifyPrefix>.<contest_id>; empty disables them.
	NotifyPrefix string `toml:"notify_prefix"`
}

type SQSConfig struct {
	QueueURL        string `toml:"queue_url"`
	Region          string `toml:"region"`
	Profile         string `toml:"profile"`
	WaitTimeSeconds int32  `toml:"wait_time_seconds"`
}

type IngestConfig struct {
	Workers     int   `toml:"workers"`
	MaxAttempts int   `toml:"max_attempts"`
	BackoffMs   int64 `toml:"backoff_ms"`
}

func (c IngestConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMs) * time.Millisecond
}

func Default() Config {
	return Config{
		Log:      LogConfig{Level: "info"},
		Postgres: PostgresConfig{MaxConns: 10, Migrate: true},
		NATS: NATSConfig{
			URL:          "nats://127.0.0.1:4222",
			Subject:      "judge.results",
			Queue:        AppName,
			NotifyPrefix: "contest.standings",
		},
		SQS: SQSConfig{
			Region:          "eu-central-1",
			WaitTimeSeconds: 20,
		},
		Ingest: IngestConfig{
			Workers:     8,
			MaxAttempts: 3,
			BackoffMs:   500,
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return xdg.New().FindConfig(AppName, "config.toml")
}

// Load builds the configuration from defaults, the TOML file at path,
// a .env file in the working directory and finally the process environment.
// An empty path means DefaultPath, which may be missing.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setStr := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setStr(&c.Log.Level, "CONTESTER_LOG_LEVEL")
	setStr(&c.NATS.URL, "CONTESTER_NATS_URL")
	setStr(&c.NATS.Subject, "CONTESTER_NATS_SUBJECT")
	setStr(&c.SQS.QueueURL, "CONTESTER_SQS_QUEUE_URL")
	setStr(&c.SQS.Region, "CONTESTER_SQS_REGION")

	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		c.Postgres.URL = fmt.Sprintf(
			`host=%s port=%s user=%s password=%s dbname=%s sslmode=%s`,
			dbHost, os.Getenv("DB_PORT"), os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
			os.Getenv("DB_NAME"), os.Getenv("DB_SSLMODE"))
	}
	setStr(&c.Postgres.URL, "CONTESTER_POSTGRES_URL")

	if v, ok := os.LookupEnv("CONTESTER_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CONTESTER_WORKERS %q: %w", v, err)
		}
		c.Ingest.Workers = n
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}
