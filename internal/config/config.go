package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/jbweber/homelab/gamestore/internal/migrations"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "GAMESTORE_"

// Config holds all configuration for the gamestore service
type Config struct {
	DBPath         string         `koanf:"db_path" validate:"required"`
	Port           string         `koanf:"port" validate:"required,numeric"`
	LogLevel       string         `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat      string         `koanf:"log_format" validate:"oneof=text json"`
	MetricsEnabled bool           `koanf:"metrics_enabled"`
	Database       DatabaseConfig `koanf:"database"`
}

// DatabaseConfig tunes the sqlite connection pool.
type DatabaseConfig struct {
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"min=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"min=0"`
	BusyTimeout     time.Duration `koanf:"busy_timeout" validate:"min=0"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		DBPath:         "~/gamestore/data/gamestore.db",
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "text",
		MetricsEnabled: true,
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: time.Minute,
			BusyTimeout:     5 * time.Second,
		},
	}
}

// Load layers defaults, an optional .env file and GAMESTORE_* environment
// variables, then validates the result. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(NewConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// transformEnvKey maps GAMESTORE_DATABASE_MAX_OPEN_CONNS to
// database.max_open_conns and GAMESTORE_DB_PATH to db_path.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "database_"); ok {
		return "database." + rest, value
	}
	return key, value
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DSN builds the sqlite connection string. Per-connection pragmas go in the
// DSN so every pooled connection gets them.
func (c *Config) DSN() string {
	return BuildDSN(c.expandPath(c.DBPath), c.Database.BusyTimeout)
}

// InitializeDatabase creates and configures the database connection
func (c *Config) InitializeDatabase(ctx context.Context) (*sql.DB, error) {
	if err := c.EnsureDatabaseDir(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	OptimizeDatabaseConnection(db, c.Database)

	if err := ApplyPragmaOptimizations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply performance optimizations: %w", err)
	}

	if err := migrations.NewDefaultMigrator(db).RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// EnsureDatabaseDir creates the directory holding the database file.
func (c *Config) EnsureDatabaseDir() error {
	if err := os.MkdirAll(filepath.Dir(c.expandPath(c.DBPath)), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// expandPath expands ~ to home directory
func (c *Config) expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Return original path if we can't get home dir
		return path
	}

	return filepath.Join(homeDir, path[2:])
}
