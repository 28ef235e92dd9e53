// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Tables names the DynamoDB tables of the ledger.
type Tables struct {
	Users       string `env:"DYNAMODB_USERS_TABLE_NAME" envDefault:"fairtask-users"`
	Ledger      string `env:"DYNAMODB_LEDGER_TABLE_NAME" envDefault:"fairtask-ledger"`
	Withdrawals string `env:"DYNAMODB_WITHDRAWALS_TABLE_NAME" envDefault:"fairtask-withdrawals"`
	Audit       string `env:"DYNAMODB_AUDIT_TABLE_NAME" envDefault:"fairtask-audit"`
	Config      string `env:"DYNAMODB_CONFIG_TABLE_NAME" envDefault:"fairtask-config"`
	Admins      string `env:"DYNAMODB_ADMINS_TABLE_NAME" envDefault:"fairtask-admins"`
}

// Config is the runtime configuration shared by the server and lambdas.
type Config struct {
	Port         string        `env:"HTTP_PORT" envDefault:"8080"`
	Store        string        `env:"STORE_BACKEND" envDefault:"memory"`
	Tables       Tables
	SQSQueueURL  string        `env:"SQS_QUEUE_URL"`
	HoldDuration time.Duration `env:"HOLD_DURATION" envDefault:"24h"`
	CORSOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SeedDemo     bool          `env:"SEED_DEMO_DATA" envDefault:"false"`

	BootstrapAdminID   string `env:"BOOTSTRAP_ADMIN_ID" envDefault:"admin-root"`
	BootstrapAdminName string `env:"BOOTSTRAP_ADMIN_NAME" envDefault:"Platform Owner"`
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
	return Parse()
}

// Parse parses the environment into a validated Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreDynamoDB:
		t := c.Tables
		if t.Users == "" || t.Ledger == "" || t.Withdrawals == "" || t.Audit == "" || t.Config == "" || t.Admins == "" {
			return fmt.Errorf("one or more DynamoDB table names are not set")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.HoldDuration < 0 {
		return fmt.Errorf("hold duration must not be negative")
	}
	return nil
}
