// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles process-wide settings.

Values come from OS environment variables mapped with 'caarlos0/env'. In local
development a '.env' or '.env.local' file is loaded first with 'joho/godotenv';
real environment variables always win over file values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

The resulting [Config] is built once in main and passed to constructors. It is
read-only after Load returns.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
	StorageMemory   = "memory"
)

// Mail drivers accepted by MAIL_DRIVER.
const (
	MailSES = "ses"
	MailLog = "log"
)

// envFiles are tried in order; a missing file is not an error.
var envFiles = []string{".env.local", ".env"}

// # Configuration Schema

// Config holds all runtime configuration for the API server and the mail worker.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorageDriver selects the account store implementation.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// Relational Database (PostgreSQL)
	DatabaseURL   string `env:"DATABASE_URL"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Document Database (MongoDB)
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"epiclogue"`

	// Key-Value store (Redis): reset tokens and the mail queue
	RedisURL string `env:"REDIS_URL,required"`

	// Session token signing. RS256 is used when both key paths are set,
	// otherwise HS512 with SessionSecret.
	SessionSecret  string        `env:"SESSION_SECRET"`
	JWTPrivKeyPath string        `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPubKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Credential hashing parameters for newly written credentials
	KDFIterations int `env:"KDF_ITERATIONS" envDefault:"210000"`
	KDFKeyLength  int `env:"KDF_KEY_LENGTH" envDefault:"64"`

	// Mail delivery
	MailDriver    string `env:"MAIL_DRIVER"     envDefault:"log"`
	MailFrom      string `env:"MAIL_FROM"       envDefault:"no-reply@epiclogue.com"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`

	// Amazon SES (MAIL_DRIVER=ses)
	AWSRegion          string `env:"AWS_REGION" envDefault:"ap-northeast-2"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SESEndpoint        string `env:"SES_ENDPOINT"`

	// Worker
	WorkerConcurrency int `env:"WORKER_CONCURRENCY" envDefault:"4"`

	// Cookies and Cross-Origin Resource Sharing
	CookieDomain        string `env:"COOKIE_DOMAIN" envDefault:"localhost"`
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"epiclogue.com"`

	// Observability
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// # Configuration Loading

// Load reads optional dotenv files, parses environment variables into a
// [Config] and validates cross-field rules.
func Load() (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the rules env tags cannot express.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres storage driver")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("config: MONGO_URI is required for the mongo storage driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.SessionSecret == "" && !c.UsesRSAKeys() {
		return errors.New("config: SESSION_SECRET or both JWT key paths must be set")
	}

	switch c.MailDriver {
	case MailSES, MailLog:
	default:
		return fmt.Errorf("config: unknown MAIL_DRIVER %q", c.MailDriver)
	}

	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}

	return nil
}

// UsesRSAKeys reports whether session tokens are signed with the RSA key pair.
func (c *Config) UsesRSAKeys() bool {
	return c.JWTPrivKeyPath != "" && c.JWTPubKeyPath != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
