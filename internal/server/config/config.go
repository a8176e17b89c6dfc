// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/projectkeeper/internal/cryptox"
)

// Config holds runtime settings for the ProjectKeeper server.
//
// Fields:
//   - HTTPAddr: bind address for the REST API.
//   - GRPCAddr: bind address for the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Required.
//   - BcryptCost: password hashing cost factor.
//   - CORSOrigins: origins allowed by the CORS middleware.
//   - LogLevel: debug, info, warn or error.
//   - ShutdownTimeout: grace period for in-flight requests on stop.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	DatabaseDSN     string
	SecretKey       string
	BcryptCost      int
	CORSOrigins     []string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// ErrMissingSecretKey is returned by Validate when no signing key is set.
var ErrMissingSecretKey = errors.New("config: secret key is required")

// LoadDefaults populates Config with development defaults. SecretKey is
// intentionally left empty.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.BcryptCost = cryptox.DefaultCost
	c.CORSOrigins = []string{"*"}
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file when
// present) and finally command-line flags. args excludes the program name.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	loadDotenv(".env")
	parseEnv(cfg)
	parseFlags(cfg, args)
	cfg.BcryptCost = cryptox.NormalizeCost(cfg.BcryptCost)
	return cfg
}
