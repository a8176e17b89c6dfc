package config

import (
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/projectkeeper/internal/cryptox"
)

// envConfig lists the recognised environment variables. Everything is read
// as a string so that an unparsable BCRYPT_ROUNDS degrades to the default
// instead of failing startup.
type envConfig struct {
	HTTPAddr        string   `env:"HTTP_ADDR"`
	GRPCAddr        string   `env:"GRPC_ADDR"`
	DatabaseDSN     string   `env:"DATABASE_DSN"`
	SecretKey       string   `env:"JWT_SECRET"`
	BcryptRounds    string   `env:"BCRYPT_ROUNDS"`
	CORSOrigins     []string `env:"CORS_ORIGINS" envSeparator:","`
	LogLevel        string   `env:"LOG_LEVEL"`
	ShutdownTimeout string   `env:"SHUTDOWN_TIMEOUT"`
}

// loadDotenv exports variables from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func loadDotenv(path string) {
	_ = godotenv.Load(path)
}

// parseEnv overlays non-empty environment variables onto config.
func parseEnv(config *Config) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		panic(err)
	}

	overlay(&config.HTTPAddr, e.HTTPAddr)
	overlay(&config.GRPCAddr, e.GRPCAddr)
	overlay(&config.DatabaseDSN, e.DatabaseDSN)
	overlay(&config.SecretKey, e.SecretKey)
	overlay(&config.LogLevel, e.LogLevel)

	if e.BcryptRounds != "" {
		config.BcryptCost = parseCost(e.BcryptRounds)
	}
	if len(e.CORSOrigins) > 0 {
		config.CORSOrigins = e.CORSOrigins
	}
	if e.ShutdownTimeout != "" {
		d, err := time.ParseDuration(e.ShutdownTimeout)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
}

// parseCost reads a bcrypt cost, falling back to cryptox.DefaultCost when
// the value is not a usable integer.
func parseCost(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return cryptox.DefaultCost
	}
	return cryptox.NormalizeCost(n)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
