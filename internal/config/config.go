// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Secrets and connection details are
// required; lifecycle tuning falls back to sensible defaults.
type Config struct {
	Env               string        // application environment (e.g. "dev", "prod")
	Port              string        // HTTP port to listen on
	DBUser            string        // database username
	DBPass            string        // database password (optional)
	DBHost            string        // database host address
	DBPort            string        // database port number
	DBName            string        // database name
	DBMaxOpen         int           // connection pool: max open connections
	DBMaxIdle         int           // connection pool: max idle connections
	RedisAddr         string        // redis host:port backing the rate limiter
	RedisPassword     string        // redis password (optional)
	RedisDB           int           // redis database number
	RedisTLS          bool          // dial redis over TLS
	IdentityJWTSecret string        // secret shared with the upstream identity provider
	TokenSecret       string        // secret used to sign verification tokens
	HoldTTL           time.Duration // how long an unconfirmed hold blocks a stall
	SweepInterval     time.Duration // how often the sweeper reclaims overdue holds
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		DBMaxOpen:         envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:         envInt("DB_MAX_IDLE_CONNS", 25),
		RedisAddr:         redisAddr(),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envInt("REDIS_DB", 0),
		RedisTLS:          envBool("REDIS_TLS", false),
		IdentityJWTSecret: must("IDENTITY_JWT_SECRET"),
		TokenSecret:       must("TOKEN_SECRET"),
		HoldTTL:           time.Duration(envInt("HOLD_TTL_MIN", 10)) * time.Minute,
		SweepInterval:     time.Duration(envInt("SWEEP_INTERVAL_SEC", 60)) * time.Second,
	}
}

// redisAddr resolves the Redis address: REDIS_HOST/REDIS_PORT win over
// the REDIS_ADDR shorthand, and a local default keeps dev setups
// working with zero configuration.
func redisAddr() string {
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		return host + ":" + port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an integer environment variable, falling back to the
// default when unset or unparsable.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}
