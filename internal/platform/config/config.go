// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures server-level configuration.
type Config struct {
	Addr           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	KafkaBrokers   []string
	AuditTopic     string
	JWTSigningKey  string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

// FromEnv builds a Config from environment variables, applying development
// defaults where unset. An empty DatabaseURL selects the in-memory stores;
// an empty RedisURL disables the token revocation list.
func FromEnv() Config {
	cfg := Config{
		Addr:           getenv("SAMS_ADDR", ":5000"),
		LogLevel:       getenv("SAMS_LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AuditTopic:     getenv("AUDIT_TOPIC", "sams.audit"),
		JWTSigningKey:  getenv("ACCESS_TOKEN_SECRET", "dev-secret-key-change-in-production"),
		JWTIssuer:      getenv("JWT_ISSUER", "sams"),
		AccessTokenTTL: 15 * time.Minute,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.AccessTokenTTL = d
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
