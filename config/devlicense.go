package config

import (
	"strings"
	"time"
)

// DevLicenseConfig controls the local dev license server.
// Used when SERVICES includes dev-license for development and testing.
type DevLicenseConfig struct {
	// Addr is the address the dev license server listens on. The default
	// matches the portal's default LICENSE_SERVER_URL.
	Addr string `env:"DEV_LICENSE_ADDR" envDefault:":3100"`

	// Organization is the organization name on seeded license records.
	Organization string `env:"DEV_LICENSE_ORGANIZATION" envDefault:"Aionix Dev"`

	// CodeTTL is how long issued one-time codes stay valid.
	CodeTTL time.Duration `env:"DEV_LICENSE_CODE_TTL" envDefault:"10m"`

	// SessionTTL is the bearer token lifetime.
	SessionTTL time.Duration `env:"DEV_LICENSE_SESSION_TTL" envDefault:"24h"`

	// UseRedis stores codes and sessions in Redis instead of process memory,
	// so they survive dev server restarts.
	UseRedis bool `env:"DEV_LICENSE_USE_REDIS" envDefault:"false"`
}

// Sanitize applies guardrails to dev license server configuration values.
func (d *DevLicenseConfig) Sanitize() {
	if d.Addr == "" {
		d.Addr = ":3100"
	}
	if strings.TrimSpace(d.Organization) == "" {
		d.Organization = "Aionix Dev"
	}
	if d.CodeTTL <= 0 {
		d.CodeTTL = 10 * time.Minute
	}
	if d.SessionTTL <= 0 {
		d.SessionTTL = 24 * time.Hour
	}
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
