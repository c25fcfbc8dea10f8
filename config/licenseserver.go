package config

import (
	"strings"
	"time"
)

// LicenseServerConfig contains configuration for the remote
// identity/license service the portal proxies to.
type LicenseServerConfig struct {
	// URL is the base URL of the license server.
	URL string `env:"LICENSE_SERVER_URL" envDefault:"http://localhost:3100"`

	// Timeout bounds each outbound call to the license server.
	Timeout time.Duration `env:"LICENSE_SERVER_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to license server configuration values.
func (l *LicenseServerConfig) Sanitize() {
	l.URL = strings.TrimSpace(l.URL)
	if l.URL == "" {
		l.URL = "http://localhost:3100"
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
}
