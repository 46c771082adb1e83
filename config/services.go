package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server with the session validator and cache sweeper.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSessionJanitor purges long-expired session rows from Postgres.
	ServiceModeSessionJanitor ServiceMode = "session-janitor"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeSessionJanitor}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for part := range strings.SplitSeq(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSessionJanitor:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, session-janitor)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SessionJanitorConfig controls the expired-session purge job.
type SessionJanitorConfig struct {
	// Interval is how often the purge runs.
	Interval time.Duration `env:"SESSION_JANITOR_INTERVAL"  envDefault:"1h"`
	// Retention keeps expired rows this long so late requests still see "expired".
	Retention time.Duration `env:"SESSION_JANITOR_RETENTION" envDefault:"168h"`
}

// Sanitize applies guardrails to janitor configuration values.
func (c *SessionJanitorConfig) Sanitize() {
	if c.Interval < time.Minute {
		c.Interval = time.Minute
	}
	if c.Retention < 0 {
		c.Retention = 0
	}
}
