package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode names a long-running service hosted by the hirestats binary.
type ServiceMode string

const (
	// ServiceModeHTTP serves the statistics read API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeAggregator runs the periodic aggregation pass.
	ServiceModeAggregator ServiceMode = "aggregator"
)

// ValidServiceModes lists every recognised service mode.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeAggregator}
}

// ParseServices turns a comma-separated service list into a set of modes.
// Blank entries are skipped; an unknown name or an effectively empty list
// is an error.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	for _, part := range strings.Split(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		switch mode := ServiceMode(name); mode {
		case ServiceModeHTTP, ServiceModeAggregator:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, aggregator)", name)
		}
	}

	if len(services) == 0 {
		return services, errors.New("at least one service must be specified")
	}
	return services, nil
}

// AggregatorConfig tunes the background aggregation runner.
type AggregatorConfig struct {
	// Interval is the time between aggregation passes.
	Interval time.Duration `env:"AGGREGATOR_INTERVAL" envDefault:"1h"`

	// MinThreshold is the minimum usable posting count for a combination
	// to produce a statistics record.
	MinThreshold int `env:"AGGREGATOR_MIN_THRESHOLD" envDefault:"5"`

	// RunOnStart triggers one pass immediately on startup instead of
	// waiting for the first tick.
	RunOnStart bool `env:"AGGREGATOR_RUN_ON_START" envDefault:"true"`

	// LockTTL bounds how long a crashed replica can hold the pass lock.
	// Zero lets the lock expire after one interval.
	LockTTL time.Duration `env:"AGGREGATOR_LOCK_TTL"`
}

// Sanitize clamps runner settings to safe values. Each pass scans the
// posting table, so the interval has a one-minute floor.
func (a *AggregatorConfig) Sanitize() {
	if a.Interval < time.Minute {
		a.Interval = time.Minute
	}
	if a.MinThreshold < 1 {
		a.MinThreshold = 1
	}
	if a.LockTTL < 0 {
		a.LockTTL = 0
	}
}
