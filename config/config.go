// Package config defines the environment-driven configuration for the
// hirestats binaries. Values are parsed with github.com/caarlos0/env; each
// sub-config lives in its own file next to the feature it configures.
package config

// AppConfig is the root configuration struct composed from the per-domain
// sub-configs (database.go, http.go, services.go, observability.go).
type AppConfig struct {
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP HTTPConfig

	// Services selects which long-running services this process hosts,
	// as a comma-separated list ("http", "aggregator", or both).
	Services string `env:"SERVICES" envDefault:"http"`

	Aggregator AggregatorConfig

	Observability ObservabilityConfig
}

// Sanitize clamps out-of-range values after env parsing. Call it once,
// right after loading.
func (c *AppConfig) Sanitize() {
	c.Postgres.Sanitize()
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Aggregator.Sanitize()
	c.Observability.Sanitize()
}

// GetEnabledServices parses the Services list into a set of service modes.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled reports whether the HTTP server should run.
func (c *AppConfig) IsHTTPServerEnabled() bool { return c.hasService(ServiceModeHTTP) }

// IsAggregatorEnabled reports whether the aggregation runner should run.
func (c *AppConfig) IsAggregatorEnabled() bool { return c.hasService(ServiceModeAggregator) }

func (c *AppConfig) hasService(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	return err == nil && services[mode]
}
