package secrets

import (
	"context"
	"errors"
	"fmt"
)

// BuildConfiguration describes how the binary was started.
type BuildConfiguration string

const (
	BuildDebug   BuildConfiguration = "debug"
	BuildCI      BuildConfiguration = "ci"
	BuildRelease BuildConfiguration = "release"
)

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config holds the externally supplied endpoints and keys.
type Config struct {
	APIBaseURL         string
	APIKey             string
	AnalyticsKey       string
	CrashReportingKey  string
	IsCI               bool
	BuildConfiguration BuildConfiguration
}

type setting struct {
	env      string
	key      string
	fallback string
	dst      func(*Config) *string
}

var settings = []setting{
	{"API_BASE_URL", "api_base_url", "https://api.example.com", func(c *Config) *string { return &c.APIBaseURL }},
	{"API_KEY", "api_key", "", func(c *Config) *string { return &c.APIKey }},
	{"ANALYTICS_KEY", "analytics_key", "dev-analytics-key", func(c *Config) *string { return &c.AnalyticsKey }},
	{"CRASH_REPORTING_KEY", "crash_reporting_key", "dev-crash-key", func(c *Config) *string { return &c.CrashReportingKey }},
}

// Load resolves each setting from the environment, then the store, then its
// default. Values taken from the environment are saved to the store.
func Load(ctx context.Context, store Store, lookup LookupFunc, debug bool) (Config, error) {
	var cfg Config
	for _, s := range settings {
		dst := s.dst(&cfg)

		if v, ok := lookup(s.env); ok && v != "" {
			*dst = v
			if err := store.Set(ctx, s.key, v); err != nil {
				return Config{}, fmt.Errorf("save %s: %w", s.key, err)
			}
			continue
		}

		v, err := store.Get(ctx, s.key)
		switch {
		case err == nil:
			*dst = v
		case errors.Is(err, ErrNotFound):
			*dst = s.fallback
		default:
			return Config{}, fmt.Errorf("read %s: %w", s.key, err)
		}
	}

	cfg.IsCI = isTrue(lookup, "CI") || isTrue(lookup, "CIRCLECI")
	switch {
	case debug:
		cfg.BuildConfiguration = BuildDebug
	case cfg.IsCI:
		cfg.BuildConfiguration = BuildCI
	default:
		cfg.BuildConfiguration = BuildRelease
	}
	return cfg, nil
}

func isTrue(lookup LookupFunc, key string) bool {
	v, ok := lookup(key)
	return ok && v == "true"
}
