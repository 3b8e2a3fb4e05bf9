package config

import (
	"fmt"
	"net/url"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

// Validate checks cross-field invariants after defaults have been applied.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return derrors.ConfigError("site.base_url must be an absolute URL").
			WithContext("base_url", c.Site.BaseURL).Build()
	}
	for _, p := range c.Site.StaticPages {
		if len(p) == 0 || p[0] != '/' {
			return derrors.ConfigError("site.static_pages entries must start with '/'").
				WithContext("page", p).Build()
		}
	}

	if c.Sitemap.HomePageSize <= 0 || c.Sitemap.HighQualityPageSize <= 0 || c.Sitemap.BucketPageSize <= 0 {
		return derrors.ConfigError("sitemap page sizes must be positive").Build()
	}

	durations := map[string]string{
		"source.timeout":      c.Source.Timeout,
		"retry.initial_delay": c.Retry.InitialDelay,
		"retry.max_delay":     c.Retry.MaxDelay,
		"geocode.sleep":       c.Geocode.Sleep,
	}
	if c.Serve.RefreshInterval != "" {
		durations["serve.refresh_interval"] = c.Serve.RefreshInterval
	}
	for field, raw := range durations {
		if _, err := time.ParseDuration(raw); err != nil {
			return derrors.ConfigError(fmt.Sprintf("invalid duration for %s", field)).
				WithCause(err).WithContext("value", raw).Build()
		}
	}
	if c.Retry.MaxRetries < 0 {
		return derrors.ConfigError("retry.max_retries cannot be negative").Build()
	}

	if c.Notify.Enabled && c.Notify.NATSURL == "" {
		return derrors.ConfigError("notify.nats_url is required when notify.enabled is true").Build()
	}
	return nil
}

// mustDuration parses a duration already checked by Validate.
func mustDuration(raw string) time.Duration {
	d, _ := time.ParseDuration(raw)
	return d
}

func (s SourceConfig) TimeoutDuration() time.Duration { return mustDuration(s.Timeout) }
func (g GeocodeConfig) SleepDuration() time.Duration  { return mustDuration(g.Sleep) }
func (r RetryConfig) Initial() time.Duration          { return mustDuration(r.InitialDelay) }
func (r RetryConfig) Max() time.Duration              { return mustDuration(r.MaxDelay) }

// RefreshEvery returns the scheduled refresh interval, zero when disabled.
func (s ServeConfig) RefreshEvery() time.Duration {
	if s.RefreshInterval == "" {
		return 0
	}
	return mustDuration(s.RefreshInterval)
}
