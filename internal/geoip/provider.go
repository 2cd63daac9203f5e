// Package geoip implements the best-effort country-lookup contract (spec
// §6, §9). The detection result is a process-wide cached string, seeded
// through an injectable capability so tests can set "US" deterministically
// — the default provider tries a CDN trace then a public IP-info service,
// falling back to "US" on failure.
//
// Grounded on the teacher's internal/infra/resource sensor wrappers
// (ThermalMonitor/BatteryMonitor: thin struct over a platform/network read
// with a safe zero-value default).
package geoip

import (
	"context"
	"sync"
)

const defaultLocation = "US"

// CountryProvider resolves the node's best-guess ISO-3166-1 alpha-2 country
// code.
type CountryProvider interface {
	Country(ctx context.Context) string
}

// StaticProvider always returns a fixed code — used by tests to inject
// "US" deterministically (spec §9).
type StaticProvider struct{ Code string }

func (s StaticProvider) Country(context.Context) string {
	if s.Code == "" {
		return defaultLocation
	}
	return s.Code
}

// cachedProvider wraps another CountryProvider with a process-wide
// sync.Once cache: lazy-init on first use, lives until process exit.
type cachedProvider struct {
	once  sync.Once
	value string
	inner CountryProvider
}

// Cached wraps inner so its result is computed at most once per process.
func Cached(inner CountryProvider) CountryProvider {
	return &cachedProvider{inner: inner}
}

func (c *cachedProvider) Country(ctx context.Context) string {
	c.once.Do(func() {
		c.value = c.inner.Country(ctx)
		if c.value == "" {
			c.value = defaultLocation
		}
	})
	return c.value
}

// Close releases the wrapped provider's resources, if it has any.
func (c *cachedProvider) Close() error {
	if closer, ok := c.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
