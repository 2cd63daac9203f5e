package geoip

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// Resolve builds the CountryProvider the rest of the pipeline uses,
// selecting between the offline and networked implementations the way
// SPEC_FULL.md's geoip section describes: a local GeoLite2 database when
// mmdbPath is configured, falling back to NetworkProvider when it is not.
// The database is opened first so a missing or malformed mmdb file fails
// fast without spending a network round trip; picking GeoLite still costs
// one such round trip to learn the node's own public IP (an IP literal
// carries no geography by itself), after which the country lookup against
// it is entirely local.
func Resolve(ctx context.Context, mmdbPath string) (CountryProvider, error) {
	if mmdbPath == "" {
		return Cached(NewNetworkProvider()), nil
	}

	db, err := geoip2.Open(mmdbPath)
	if err != nil {
		return nil, fmt.Errorf("open geolite database %s: %w", mmdbPath, err)
	}

	selfIP, err := resolveSelfIP(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resolve self ip: %w", err)
	}
	return Cached(&GeoLiteProvider{db: db, self: selfIP}), nil
}

// resolveSelfIP asks a minimal plaintext-IP endpoint for the node's own
// public address, deliberately not one of NetworkProvider's geo-resolving
// endpoints, since the whole point of the GeoLite path is to keep the
// actual country lookup local.
func resolveSelfIP(ctx context.Context) (net.IP, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.ipify.org", nil)
	if err != nil {
		return nil, err
	}
	hc := &http.Client{Timeout: 5 * time.Second}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("self-ip lookup: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(strings.TrimSpace(string(body)))
	if ip == nil {
		return nil, fmt.Errorf("self-ip lookup: malformed address %q", string(body))
	}
	return ip, nil
}

// GeoLiteProvider resolves a country code from a local MaxMind GeoLite2
// country database, avoiding a network round trip on every lookup. Wired
// through Resolve as the alternative to NetworkProvider when a database
// path is configured; grounded on github.com/oschwald/geoip2-golang
// appearing in the pack's dependency set.
type GeoLiteProvider struct {
	db   *geoip2.Reader
	self net.IP
}

// OpenGeoLiteProvider opens the GeoLite2-Country.mmdb at path and resolves
// selfIP (the node's own public IP, obtained out of band by the embedder)
// against it.
func OpenGeoLiteProvider(path string, selfIP net.IP) (*GeoLiteProvider, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoLiteProvider{db: db, self: selfIP}, nil
}

func (p *GeoLiteProvider) Country(context.Context) string {
	if p.self == nil {
		return ""
	}
	record, err := p.db.Country(p.self)
	if err != nil || record.Country.IsoCode == "" {
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the underlying database file.
func (p *GeoLiteProvider) Close() error {
	return p.db.Close()
}
