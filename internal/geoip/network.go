package geoip

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// NetworkProvider is the default CountryProvider: it tries a CDN trace
// endpoint, then a public IP-info service, and falls back to "US" on
// failure (spec §6).
type NetworkProvider struct {
	hc *http.Client
}

// NewNetworkProvider builds a NetworkProvider sharing the pipeline's HTTP
// timeout discipline (spec §5 HTTP_TIMEOUT).
func NewNetworkProvider() *NetworkProvider {
	return &NetworkProvider{hc: &http.Client{Timeout: 10 * time.Second}}
}

func (p *NetworkProvider) Country(ctx context.Context) string {
	if code := p.fromCDNTrace(ctx); code != "" {
		return code
	}
	if code := p.fromIPInfo(ctx); code != "" {
		return code
	}
	return defaultLocation
}

// fromCDNTrace parses a "loc=XX" line out of a CDN's trace endpoint
// response body (e.g. Cloudflare's /cdn-cgi/trace format).
func (p *NetworkProvider) fromCDNTrace(ctx context.Context) string {
	body, ok := p.get(ctx, "https://www.cloudflare.com/cdn-cgi/trace")
	if !ok {
		return ""
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "loc=") {
			code := strings.TrimSpace(strings.TrimPrefix(line, "loc="))
			if len(code) == 2 {
				return strings.ToUpper(code)
			}
		}
	}
	return ""
}

// fromIPInfo calls a public IP-info JSON API as the secondary fallback.
func (p *NetworkProvider) fromIPInfo(ctx context.Context) string {
	body, ok := p.get(ctx, "https://ipinfo.io/country")
	if !ok {
		return ""
	}
	code := strings.ToUpper(strings.TrimSpace(body))
	if len(code) == 2 {
		return code
	}

	// Some deployments proxy a JSON body instead of plain text.
	var parsed struct {
		Country string `json:"country"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err == nil && len(parsed.Country) == 2 {
		return strings.ToUpper(parsed.Country)
	}
	return ""
}

func (p *NetworkProvider) get(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", false
	}
	return string(data), true
}
