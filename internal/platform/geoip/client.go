// Package geoip resolves the country for a client IP address using an
// external HTTP lookup service. Results feed currency resolution only, so
// lookups are best effort with tight timeouts.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
)

const (
	defaultTimeout     = 2 * time.Second
	defaultMaxAttempts = 3
	maxResponseBytes   = 4 << 10
)

// ErrUnavailable is returned when the lookup service cannot be reached or
// keeps failing after retries.
var ErrUnavailable = errors.New("geoip: lookup service unavailable")

// ErrPrivateAddress is returned for loopback, private, or otherwise
// non-routable addresses that carry no location information.
var ErrPrivateAddress = errors.New("geoip: address is not publicly routable")

// Client queries an IP-to-country endpoint.
type Client struct {
	endpoint    string
	apiKey      string
	httpClient  *http.Client
	logger      *zap.Logger
	maxAttempts int
}

// Deps carries the dependencies for NewClient.
type Deps struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
	// MaxAttempts bounds retries on transient failures. Zero means the default.
	MaxAttempts int
}

// NewClient validates dependencies and returns a lookup client.
func NewClient(deps Deps) (*Client, error) {
	endpoint := strings.TrimSpace(deps.Endpoint)
	if endpoint == "" {
		return nil, errors.New("geoip: endpoint is required")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("geoip: invalid endpoint: %w", err)
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := deps.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	return &Client{
		endpoint:    endpoint,
		apiKey:      strings.TrimSpace(deps.APIKey),
		httpClient:  httpClient,
		logger:      logger,
		maxAttempts: attempts,
	}, nil
}

type lookupResponse struct {
	CountryCode string `json:"country_code"`
}

// CountryCode returns the ISO 3166-1 alpha-2 country code for the supplied
// address. Transient upstream failures are retried with backoff.
func (c *Client) CountryCode(ctx context.Context, ip string) (string, error) {
	addr := strings.TrimSpace(ip)
	parsed := net.ParseIP(addr)
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip address %q", addr)
	}
	if !isPublic(parsed) {
		return "", ErrPrivateAddress
	}

	backoff := gax.Backoff{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := gax.Sleep(ctx, backoff.Pause()); err != nil {
				return "", err
			}
		}

		code, retryable, err := c.lookup(ctx, addr)
		if err == nil {
			return code, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		c.logger.Debug("geoip: retrying lookup", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) lookup(ctx context.Context, addr string) (code string, retryable bool, err error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return "", false, fmt.Errorf("geoip: invalid endpoint: %w", err)
	}
	query := reqURL.Query()
	query.Set("ip", addr)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", false, fmt.Errorf("geoip: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("geoip: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", true, fmt.Errorf("geoip: upstream status %d", resp.StatusCode)
	default:
		return "", false, fmt.Errorf("geoip: upstream status %d", resp.StatusCode)
	}

	var payload lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", false, fmt.Errorf("geoip: decode response: %w", err)
	}
	country := strings.ToUpper(strings.TrimSpace(payload.CountryCode))
	if len(country) != 2 {
		return "", false, fmt.Errorf("geoip: unexpected country code %q", payload.CountryCode)
	}
	return country, false, nil
}

func isPublic(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}
	return true
}
