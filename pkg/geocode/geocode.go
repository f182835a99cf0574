// Package geocode reverse-geocodes map coordinates with a Google Geocoding compatible API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dvfens/ags/pkg/logger"
)

var (
	ErrNotConfigured = errors.New("geocode API key not set")
	ErrInvalidCoords = errors.New("coordinates out of range")
	ErrUpstream      = errors.New("geocode upstream error")
)

// Parsed holds the address fields used to pre-fill the delivery address form.
type Parsed struct {
	Street   string `json:"street"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// IsEmpty reports whether no structured field could be extracted.
func (p Parsed) IsEmpty() bool {
	return p.Street == "" && p.Landmark == "" && p.City == "" && p.State == "" && p.Pincode == ""
}

// AddressComponent mirrors one entry of address_components.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// FullResult is the first upstream result, passed through for the storefront.
type FullResult struct {
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	PlaceID           string             `json:"place_id,omitempty"`
}

// Result is the reverse-geocode response. Both fields are nil when nothing was found.
type Result struct {
	Parsed     *Parsed     `json:"parsed,omitempty"`
	FullResult *FullResult `json:"fullResult,omitempty"`
}

type upstreamResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Results      []FullResult `json:"results"`
}

// Config configures Client.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client calls the upstream API and optionally caches results in Redis.
type Client struct {
	cfg   Config
	http  *http.Client
	cache *redis.Client
}

// NewClient builds a Client. cache may be nil.
func NewClient(cfg Config, cache *redis.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: cache,
	}
}

// Reverse looks up the address at lat/lng.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*Result, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidCoords
	}
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	key := cacheKey(lat, lng)
	if res, ok := c.cached(ctx, key); ok {
		logger.Debug("Reverse geocode cache hit", map[string]interface{}{"key": key})
		return res, nil
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lng)))
	params.Set("key", c.cfg.APIKey)
	requestURL := fmt.Sprintf("%s?%s", c.cfg.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload upstreamResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return &Result{}, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrUpstream, payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return &Result{}, nil
	}

	full := payload.Results[0]
	res := &Result{FullResult: &full}
	if parsed := Parse(full); !parsed.IsEmpty() {
		res.Parsed = &parsed
	}

	c.store(ctx, key, res)
	return res, nil
}

// Parse extracts form fields from an upstream result. The street is the first
// comma-separated segment of the formatted address.
func Parse(r FullResult) Parsed {
	var p Parsed
	if r.FormattedAddress != "" {
		p.Street = strings.TrimSpace(strings.SplitN(r.FormattedAddress, ",", 2)[0])
	}
	for _, comp := range r.AddressComponents {
		switch {
		case hasType(comp, "locality"):
			p.City = comp.LongName
		case hasType(comp, "administrative_area_level_1"):
			p.State = comp.LongName
		case hasType(comp, "postal_code"):
			p.Pincode = comp.LongName
		case hasType(comp, "sublocality") || hasType(comp, "sublocality_level_1"):
			if p.Landmark == "" {
				p.Landmark = comp.LongName
			}
		}
	}
	return p
}

func hasType(c AddressComponent, t string) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// formatCoord keeps five decimals, roughly one metre.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:%s,%s", formatCoord(lat), formatCoord(lng))
}

func (c *Client) cached(ctx context.Context, key string) (*Result, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Reverse geocode cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *Client) store(ctx context.Context, key string, res *Result) {
	if c.cache == nil || c.cfg.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.cfg.CacheTTL).Err(); err != nil {
		logger.Warn("Reverse geocode cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
