// Package geocode looks up places via the Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lox/skyglass/internal/htmlutil"
	"github.com/lox/skyglass/internal/httputil"
	"github.com/lox/skyglass/internal/metrics"
	"github.com/lox/skyglass/internal/models"
)

const (
	// MinQueryLength is the shortest query, in characters, that is sent upstream.
	MinQueryLength = 2
	// SearchLimit caps the number of candidates per search.
	SearchLimit = 5
	// FallbackCity names a location whose reverse lookup found no settlement.
	FallbackCity = "Your Location"
)

// Client queries Nominatim. All requests share one rate limiter; the limiter
// delays requests but never drops them.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func NewClient(baseURL, userAgent string, rps float64, burst int, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    httputil.NewClient(timeout),
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		logger:    logger.Named("geocode"),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// Search returns up to SearchLimit candidates for query. Queries shorter than
// MinQueryLength characters return an empty result without a request.
func (c *Client) Search(ctx context.Context, query string) ([]models.Place, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []models.Place{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(SearchLimit))
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "search", params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var raw []searchResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("search %q: unmarshal: %w", query, err)
	}

	places := make([]models.Place, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			c.logger.Debug("skipping candidate with bad coordinates", zap.String("display_name", r.DisplayName))
			continue
		}
		places = append(places, models.Place{
			Latitude:    lat,
			Longitude:   lon,
			DisplayName: r.DisplayName,
			Name:        firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village, r.Name),
		})
		if len(places) == SearchLimit {
			break
		}
	}
	return places, nil
}

// Address is the settlement and country found by a reverse lookup.
type Address struct {
	City    string
	Country string
}

// Label renders "<city>, <country>", or just the city when the country is
// unknown.
func (a Address) Label() string {
	if a.Country == "" {
		return a.City
	}
	return a.City + ", " + a.Country
}

// Reverse resolves a coordinate to a settlement name. The city falls back to
// town, village and finally FallbackCity.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")

	body, err := c.get(ctx, "reverse", params)
	if err != nil {
		return Address{}, fmt.Errorf("reverse %v,%v: %w", lat, lon, err)
	}
	if !gjson.ValidBytes(body) {
		return Address{}, fmt.Errorf("reverse %v,%v: invalid JSON", lat, lon)
	}

	addr := gjson.GetBytes(body, "address")
	if !addr.IsObject() {
		return Address{}, fmt.Errorf("reverse %v,%v: no address in response", lat, lon)
	}

	return Address{
		City: firstNonEmpty(
			addr.Get("city").String(),
			addr.Get("town").String(),
			addr.Get("village").String(),
			FallbackCity,
		),
		Country: addr.Get("country").String(),
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	start := time.Now()
	status := "error"
	defer func() {
		metrics.UpstreamCallsTotal.WithLabelValues("nominatim", endpoint, status).Inc()
		metrics.UpstreamLatency.WithLabelValues("nominatim", endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode, htmlutil.Snippet(string(body), 200))
	}
	return body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
