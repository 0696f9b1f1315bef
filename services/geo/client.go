package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agriassist/config"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	geocodeResultCount = 10
	hourlyVariables    = "temperature_2m,precipitation,cloudcover,windspeed_10m"
	forecastDays       = 3
	maxBodyBytes       = 4 << 20
)

// UpstreamError carries the status and body of a failed Open-Meteo call.
type UpstreamError struct {
	Status int
	Body   json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("open-meteo status %d: %s", e.Status, string(e.Body))
}

// Detail is the value reported to API callers: the upstream JSON body when there is one.
func (e *UpstreamError) Detail() any {
	if gjson.ValidBytes(e.Body) {
		return e.Body
	}
	return string(e.Body)
}

// Client fetches place search results and forecasts from Open-Meteo.
type Client struct {
	geocodeBase string
	weatherBase string
	http        *http.Client
	cache       Cache
	logger      *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache enables response caching. A nil cache disables it.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(geocodeBase, weatherBase string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		geocodeBase: strings.TrimSuffix(geocodeBase, "/"),
		weatherBase: strings.TrimSuffix(weatherBase, "/"),
		http:        &http.Client{Timeout: timeout},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from config.AppConfig.
func NewClientFromConfig(cache Cache, logger *zap.Logger) *Client {
	return NewClient(
		config.AppConfig.GeocodeBaseURL,
		config.AppConfig.WeatherBaseURL,
		config.AppConfig.UpstreamTimeout,
		WithCache(cache),
		WithLogger(logger),
	)
}

// Geocode returns the upstream "results" array untouched, in provider order. A search with
// no matches yields "[]".
func (c *Client) Geocode(ctx context.Context, query, lang string) (json.RawMessage, error) {
	if lang == "" {
		lang = "en"
	}
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(geocodeResultCount))
	params.Set("language", lang)
	params.Set("format", "json")

	key := geocodeKeyPrefix + lang + ":" + strings.ToLower(query)
	body, err := c.cachedGet(ctx, key, c.geocodeBase+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(results.Raw), nil
}

// Forecast returns the raw forecast document for a coordinate pair.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	latStr := strconv.FormatFloat(lat, 'f', -1, 64)
	lonStr := strconv.FormatFloat(lon, 'f', -1, 64)

	params := url.Values{}
	params.Set("latitude", latStr)
	params.Set("longitude", lonStr)
	params.Set("hourly", hourlyVariables)
	params.Set("current_weather", "true")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(forecastDays))

	key := weatherKeyPrefix + latStr + "," + lonStr
	body, err := c.cachedGet(ctx, key, c.weatherBase+"/forecast?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) cachedGet(ctx context.Context, key, endpoint string) ([]byte, error) {
	if c.cache != nil {
		if data, ok, err := c.cache.Get(ctx, key); err != nil {
			c.logger.Warn("Geo cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return data, nil
		}
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body); err != nil {
			c.logger.Warn("Geo cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read open-meteo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("open-meteo returned invalid JSON")
	}
	return body, nil
}
