// Package api is the HTTP client for the agriassist server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agriassist/models"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Timeouts per call; generation waits for the server's own provider timeout plus headroom.
const (
	DefaultLookupTimeout   = 30 * time.Second
	DefaultGenerateTimeout = 75 * time.Second
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail())
}

// Detail is the most specific message in the body: "detail", then "error", then the raw text.
func (e *APIError) Detail() string {
	if gjson.ValidBytes(e.Body) {
		for _, field := range []string{"detail", "error"} {
			if v := gjson.GetBytes(e.Body, field); v.Exists() && strings.TrimSpace(v.String()) != "" {
				return v.String()
			}
		}
	}
	if text := strings.TrimSpace(string(e.Body)); text != "" {
		return text
	}
	return http.StatusText(e.Status)
}

type Client struct {
	base            string
	http            *http.Client
	lookupTimeout   time.Duration
	generateTimeout time.Duration
	logger          *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeouts(lookup, generate time.Duration) Option {
	return func(c *Client) {
		if lookup > 0 {
			c.lookupTimeout = lookup
		}
		if generate > 0 {
			c.generateTimeout = generate
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(base string, opts ...Option) *Client {
	c := &Client{
		base:            strings.TrimSuffix(base, "/"),
		http:            &http.Client{},
		lookupTimeout:   DefaultLookupTimeout,
		generateTimeout: DefaultGenerateTimeout,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search calls GET /api/geocode.
func (c *Client) Search(ctx context.Context, query string, lang models.Language) ([]models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", string(lang))

	var body struct {
		Results []models.GeocodeResult `json:"results"`
	}
	if err := c.do(ctx, c.lookupTimeout, http.MethodGet, "/api/geocode?"+params.Encode(), nil, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// Fetch calls GET /api/weather.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*models.WeatherReport, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var report models.WeatherReport
	if err := c.do(ctx, c.lookupTimeout, http.MethodGet, "/api/weather?"+params.Encode(), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Generate calls POST /api/generate. A provider fallback is a successful response; only
// transport failures and non-2xx statuses are errors.
func (c *Client) Generate(ctx context.Context, req models.AdviceRequest) (models.AdviceResult, error) {
	var result models.AdviceResult
	if err := c.do(ctx, c.generateTimeout, http.MethodPost, "/api/generate", models.NewGenerateRequest(req), &result); err != nil {
		return models.AdviceResult{}, err
	}
	if result.Source == "" {
		result.Source = models.SourceProvider
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Body: data}
		c.logger.Warn("Server request failed", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("detail", apiErr.Detail()))
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
