package slskd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/BlieNuckel/tunarr/internal/config"
)

const (
	apiPrefix      = "/api/v0"
	requestTimeout = 30 * time.Second
	userAgent      = "tunarr/1.0"
	maxErrorBody   = 4 * 1024

	// slskd throttles searches per peer network session
	searchRate  = rate.Limit(1)
	searchBurst = 5
)

// ErrUnavailable wraps transport-level failures talking to slskd
var ErrUnavailable = errors.New("slskd unavailable")

// APIError is returned when slskd answers with a non-2xx status
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slskd %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client wraps the slskd REST API
type Client struct {
	baseURL       string
	apiKey        string
	searchTimeout time.Duration
	waitGrace     time.Duration
	searchLimiter *rate.Limiter
	httpClient    *http.Client
	logger        *logrus.Logger
}

// NewClient creates a new slskd client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.SlskdURL == "" {
		return nil, fmt.Errorf("slskd URL is required")
	}

	return &Client{
		baseURL:       cfg.SlskdURL,
		apiKey:        cfg.SlskdAPIKey,
		searchTimeout: cfg.SearchTimeout,
		waitGrace:     waitGrace,
		searchLimiter: rate.NewLimiter(searchRate, searchBurst),
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// do sends a request to slskd. body is JSON-encoded when non-nil and the
// response is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("slskd request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WithFields(logrus.Fields{
			"method":      method,
			"path":        path,
			"status_code": resp.StatusCode,
		}).Warn("slskd returned non-OK status")
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode slskd response for %s %s: %w", method, path, err)
	}
	return nil
}
