// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil issues rate-limited requests against the metadata API.
package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/geodataset/pkg/types"
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4096

// Dispatcher performs GET requests spaced at least MinInterval apart.
//
// The spacing state belongs to the Dispatcher. Concurrent callers sharing
// one Dispatcher are each delayed, but the order in which their requests
// leave is not defined; serialize calls when ordering matters.
type Dispatcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     types.ClientConfig
	logger  *slog.Logger
}

// NewDispatcher returns a Dispatcher for cfg. A nil client gets one with
// cfg.Timeout; a nil logger uses slog.Default().
func NewDispatcher(cfg types.ClientConfig, client *http.Client, logger *slog.Logger) *Dispatcher {
	cfg = cfg.WithDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Dispatcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger,
	}
}

// MinInterval returns the configured spacing between requests.
func (d *Dispatcher) MinInterval() time.Duration {
	if d.cfg.MinInterval < 0 {
		return 0
	}
	return d.cfg.MinInterval
}

// Get waits for the rate limiter, then requests endpoint (relative to the
// base URL) with params plus the identifying parameters. It returns the
// response body. Non-2xx responses and transport failures are returned as
// *types.UpstreamError. There are no retries.
func (d *Dispatcher) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	reqURL := d.buildURL(endpoint, params)
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent())

	d.logger.Debug("dispatching request", "endpoint", endpoint)
	start := time.Now()

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &types.UpstreamError{URL: redact(reqURL), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &types.UpstreamError{
			StatusCode: resp.StatusCode,
			URL:        redact(reqURL),
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.UpstreamError{StatusCode: resp.StatusCode, URL: redact(reqURL), Err: err}
	}

	d.logger.Debug("request complete", "endpoint", endpoint, "status", resp.StatusCode,
		"bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func (d *Dispatcher) buildURL(endpoint string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("tool", d.cfg.Tool)
	if d.cfg.Email != "" {
		q.Set("email", d.cfg.Email)
	}
	if d.cfg.APIKey != "" {
		q.Set("api_key", d.cfg.APIKey)
	}
	return strings.TrimRight(d.cfg.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/") + "?" + q.Encode()
}

// redact hides the credential in URLs that end up in errors.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
