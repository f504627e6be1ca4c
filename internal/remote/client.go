// Package remote talks to the content API that owns blogs and videos.
// Every call goes through Client.do, which attaches the session token and
// converts transport statuses into apperr kinds before callers see them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 10 << 20

// TokenSource supplies the bearer token for outgoing requests
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ObserverFunc receives the outcome of every remote round trip.
// status is 0 when no response was received.
type ObserverFunc func(action string, status int, duration time.Duration)

// Client is the HTTP client for the remote content API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	observe    ObserverFunc
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver installs a callback invoked after every request
func WithObserver(fn ObserverFunc) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, timeout time.Duration, tokens TokenSource, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log.With().Str("component", "remote").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one remote call
type request struct {
	action      string // user-facing description, e.g. "approve blog"
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// do executes req and returns the decoded envelope of any response below 400.
// Responses of 400 and above are classified by status.
func (c *Client) do(ctx context.Context, req request) (*Envelope, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", req.action, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				return nil, appErr
			}
			return nil, apperr.AuthenticationFailed(req.action, err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.record(req.action, 0, duration)
		c.log.Warn().Err(err).
			Str("method", req.method).
			Str("path", req.path).
			Dur("duration", duration).
			Msg("Remote request failed")
		return nil, apperr.Network(req.action, err)
	}
	defer resp.Body.Close()

	c.record(req.action, resp.StatusCode, duration)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, apperr.Network(req.action, fmt.Errorf("failed to read response body: %w", err))
	}

	env := decodeEnvelope(resp.StatusCode, raw)

	c.log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("Remote request completed")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apperr.FromStatus(req.action, resp.StatusCode, env.ServerMessage())
	}

	return env, nil
}

// doJSON marshals payload as the request body
func (c *Client) doJSON(ctx context.Context, req request, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request for %s: %w", req.action, err)
	}
	req.body = bytes.NewReader(data)
	req.contentType = "application/json"
	return c.do(ctx, req)
}

func (c *Client) record(action string, status int, duration time.Duration) {
	if c.observe != nil {
		c.observe(action, status, duration)
	}
}
