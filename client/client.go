/*
Package client is a typed client for the back-office REST API.

PURPOSE:
  Wraps every endpoint the front-end uses (auth, clients, attendance,
  performance) behind one method each. All methods go through a single
  transport, Client.do, which attaches headers, encodes the body, and turns
  any non-2xx response into an *APIError.

HEADERS ON EVERY CALL:
  Authorization: Bearer <token>   (when the endpoint needs one)
  Content-Type:  application/json
  Accept:        application/json
  X-Request-ID:  fresh uuid, echoed in logs and in APIError.RequestID

TIMESTAMPS:
  The backend sends local timestamps without a zone ("2026-03-10T06:45:00").
  They are read in the client's Location (WithLocation, default time.Local),
  which is also the wall clock the 06:30 lateness rule is judged against.

USAGE:
  c := client.New("http://localhost:8080/api/v1", client.WithLogger(log.Logger))
  auth, err := c.Login(ctx, client.AuthRequest{Email: e, Password: p})
  clients, err := c.ExpiringPolicies(ctx, auth.AccessToken)

SEE ALSO:
  - errors.go: APIError and status helpers
  - routes.go: endpoint paths
  - dto.go: request and response shapes
  - token.go: refreshing TokenSource
*/
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is where the backend listens in development.
const DefaultBaseURL = "http://localhost:8080/api/v1"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Client talks to the back-office API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	location   *time.Location
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It works on a copy, so a client
// passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLocation sets the zone that zone-less backend timestamps are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location is the zone zone-less backend timestamps are read in.
func (c *Client) Location() *time.Location { return c.location }

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// TRANSPORT
// =============================================================================

type call struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do sends one request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, req call, out any) error {
	resp, requestID, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// send performs the round trip and leaves the body open for the caller.
func (c *Client) send(ctx context.Context, req call) (*http.Response, string, error) {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", req.method).
			Str("path", req.path).
			Str("request_id", requestID).
			Msg("request failed")
		return nil, requestID, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}

	c.logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	return resp, requestID, nil
}
