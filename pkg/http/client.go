//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=client.go -destination=mock_client_test.go -package=http

// Package http fetches descriptors from a remote repository.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/viper"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/perf"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "pomgraph/1.0"
)

// Client performs HTTP requests.
type Client interface {
	// Do performs an HTTP request and returns the response.
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures a DefaultClient.
type ClientOption func(*DefaultClient)

// WithTimeout sets the request timeout. Zero keeps the default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *DefaultClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithToken sends token as a bearer credential to host.
func WithToken(host, token string) ClientOption {
	return func(c *DefaultClient) {
		if token == "" {
			return
		}
		c.client.Transport = &TokenTransport{Base: c.client.Transport, Host: host, Token: token}
	}
}

// WithTransport sets a custom transport.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *DefaultClient) {
		c.client.Transport = transport
	}
}

// DefaultClient wraps an http.Client.
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient returns a client with the given options applied.
func NewDefaultClient(opts ...ClientOption) *DefaultClient {
	defer perf.Track(nil, "http.NewDefaultClient")()

	client := &DefaultClient{client: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Do implements Client.
func (c *DefaultClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// TokenTransport adds a bearer token to requests for one host.
type TokenTransport struct {
	Base  http.RoundTripper
	Host  string
	Token string
}

// RoundTrip implements http.RoundTripper.
func (t *TokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Hostname() == t.Host && t.Token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("token transport roundtrip: %w", err)
	}
	return resp, nil
}

// TokenFromEnv reads POMGRAPH_PUBLISH_TOKEN.
func TokenFromEnv() string {
	_ = viper.BindEnv("POMGRAPH_PUBLISH_TOKEN")
	return viper.GetString("POMGRAPH_PUBLISH_TOKEN")
}

// StatusError is a response other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == errUtils.ErrUnexpectedHTTPState
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsClientError reports a 4xx response.
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}

// Get fetches url and returns the body of a 200 response.
func Get(ctx context.Context, url string, client Client) ([]byte, error) {
	defer perf.Track(nil, "http.Get")()

	if client == nil {
		return nil, errUtils.ErrNilHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", errors.Join(errUtils.ErrHTTPRequestFailed, err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", errors.Join(errUtils.ErrHTTPRequestFailed, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", errors.Join(errUtils.ErrHTTPRequestFailed, err))
	}
	return body, nil
}
