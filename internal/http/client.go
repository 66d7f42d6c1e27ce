// Package http is the transport underneath the resource clients. It builds requests,
// applies per-request timeouts and reads responses in full. Status codes are never
// turned into errors here.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/internal/logging"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// Client issues HTTP requests.
type Client struct {
	client     *retryablehttp.Client
	logger     vapi.Logger
	debug      bool
	userAgent  string
	requestIDs bool
	metrics    *Metrics
}

// Option configures the HTTP client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger vapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithHTTPClient replaces the underlying pooled client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client.HTTPClient = httpClient
		}
	}
}

// WithMetrics records every exchange in metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithRequestIDs controls the Request-Id header added to each request.
func WithRequestIDs(enabled bool) Option {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}

// NewClient creates a new HTTP client.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	// TODO: expose RetryMax/backoff once the API documents which verbs are safe to replay.
	retryClient.RetryMax = 0
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := &Client{
		client:     retryClient,
		userAgent:  constants.DefaultUserAgent,
		requestIDs: true,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.debug && client.logger != nil {
		retryClient.Logger = logging.Leveled(client.logger)
	}

	return client
}

// neverRetry hands every outcome straight back to the caller.
func neverRetry(_ context.Context, _ *http.Response, _ error) (bool, error) {
	return false, nil
}

// Do executes a single exchange. Any failure to obtain a complete response is
// returned as a *vapi.TransportError; every status code is returned as a response.
func (c *Client) Do(ctx context.Context, req *Request) (*vapi.Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	fullURL, err := req.fullURL()
	if err != nil {
		return nil, &vapi.TransportError{Method: req.Method.String(), URL: req.URL, Err: err}
	}

	httpReq, err := c.buildRequest(ctx, req, fullURL)
	if err != nil {
		return nil, &vapi.TransportError{Method: req.Method.String(), URL: fullURL, Err: err}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method.String(),
			"url":        fullURL,
			"request_id": httpReq.Header.Get(constants.HeaderRequestID),
		})
	}

	start := time.Now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.Method, 0, time.Since(start))

		return nil, c.transportError(req.Method, fullURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(req.Method, 0, time.Since(start))

		return nil, c.transportError(req.Method, fullURL, err)
	}

	elapsed := time.Since(start)
	c.metrics.observe(req.Method, resp.StatusCode, elapsed)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method.String(),
			"url":         fullURL,
			"status_code": resp.StatusCode,
			"duration":    elapsed.String(),
			"etag":        resp.Header.Get(constants.HeaderETag),
		})
	}

	return &vapi.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		URL:        fullURL,
	}, nil
}

func (c *Client) transportError(method Method, fullURL string, err error) error {
	transportErr := &vapi.TransportError{Method: method.String(), URL: fullURL, Err: err}

	if c.logger != nil {
		c.logger.Error("HTTP request failed", map[string]interface{}{
			"method":  method.String(),
			"url":     fullURL,
			"error":   err.Error(),
			"timeout": transportErr.Timeout(),
		})
	}

	return transportErr
}
