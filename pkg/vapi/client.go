package vapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ResourceClient issues requests against paths relative to a RequestContext's base URL.
// Non-2xx responses are returned as values, never as errors.
type ResourceClient interface {
	Get(ctx context.Context, path string, opts ...CallOption) (*Response, error)
	List(ctx context.Context, path string, opts ...CallOption) ([]*Response, error)
	Post(ctx context.Context, path string, body interface{}, opts ...CallOption) (*Response, error)
	Put(ctx context.Context, path string, body interface{}, opts ...CallOption) (*Response, error)
	Delete(ctx context.Context, path string, opts ...CallOption) (*Response, error)
}

// VehiclesClient defines operations for vehicle resources.
type VehiclesClient interface {
	Get(ctx context.Context, vin string, opts ...CallOption) (*Response, error)
	List(ctx context.Context, opts ...CallOption) ([]*Response, error)
	Create(ctx context.Context, vehicle *Vehicle, opts ...CallOption) (*Response, error)
	Update(ctx context.Context, vin string, vehicle *Vehicle, opts ...CallOption) (*Response, error)
	Delete(ctx context.Context, vin string, opts ...CallOption) (*Response, error)

	// Search lists the vehicles matching filter, following pagination.
	Search(ctx context.Context, filter VehicleFilter, opts ...CallOption) ([]*Response, error)

	// ListVehicles lists and decodes every vehicle. A non-2xx page is reported as an error.
	ListVehicles(ctx context.Context, opts ...CallOption) ([]Vehicle, error)
}

// Client is the vehicle API client.
type Client interface {
	Resources() ResourceClient
	Vehicles() VehiclesClient
	RequestContext() *RequestContext
}

// Config represents client configuration for building a Client.
type Config struct {
	// RequestContext is the default context for every call. When nil one is derived
	// from API_HOSTNAME and API_PORT.
	RequestContext *RequestContext
	// HTTPClient replaces the pooled client used underneath the transport.
	HTTPClient *http.Client
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// Debug: logs every request and response when a Logger is provided.
	Debug bool
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Registerer: when set, request counters and latencies are registered with it.
	Registerer prometheus.Registerer
	// DisableRequestID stops the client from tagging each request with a Request-Id header.
	DisableRequestID bool
}

// CallOptions are the per-call overrides resolved from CallOption values.
type CallOptions struct {
	Context *RequestContext
	Headers map[string]string
	Query   url.Values
}

// CallOption customizes a single call.
type CallOption func(*CallOptions)

// ResolveCallOptions applies opts in order.
func ResolveCallOptions(opts ...CallOption) *CallOptions {
	options := &CallOptions{
		Headers: map[string]string{},
		Query:   url.Values{},
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithRequestContext issues the call under rc instead of the client's default context.
func WithRequestContext(rc *RequestContext) CallOption {
	return func(o *CallOptions) {
		o.Context = rc
	}
}

// WithHeader sets a header for this call, overriding the context default of the same name.
func WithHeader(key, value string) CallOption {
	return func(o *CallOptions) {
		o.Headers[http.CanonicalHeaderKey(key)] = value
	}
}

// WithCallHeaders sets several headers for this call.
func WithCallHeaders(headers map[string]string) CallOption {
	return func(o *CallOptions) {
		for key, value := range headers {
			o.Headers[http.CanonicalHeaderKey(key)] = value
		}
	}
}

// WithQuery adds query parameters. Repeated keys are kept.
func WithQuery(values url.Values) CallOption {
	return func(o *CallOptions) {
		for key, vals := range values {
			for _, val := range vals {
				o.Query.Add(key, val)
			}
		}
	}
}

// IfNoneMatch sends an If-None-Match header carrying etag.
func IfNoneMatch(etag string) CallOption {
	return WithHeader(constants.HeaderIfNoneMatch, etag)
}
