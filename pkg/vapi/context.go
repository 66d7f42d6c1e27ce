package vapi

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
)

// RequestContext bundles the base URL, default headers and timeout that requests are issued under.
//
// A RequestContext never changes after construction. Use With to derive a context with different
// settings; the receiver is left untouched.
type RequestContext struct {
	baseURL string
	headers map[string]string
	timeout time.Duration
}

// EnvLookup resolves an environment variable, reporting whether it was set.
type EnvLookup func(key string) (string, bool)

// ContextOption configures a RequestContext under construction.
type ContextOption func(*contextOptions)

type contextOptions struct {
	baseURL   string
	headers   map[string]string
	timeout   time.Duration
	lookupEnv EnvLookup
}

// WithBaseURL sets an explicit base URL. Without it the URL is derived from API_HOSTNAME and API_PORT.
func WithBaseURL(baseURL string) ContextOption {
	return func(o *contextOptions) {
		o.baseURL = baseURL
	}
}

// WithHeaders merges headers into the default header set; later options win per key.
// Accept stays application/json unless headers sets it.
func WithHeaders(headers map[string]string) ContextOption {
	return func(o *contextOptions) {
		for key, value := range canonicalHeaders(headers) {
			o.headers[key] = value
		}
	}
}

// WithDefaultHeader adds or replaces a single default header.
func WithDefaultHeader(key, value string) ContextOption {
	return func(o *contextOptions) {
		o.headers[http.CanonicalHeaderKey(key)] = value
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) ContextOption {
	return func(o *contextOptions) {
		o.timeout = timeout
	}
}

// WithEnv replaces os.LookupEnv when deriving the base URL.
func WithEnv(lookup EnvLookup) ContextOption {
	return func(o *contextOptions) {
		if lookup != nil {
			o.lookupEnv = lookup
		}
	}
}

// NewRequestContext builds a RequestContext. It returns a *ConfigurationError when no base URL
// is given and one cannot be derived from the environment, or when the URL is not absolute.
func NewRequestContext(opts ...ContextOption) (*RequestContext, error) {
	options := &contextOptions{
		headers:   map[string]string{constants.HeaderAccept: constants.ContentTypeJSON},
		timeout:   constants.DefaultRequestTimeout,
		lookupEnv: os.LookupEnv,
	}

	return build(options, opts)
}

// With derives a new RequestContext starting from the receiver's settings.
func (rc *RequestContext) With(opts ...ContextOption) (*RequestContext, error) {
	options := &contextOptions{
		baseURL:   rc.baseURL,
		headers:   rc.Headers(),
		timeout:   rc.timeout,
		lookupEnv: os.LookupEnv,
	}

	return build(options, opts)
}

func build(options *contextOptions, opts []ContextOption) (*RequestContext, error) {
	for _, opt := range opts {
		opt(options)
	}

	baseURL := options.baseURL
	if baseURL == "" {
		derived, err := baseURLFromEnv(options.lookupEnv)
		if err != nil {
			return nil, err
		}

		baseURL = derived
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, &ConfigurationError{Field: "base URL", Err: fmt.Errorf("%w: %w", constants.ErrInvalidBaseURL, err)}
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &ConfigurationError{Field: "base URL", Err: fmt.Errorf("%w: %q", constants.ErrInvalidBaseURL, baseURL)}
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	if _, ok := options.headers[constants.HeaderAccept]; !ok {
		options.headers[constants.HeaderAccept] = constants.ContentTypeJSON
	}

	return &RequestContext{
		baseURL: baseURL,
		headers: options.headers,
		timeout: options.timeout,
	}, nil
}

func baseURLFromEnv(lookup EnvLookup) (string, error) {
	host, _ := lookup(constants.EnvAPIHostname)
	port, _ := lookup(constants.EnvAPIPort)

	if host == "" || port == "" {
		return "", &ConfigurationError{Field: "base URL", Err: constants.ErrBaseURLRequired}
	}

	return "http://" + host + ":" + port + constants.APIPathPrefix, nil
}

// BaseURL returns the normalized base URL. It always ends in a slash.
func (rc *RequestContext) BaseURL() string {
	return rc.baseURL
}

// Headers returns a copy of the default headers.
func (rc *RequestContext) Headers() map[string]string {
	headers := make(map[string]string, len(rc.headers))
	for key, value := range rc.headers {
		headers[key] = value
	}

	return headers
}

// Timeout returns the per-request timeout; zero means none.
func (rc *RequestContext) Timeout() time.Duration {
	return rc.timeout
}

// BuildURL joins a relative path onto the base URL, dropping a single leading slash.
// The path is otherwise used as given.
func (rc *RequestContext) BuildURL(path string) string {
	return rc.baseURL + strings.TrimPrefix(path, "/")
}

func canonicalHeaders(headers map[string]string) map[string]string {
	canonical := make(map[string]string, len(headers)+1)
	for key, value := range headers {
		canonical[http.CanonicalHeaderKey(key)] = value
	}

	return canonical
}
