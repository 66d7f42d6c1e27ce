package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
)

// Method is one of the HTTP verbs the client issues.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

// methods maps each Method to its wire verb and whether it carries a body.
var methods = map[Method]struct {
	verb    string
	hasBody bool
}{
	MethodGet:    {verb: http.MethodGet},
	MethodPost:   {verb: http.MethodPost, hasBody: true},
	MethodPut:    {verb: http.MethodPut, hasBody: true},
	MethodDelete: {verb: http.MethodDelete},
}

// String returns the wire verb.
func (m Method) String() string {
	if spec, ok := methods[m]; ok {
		return spec.verb
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// Request represents an HTTP request.
type Request struct {
	Method Method
	// URL is absolute. Query values are appended to any query it already carries.
	URL     string
	Query   url.Values
	Headers map[string]string
	// Body is JSON-encoded for methods that carry one and ignored otherwise.
	Body interface{}
	// Timeout bounds this exchange only. Zero means no timeout.
	Timeout time.Duration
}

// fullURL appends the request query to the URL.
func (r *Request) fullURL() (string, error) {
	if len(r.Query) == 0 {
		return r.URL, nil
	}

	parsed, err := url.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("parsing request URL: %w", err)
	}

	// The URL's own query is kept byte for byte; only the new values are encoded.
	if parsed.RawQuery == "" {
		parsed.RawQuery = r.Query.Encode()
	} else {
		parsed.RawQuery += "&" + r.Query.Encode()
	}

	return parsed.String(), nil
}

// buildRequest turns a Request into a retryable request bound to ctx.
func (c *Client) buildRequest(ctx context.Context, req *Request, fullURL string) (*retryablehttp.Request, error) {
	spec, ok := methods[req.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	var body []byte

	if spec.hasBody && req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = encoded
	}

	var rawBody interface{}
	if body != nil {
		rawBody = body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, spec.verb, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	if body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	if c.requestIDs {
		httpReq.Header.Set(constants.HeaderRequestID, uuid.NewString())
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}
