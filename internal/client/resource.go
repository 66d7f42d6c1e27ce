package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/vehicle-client/internal/http"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// ResourceClient implements vapi.ResourceClient.
type ResourceClient struct {
	httpClient *http.Client
	rc         *vapi.RequestContext
}

// NewResourceClient creates a resource client issuing requests under rc by default.
func NewResourceClient(httpClient *http.Client, rc *vapi.RequestContext) *ResourceClient {
	return &ResourceClient{
		httpClient: httpClient,
		rc:         rc,
	}
}

// call is a resolved request: the effective context, the merged headers and the query.
type call struct {
	rc      *vapi.RequestContext
	headers map[string]string
	query   url.Values
}

// resolve applies per-call options over the client defaults. Per-call headers win over the
// context's headers of the same name.
func (c *ResourceClient) resolve(opts []vapi.CallOption) *call {
	options := vapi.ResolveCallOptions(opts...)

	rc := c.rc
	if options.Context != nil {
		rc = options.Context
	}

	headers := rc.Headers()
	for key, value := range options.Headers {
		headers[key] = value
	}

	return &call{rc: rc, headers: headers, query: options.Query}
}

func (c *ResourceClient) do(ctx context.Context, method http.Method, path string, body interface{}, opts []vapi.CallOption) (*vapi.Response, error) {
	resolved := c.resolve(opts)

	return c.httpClient.Do(ctx, &http.Request{
		Method:  method,
		URL:     resolved.rc.BuildURL(path),
		Query:   resolved.query,
		Headers: resolved.headers,
		Body:    body,
		Timeout: resolved.rc.Timeout(),
	})
}

// Get implements vapi.ResourceClient.Get.
func (c *ResourceClient) Get(ctx context.Context, path string, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts)
}

// Post implements vapi.ResourceClient.Post.
func (c *ResourceClient) Post(ctx context.Context, path string, body interface{}, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts)
}

// Put implements vapi.ResourceClient.Put.
func (c *ResourceClient) Put(ctx context.Context, path string, body interface{}, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.do(ctx, http.MethodPut, path, body, opts)
}

// Delete implements vapi.ResourceClient.Delete.
func (c *ResourceClient) Delete(ctx context.Context, path string, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, opts)
}

// List implements vapi.ResourceClient.List.
//
// Pages are fetched one at a time, following the "next" Link of each response until a page
// carries none. Follow-up requests reuse the merged headers of the first call; the query is
// already part of each next URL. Every page is returned whatever its status. A transport
// failure on any page aborts the listing and discards the pages gathered so far.
//
// A server whose links form a cycle is followed until ctx is done.
func (c *ResourceClient) List(ctx context.Context, path string, opts ...vapi.CallOption) ([]*vapi.Response, error) {
	resolved := c.resolve(opts)

	request := &http.Request{
		Method:  http.MethodGet,
		URL:     resolved.rc.BuildURL(path),
		Query:   resolved.query,
		Headers: resolved.headers,
		Timeout: resolved.rc.Timeout(),
	}

	var pages []*vapi.Response

	for {
		resp, err := c.httpClient.Do(ctx, request)
		if err != nil {
			return nil, fmt.Errorf("listing %s (page %d): %w", path, len(pages)+1, err)
		}

		pages = append(pages, resp)

		next := resp.NextLink()
		if next == "" {
			return pages, nil
		}

		request = &http.Request{
			Method:  http.MethodGet,
			URL:     next,
			Headers: resolved.headers,
			Timeout: resolved.rc.Timeout(),
		}
	}
}
