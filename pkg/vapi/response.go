package vapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomnomnom/linkheader"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
)

// Response is an HTTP exchange result. The body is read in full but never decoded,
// so callers can inspect the status and headers before interpreting it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// URL is the absolute URL the request was sent to, including its query.
	URL string
}

// ETag returns the resource version token, or "" when the server sent none.
func (r *Response) ETag() string {
	return r.Header.Get(constants.HeaderETag)
}

// NoCache reports whether the server sent Pragma: no-cache.
func (r *Response) NoCache() bool {
	for _, value := range r.Header.Values(constants.HeaderPragma) {
		for _, directive := range strings.Split(value, ",") {
			if strings.EqualFold(strings.TrimSpace(directive), constants.PragmaNoCache) {
				return true
			}
		}
	}

	return false
}

// NextLink returns the URL of the "next" relation in the Link headers, or "" when absent.
func (r *Response) NextLink() string {
	links := linkheader.ParseMultiple(r.Header.Values(constants.HeaderLink))

	next := links.FilterByRel(constants.RelNext)
	if len(next) == 0 {
		return ""
	}

	return next[0].URL
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v interface{}) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("decoding %d response from %s: %w", r.StatusCode, r.URL, err)
	}

	return nil
}

// DecodeVehicle decodes a single vehicle body.
func DecodeVehicle(resp *Response) (*Vehicle, error) {
	var vehicle Vehicle

	err := resp.Decode(&vehicle)
	if err != nil {
		return nil, err
	}

	return &vehicle, nil
}

// DecodePages decodes each page's JSON array body and concatenates the results in page order.
func DecodePages[T any](pages []*Response) ([]T, error) {
	resources := make([]T, 0)

	for i, page := range pages {
		var items []T

		err := page.Decode(&items)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}

		resources = append(resources, items...)
	}

	return resources, nil
}
