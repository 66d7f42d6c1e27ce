/*
Package vapi holds the public types of the vehicle API client.

# Request contexts

Every request is issued under a RequestContext: a base URL, default headers and a timeout.
Contexts are immutable; derive a new one with With.

	rc, err := vapi.NewRequestContext(
		vapi.WithBaseURL("http://localhost:8080/api"),
		vapi.WithTimeout(10*time.Second),
	)

Without WithBaseURL the URL is derived from API_HOSTNAME and API_PORT as
http://{host}:{port}/api. A context that cannot be built fails with a *ConfigurationError.

# Responses

Client calls return *Response values for every status code. Only transport failures are
errors (*TransportError), so callers can assert on 304 Not Modified and 412 Precondition
Failed directly:

	resp, err := client.Vehicles().Get(ctx, vin, vapi.IfNoneMatch(etag))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotModified {
		// cached copy is current
	}

# Pagination

List follows the "next" relation of the Link header until it is absent and returns every
page. There is no cycle detection or page cap: a server whose next links loop makes List
run until the caller's context is cancelled.
*/
package vapi
