package vclient

import (
	"fmt"

	"github.com/fivetwenty-io/vehicle-client/internal/client"
	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// New creates a vehicle API client. When config.RequestContext is nil one is derived from
// the API_HOSTNAME and API_PORT environment variables.
func New(config *vapi.Config) (vapi.Client, error) {
	if config == nil {
		return nil, constants.ErrConfigRequired
	}

	resolved := *config

	if resolved.RequestContext == nil {
		rc, err := vapi.NewRequestContext()
		if err != nil {
			return nil, err
		}

		resolved.RequestContext = rc
	}

	c, err := client.New(&resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithEndpoint creates a client for baseURL with default headers and timeout.
func NewWithEndpoint(baseURL string) (vapi.Client, error) {
	rc, err := vapi.NewRequestContext(vapi.WithBaseURL(baseURL))
	if err != nil {
		return nil, err
	}

	return New(&vapi.Config{RequestContext: rc})
}

// NewWithContext creates a client issuing every call under rc unless overridden per call.
func NewWithContext(rc *vapi.RequestContext) (vapi.Client, error) {
	return New(&vapi.Config{RequestContext: rc})
}
