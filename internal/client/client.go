package client

import (
	"fmt"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/internal/http"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// Client implements the vapi.Client interface.
type Client struct {
	httpClient *http.Client
	rc         *vapi.RequestContext
	logger     vapi.Logger

	// Resource clients
	resources *ResourceClient
	vehicles  *VehiclesClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *vapi.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.DisableRequestID {
		httpOpts = append(httpOpts, http.WithRequestIDs(false))
	}

	if config.Registerer != nil {
		metrics, err := http.NewMetrics(config.Registerer)
		if err != nil {
			return nil, err
		}

		httpOpts = append(httpOpts, http.WithMetrics(metrics))
	}

	return httpOpts, nil
}

// New creates a vehicle API client. config.RequestContext must be set.
func New(config *vapi.Config) (*Client, error) {
	if config == nil {
		return nil, constants.ErrConfigRequired
	}

	if config.RequestContext == nil {
		return nil, &vapi.ConfigurationError{Field: "request context", Err: constants.ErrBaseURLRequired}
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, fmt.Errorf("configuring HTTP client: %w", err)
	}

	httpClient := http.NewClient(httpOpts...)

	client := &Client{
		httpClient: httpClient,
		rc:         config.RequestContext,
		logger:     config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.resources = NewResourceClient(c.httpClient, c.rc)
	c.vehicles = NewVehiclesClient(c.resources)
}

// Resources implements vapi.Client.Resources.
func (c *Client) Resources() vapi.ResourceClient {
	return c.resources
}

// Vehicles implements vapi.Client.Vehicles.
func (c *Client) Vehicles() vapi.VehiclesClient {
	return c.vehicles
}

// RequestContext implements vapi.Client.RequestContext.
func (c *Client) RequestContext() *vapi.RequestContext {
	return c.rc
}
