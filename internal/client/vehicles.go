package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// VehiclesClient implements vapi.VehiclesClient.
type VehiclesClient struct {
	resources vapi.ResourceClient
}

// NewVehiclesClient creates a new vehicles client.
func NewVehiclesClient(resources vapi.ResourceClient) *VehiclesClient {
	return &VehiclesClient{
		resources: resources,
	}
}

// vehiclePath interpolates vin as given. It is not escaped.
func vehiclePath(vin string) string {
	return fmt.Sprintf(constants.VehiclePath, vin)
}

// Get implements vapi.VehiclesClient.Get.
func (c *VehiclesClient) Get(ctx context.Context, vin string, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.resources.Get(ctx, vehiclePath(vin), opts...)
}

// List implements vapi.VehiclesClient.List.
func (c *VehiclesClient) List(ctx context.Context, opts ...vapi.CallOption) ([]*vapi.Response, error) {
	return c.resources.List(ctx, constants.VehiclesPath, opts...)
}

// Create implements vapi.VehiclesClient.Create.
func (c *VehiclesClient) Create(ctx context.Context, vehicle *vapi.Vehicle, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.resources.Post(ctx, constants.VehiclesPath, vehicle, opts...)
}

// Update implements vapi.VehiclesClient.Update.
func (c *VehiclesClient) Update(ctx context.Context, vin string, vehicle *vapi.Vehicle, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.resources.Put(ctx, vehiclePath(vin), vehicle, opts...)
}

// Delete implements vapi.VehiclesClient.Delete.
func (c *VehiclesClient) Delete(ctx context.Context, vin string, opts ...vapi.CallOption) (*vapi.Response, error) {
	return c.resources.Delete(ctx, vehiclePath(vin), opts...)
}

// Search implements vapi.VehiclesClient.Search.
func (c *VehiclesClient) Search(ctx context.Context, filter vapi.VehicleFilter, opts ...vapi.CallOption) ([]*vapi.Response, error) {
	return c.List(ctx, append([]vapi.CallOption{vapi.WithQuery(filter.Values())}, opts...)...)
}

// ListVehicles implements vapi.VehiclesClient.ListVehicles.
func (c *VehiclesClient) ListVehicles(ctx context.Context, opts ...vapi.CallOption) ([]vapi.Vehicle, error) {
	pages, err := c.List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	for i, page := range pages {
		if !page.IsSuccess() {
			return nil, fmt.Errorf("%w: page %d of %s returned %d", constants.ErrUnexpectedStatus, i+1, page.URL, page.StatusCode)
		}
	}

	vehicles, err := vapi.DecodePages[vapi.Vehicle](pages)
	if err != nil {
		return nil, fmt.Errorf("parsing vehicles list: %w", err)
	}

	return vehicles, nil
}
