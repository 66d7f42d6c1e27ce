package client_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/internal/fakeapi"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

func TestVehiclesClient_CreateRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx := context.Background()
	input := testVehicle("VIN1")

	created, err := c.Vehicles().Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, created.StatusCode)

	resp, err := c.Vehicles().Get(ctx, "VIN1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.ETag())
	assert.True(t, resp.NoCache())

	vehicle, err := vapi.DecodeVehicle(resp)
	require.NoError(t, err)
	assert.NotZero(t, vehicle.UpdatedAt)
	assert.False(t, vehicle.UpdatedTime().IsZero())

	vehicle.UpdatedAt = 0
	assert.Equal(t, *input, *vehicle)
}

func TestVehiclesClient_ConditionalGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.Vehicles().Create(ctx, testVehicle("VIN1"))
	require.NoError(t, err)

	resp, err := c.Vehicles().Get(ctx, "VIN1", vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp, err = c.Vehicles().Get(ctx, "VIN1", vapi.IfNoneMatch("nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ETag(), resp.ETag())
}

func TestVehiclesClient_ConditionalUpdate(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.Vehicles().Create(ctx, testVehicle("VIN1"))
	require.NoError(t, err)

	change := testVehicle("VIN1")
	change.ExteriorColor = "Red"

	resp, err := c.Vehicles().Update(ctx, "VIN1", change, vapi.IfNoneMatch("nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)

	resp, err = c.Vehicles().Update(ctx, "VIN1", change, vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, created.ETag(), resp.ETag())

	updated, err := vapi.DecodeVehicle(resp)
	require.NoError(t, err)
	assert.Equal(t, "Red", updated.ExteriorColor)

	// The old tag is now stale.
	resp, err = c.Vehicles().Update(ctx, "VIN1", change, vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestVehiclesClient_ConditionalDelete(t *testing.T) {
	t.Parallel()

	c, api := newTestClient(t)
	ctx := context.Background()

	created, err := c.Vehicles().Create(ctx, testVehicle("VIN1"))
	require.NoError(t, err)

	resp, err := c.Vehicles().Delete(ctx, "VIN1", vapi.IfNoneMatch("nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, 1, api.Len())

	resp, err = c.Vehicles().Delete(ctx, "VIN1", vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = c.Vehicles().Get(ctx, "VIN1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = c.Vehicles().Delete(ctx, "VIN1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVehiclesClient_Search(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, fakeapi.WithPageSize(4))
	ctx := context.Background()

	combos := []struct {
		year  int
		color string
	}{
		{year: 2019, color: "Black"},
		{year: 2020, color: "Black"},
		{year: 2021, color: "Tan"},
		{year: 2022, color: "Tan"},
	}

	for i, combo := range combos {
		for j := 0; j < 5; j++ {
			vehicle := testVehicle(fmt.Sprintf("VIN%d-%d", i, j))
			vehicle.Year = combo.year
			vehicle.InteriorColor = combo.color

			resp, err := c.Vehicles().Create(ctx, vehicle)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}
	}

	tests := []struct {
		name   string
		filter vapi.VehicleFilter
		count  int
	}{
		{name: "single year", filter: vapi.VehicleFilter{Years: []int{2019}}, count: 5},
		{name: "two years", filter: vapi.VehicleFilter{Years: []int{2019, 2020}}, count: 10},
		{name: "interior color", filter: vapi.VehicleFilter{InteriorColors: []string{"Black"}}, count: 10},
		{name: "year and interior color", filter: vapi.VehicleFilter{Years: []int{2019, 2021}, InteriorColors: []string{"Black"}}, count: 5},
		{name: "everything", filter: vapi.VehicleFilter{}, count: 20},
	}

	for _, testCase := range tests {
		pages, err := c.Vehicles().Search(ctx, testCase.filter)
		require.NoError(t, err, testCase.name)

		vehicles, err := vapi.DecodePages[vapi.Vehicle](pages)
		require.NoError(t, err, testCase.name)
		assert.Len(t, vehicles, testCase.count, testCase.name)
	}
}

func TestVehiclesClient_EndToEnd(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, fakeapi.WithPageSize(3))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		resp, err := c.Vehicles().Create(ctx, testVehicle(fmt.Sprintf("VIN%d", i)))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	vehicles, err := c.Vehicles().ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, vehicles, 10)

	for _, vehicle := range vehicles {
		resp, err := c.Vehicles().Delete(ctx, vehicle.VIN)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	vehicles, err = c.Vehicles().ListVehicles(ctx)
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}

func TestVehiclesClient_ListVehicles_ErrorStatus(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)

	_, err := c.Vehicles().ListVehicles(context.Background(), vapi.WithQuery(map[string][]string{"color": {"red"}}))
	require.ErrorIs(t, err, constants.ErrUnexpectedStatus)
}

func TestVehiclesClient_DuplicateCreate(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	ctx := context.Background()

	resp, err := c.Vehicles().Create(ctx, testVehicle("VIN1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Vehicles().Create(ctx, testVehicle("VIN1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
