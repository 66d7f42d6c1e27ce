//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
	"github.com/fivetwenty-io/vehicle-client/test/harness"
)

// setup waits for the configured server, empties it, and empties it again when the test ends.
// Tests in this package share one server and must not run in parallel.
func setup(t *testing.T) (*harness.Harness, vapi.Client) {
	t.Helper()

	config := harness.LoadConfig()
	config.SkipIfMissingConfig(t)

	client, err := config.Client(zaptest.NewLogger(t))
	require.NoError(t, err)

	h := harness.New(client.Vehicles(), config)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.ReadyAttempts)*(config.ReadyInterval+config.RequestTimeout))
	defer cancel()

	require.NoError(t, h.WaitReady(ctx))

	_, err = h.DeleteAll(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := h.DeleteAll(context.Background())
		assert.NoError(t, err)
	})

	return h, client
}

func tacoma(vin string) *vapi.Vehicle {
	return &vapi.Vehicle{
		VIN:           vin,
		Make:          "Toyota",
		Model:         "Tacoma",
		Year:          2019,
		ExteriorColor: "Silver",
		InteriorColor: "Black",
	}
}

func TestVehicles_CreateRoundTrip(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	input := tacoma(harness.UniquePrefix() + "roundtrip")

	resp, err := client.Vehicles().Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Vehicles().Get(ctx, input.VIN)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	vehicle, err := vapi.DecodeVehicle(resp)
	require.NoError(t, err)
	assert.NotZero(t, vehicle.UpdatedAt)

	vehicle.UpdatedAt = 0
	assert.Equal(t, *input, *vehicle)
}

func TestVehicles_ConditionalGet(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	vin := harness.UniquePrefix() + "conditional-get"

	created, err := client.Vehicles().Create(ctx, tacoma(vin))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, created.StatusCode)
	require.NotEmpty(t, created.ETag())

	resp, err := client.Vehicles().Get(ctx, vin, vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, resp.Body)

	resp, err = client.Vehicles().Get(ctx, vin, vapi.IfNoneMatch("nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVehicles_ConditionalUpdate(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	vin := harness.UniquePrefix() + "conditional-put"

	created, err := client.Vehicles().Create(ctx, tacoma(vin))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, created.StatusCode)

	change := tacoma(vin)
	change.ExteriorColor = "Red"

	resp, err := client.Vehicles().Update(ctx, vin, change, vapi.IfNoneMatch("nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)

	resp, err = client.Vehicles().Get(ctx, vin)
	require.NoError(t, err)

	unchanged, err := vapi.DecodeVehicle(resp)
	require.NoError(t, err)
	assert.Equal(t, "Silver", unchanged.ExteriorColor)
	assert.Equal(t, created.ETag(), resp.ETag())

	resp, err = client.Vehicles().Update(ctx, vin, change, vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEqual(t, created.ETag(), resp.ETag())

	updated, err := vapi.DecodeVehicle(resp)
	require.NoError(t, err)
	assert.Equal(t, "Red", updated.ExteriorColor)
}

func TestVehicles_ConditionalDelete(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()

	vin := harness.UniquePrefix() + "conditional-delete"

	created, err := client.Vehicles().Create(ctx, tacoma(vin))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, created.StatusCode)

	resp, err := client.Vehicles().Delete(ctx, vin, vapi.IfNoneMatch("nope"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)

	resp, err = client.Vehicles().Get(ctx, vin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Vehicles().Delete(ctx, vin, vapi.IfNoneMatch(created.ETag()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestVehicles_Search(t *testing.T) {
	h, client := setup(t)
	ctx := context.Background()
	prefix := harness.UniquePrefix()

	specs := []harness.Spec{
		{Make: "Honda", Model: "Accord", Year: 2019, ExteriorColor: "Red", InteriorColor: "Black"},
		{Make: "Honda", Model: "Civic", Year: 2020, ExteriorColor: "Red", InteriorColor: "Black"},
		{Make: "Ford", Model: "Focus", Year: 2021, ExteriorColor: "Blue", InteriorColor: "Tan"},
		{Make: "Ford", Model: "Fusion", Year: 2022, ExteriorColor: "Blue", InteriorColor: "Tan"},
	}

	for _, spec := range specs {
		require.NoError(t, h.CreateAll(ctx, harness.GenerateVehicles(prefix, spec, 5)))
	}

	tests := []struct {
		name   string
		filter vapi.VehicleFilter
		count  int
	}{
		{name: "single year", filter: vapi.VehicleFilter{Years: []int{2019}}, count: 5},
		{name: "two years", filter: vapi.VehicleFilter{Years: []int{2019, 2020}}, count: 10},
		{name: "interior color", filter: vapi.VehicleFilter{InteriorColors: []string{"Black"}}, count: 10},
		{name: "year and interior color", filter: vapi.VehicleFilter{Years: []int{2019}, InteriorColors: []string{"Black"}}, count: 5},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			pages, err := client.Vehicles().Search(ctx, testCase.filter)
			require.NoError(t, err)

			for _, page := range pages {
				require.Equal(t, http.StatusOK, page.StatusCode)
			}

			vehicles, err := vapi.DecodePages[vapi.Vehicle](pages)
			require.NoError(t, err)
			assert.Len(t, vehicles, testCase.count)
		})
	}
}

func TestVehicles_EndToEnd(t *testing.T) {
	h, client := setup(t)
	ctx := context.Background()

	vehicles := harness.GenerateVehicles(harness.UniquePrefix(), harness.Spec{
		Make:          "Honda",
		Model:         "Accord",
		Year:          2019,
		ExteriorColor: "Red",
		InteriorColor: "Black",
	}, 10)

	require.NoError(t, h.CreateAll(ctx, vehicles))

	_, err := h.GetAll(ctx, vehicles)
	require.NoError(t, err)

	listed, err := client.Vehicles().ListVehicles(ctx)
	require.NoError(t, err)

	expected := make([]string, 0, len(vehicles))
	for _, vehicle := range vehicles {
		expected = append(expected, vehicle.VIN)
	}

	actual := make([]string, 0, len(listed))
	for _, vehicle := range listed {
		actual = append(actual, vehicle.VIN)
	}

	assert.ElementsMatch(t, expected, actual)

	deleted, err := h.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, deleted)

	listed, err = client.Vehicles().ListVehicles(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed, fmt.Sprintf("expected an empty server, found %d vehicles", len(listed)))
}
