package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/vehicle-client/internal/config"
	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/internal/fakeapi"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// These tests share the global viper instance and the isTerminal hook, so none run in parallel.

func setupAPI(t *testing.T, terminal bool, opts ...fakeapi.Option) *fakeapi.Server {
	t.Helper()

	api := fakeapi.New(opts...)
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	viper.Reset()
	config.SetDefaults(viper.GetViper())
	viper.Set(config.KeyAPIURL, server.URL+"/api")
	t.Cleanup(viper.Reset)

	previous := isTerminal
	isTerminal = func(io.Writer) bool { return terminal }

	t.Cleanup(func() { isTerminal = previous })

	return api
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func createArgs(vin string) []string {
	return []string{vin, "--make", "Toyota", "--model", "Tacoma", "--year", "2019",
		"--exterior-color", "Silver", "--interior-color", "Black"}
}

func TestCreateAndGetCommands(t *testing.T) {
	api := setupAPI(t, false)

	out, err := run(t, NewCreateCommand(), createArgs("VIN1")...)
	require.NoError(t, err)

	var created vehicleOutput

	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "VIN1", created.VIN)
	assert.Equal(t, "Tacoma", created.Model)
	assert.NotEmpty(t, created.ETag)
	assert.Equal(t, 1, api.Len())

	out, err = run(t, NewGetCommand(), "VIN1")
	require.NoError(t, err)

	var fetched vehicleOutput

	require.NoError(t, json.Unmarshal([]byte(out), &fetched))
	assert.Equal(t, created, fetched)

	out, err = run(t, NewGetCommand(), "VIN1", "--if-none-match", created.ETag)
	require.NoError(t, err)
	assert.Equal(t, "Vehicle VIN1 not modified\n", out)
}

func TestCreateCommand_FromFile(t *testing.T) {
	setupAPI(t, false)

	path := filepath.Join(t.TempDir(), "vehicle.yml")
	require.NoError(t, os.WriteFile(path, []byte(`vin: VIN9
make: Ford
model: Focus
year: 2021
exterior_color: Blue
interior_color: Tan
`), 0o600))

	out, err := run(t, NewCreateCommand(), "--file", path, "--model", "Fusion")
	require.NoError(t, err)

	var created vehicleOutput

	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "VIN9", created.VIN)
	assert.Equal(t, "Fusion", created.Model)
}

func TestCreateCommand_Errors(t *testing.T) {
	setupAPI(t, false)

	_, err := run(t, NewCreateCommand(), "--make", "Toyota")
	require.ErrorIs(t, err, constants.ErrVINRequired)

	_, err = run(t, NewCreateCommand(), "VIN1", "--make", "Toyota")
	require.ErrorIs(t, err, constants.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "a model is required")
}

func TestUpdateCommand(t *testing.T) {
	setupAPI(t, false)

	out, err := run(t, NewCreateCommand(), createArgs("VIN1")...)
	require.NoError(t, err)

	var created vehicleOutput

	require.NoError(t, json.Unmarshal([]byte(out), &created))

	args := append(createArgs("VIN1"), "--exterior-color", "Red", "--if-none-match", "stale")

	_, err = run(t, NewUpdateCommand(), args...)
	require.ErrorIs(t, err, constants.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "412")

	args = append(createArgs("VIN1"), "--exterior-color", "Red", "--if-none-match", created.ETag)

	out, err = run(t, NewUpdateCommand(), args...)
	require.NoError(t, err)

	var updated vehicleOutput

	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, "Red", updated.ExteriorColor)
	assert.NotEqual(t, created.ETag, updated.ETag)
}

func TestDeleteCommand(t *testing.T) {
	api := setupAPI(t, false)

	_, err := run(t, NewCreateCommand(), createArgs("VIN1")...)
	require.NoError(t, err)

	out, err := run(t, NewDeleteCommand(), "VIN1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted vehicle VIN1\n", out)
	assert.Equal(t, 0, api.Len())

	_, err = run(t, NewDeleteCommand(), "VIN1")
	require.ErrorIs(t, err, constants.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestListAndSearchCommands(t *testing.T) {
	setupAPI(t, false, fakeapi.WithPageSize(2))

	for _, args := range [][]string{
		createArgs("VIN1"),
		append(createArgs("VIN2"), "--year", "2020"),
		append(createArgs("VIN3"), "--interior-color", "Tan"),
	} {
		_, err := run(t, NewCreateCommand(), args...)
		require.NoError(t, err)
	}

	out, err := run(t, NewListCommand())
	require.NoError(t, err)

	var listed []vapi.Vehicle

	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 3)

	tests := []struct {
		args []string
		vins []string
	}{
		{args: []string{"--year", "2019"}, vins: []string{"VIN1", "VIN3"}},
		{args: []string{"--year", "2019", "--year", "2020"}, vins: []string{"VIN1", "VIN2", "VIN3"}},
		{args: []string{"--year", "2019", "--interior-color", "Black"}, vins: []string{"VIN1"}},
		{args: []string{"--make", "Ford"}, vins: []string{}},
	}

	for _, testCase := range tests {
		out, err := run(t, NewSearchCommand(), testCase.args...)
		require.NoError(t, err, testCase.args)

		var found []vapi.Vehicle

		require.NoError(t, json.Unmarshal([]byte(out), &found))

		vins := make([]string, 0, len(found))
		for _, vehicle := range found {
			vins = append(vins, vehicle.VIN)
		}

		assert.Equal(t, testCase.vins, vins, testCase.args)
	}
}

func TestListCommand_Table(t *testing.T) {
	setupAPI(t, true)

	out, err := run(t, NewListCommand())
	require.NoError(t, err)
	assert.Equal(t, "No vehicles found\n", out)

	_, err = run(t, NewCreateCommand(), createArgs("VIN1")...)
	require.NoError(t, err)

	out, err = run(t, NewListCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "VIN1")
	assert.Contains(t, out, "Tacoma")
}

func TestOutputFormat(t *testing.T) {
	setupAPI(t, false)

	viper.Set(config.KeyOutput, "xml")

	_, err := run(t, NewListCommand())
	require.ErrorIs(t, err, constants.ErrUnsupportedOutput)
}

func TestSeedAndPurgeCommands(t *testing.T) {
	api := setupAPI(t, false)

	out, err := run(t, NewSeedCommand(), "--count", "3", "--prefix", "t-", "--make", "Ford", "--model", "Focus")
	require.NoError(t, err)

	var seeded []vapi.Vehicle

	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	require.Len(t, seeded, 3)
	assert.Equal(t, "t-Ford.Focus.0", seeded[0].VIN)
	assert.Equal(t, 3, api.Len())

	_, err = run(t, NewPurgeCommand())
	require.ErrorIs(t, err, constants.ErrPurgeNotConfirmed)
	assert.Equal(t, 3, api.Len())

	out, err = run(t, NewPurgeCommand(), "--force")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 3 vehicles\n", out)
	assert.Equal(t, 0, api.Len())
}

func TestWaitCommand(t *testing.T) {
	setupAPI(t, false)

	out, err := run(t, NewWaitCommand(), "--attempts", "1")
	require.NoError(t, err)
	assert.Equal(t, "Vehicle API is ready\n", out)

	viper.Set(config.KeyAPIURL, "http://127.0.0.1:1/api")

	_, err = run(t, NewWaitCommand(), "--attempts", "2", "--interval", "1ms")
	require.ErrorIs(t, err, constants.ErrServerNotReady)
}

func TestConfigCommands(t *testing.T) {
	setupAPI(t, false)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.Set("config", path)

	out, err := run(t, NewConfigCommand(), "set", config.KeyPort, "9090")
	require.NoError(t, err)
	assert.Equal(t, "Set api_port in "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "api_port: \"9090\"\n", string(data))

	_, err = run(t, NewConfigCommand(), "set", "colour", "red")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	viper.Set(config.KeyHeaders, map[string]string{"x-tenant": "blue"})

	out, err = run(t, NewConfigCommand(), "show")
	require.NoError(t, err)

	var settings config.Settings

	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	assert.Equal(t, "localhost", settings.Hostname)
	assert.Equal(t, map[string]string{"x-tenant": "blue"}, settings.Headers)
}

func TestVersionCommand(t *testing.T) {
	setupAPI(t, false)

	out, err := run(t, NewVersionCommand("1.2.3", "abc123", "today"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc123","built":"today"}`, out)
}

func TestParseHeaders(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringSliceP("header", "H", nil, "")

	require.NoError(t, cmd.Flags().Parse([]string{"-H", "X-One = 1", "-H", "X-Two=a=b"}))

	headers, err := parseHeaders(cmd)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-One": "1", "X-Two": "a=b"}, headers)

	bad := &cobra.Command{Use: "test"}
	bad.Flags().StringSliceP("header", "H", nil, "")
	require.NoError(t, bad.Flags().Parse([]string{"-H", "novalue"}))

	_, err = parseHeaders(bad)
	require.ErrorIs(t, err, constants.ErrInvalidHeaderFormat)
}
