package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/vehicle-client/internal/config"
	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && term.IsTerminal(int(file.Fd()))
}

// outputFormat returns the requested format. Without an explicit --output, tables are only
// drawn on a terminal; piped output defaults to json.
func outputFormat(cmd *cobra.Command) (string, error) {
	format := viper.GetString(config.KeyOutput)

	explicit := cmd.Flags().Changed("output") || viper.InConfig(config.KeyOutput) || os.Getenv(config.EnvPrefix+"_OUTPUT") != ""
	if !explicit && format == outputTable && !isTerminal(cmd.OutOrStdout()) {
		format = outputJSON
	}

	switch format {
	case outputTable, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

func encode(w io.Writer, format string, value interface{}) error {
	switch format {
	case outputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(constants.JSONIndentSize)

		defer func() {
			_ = encoder.Close()
		}()

		return encoder.Encode(value)
	}

	return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
}

// renderVehicles writes vehicles in format.
func renderVehicles(cmd *cobra.Command, vehicles []vapi.Vehicle) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if format != outputTable {
		return encode(out, format, vehicles)
	}

	if len(vehicles) == 0 {
		_, _ = fmt.Fprintln(out, "No vehicles found")

		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("VIN", "Make", "Model", "Year", "Exterior", "Interior", "Updated")

	for _, vehicle := range vehicles {
		_ = table.Append(vehicle.VIN, vehicle.Make, vehicle.Model, strconv.Itoa(vehicle.Year),
			vehicle.ExteriorColor, vehicle.InteriorColor, updated(vehicle))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// vehicleOutput is a single vehicle together with its version token.
type vehicleOutput struct {
	vapi.Vehicle `yaml:",inline"`
	ETag         string `json:"etag,omitempty" yaml:"etag,omitempty"`
}

// renderVehicle writes one vehicle and its ETag in format.
func renderVehicle(cmd *cobra.Command, vehicle *vapi.Vehicle, etag string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if format != outputTable {
		return encode(out, format, vehicleOutput{Vehicle: *vehicle, ETag: etag})
	}

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")
	_ = table.Append("VIN", vehicle.VIN)
	_ = table.Append("Make", vehicle.Make)
	_ = table.Append("Model", vehicle.Model)
	_ = table.Append("Year", strconv.Itoa(vehicle.Year))
	_ = table.Append("Exterior Color", vehicle.ExteriorColor)
	_ = table.Append("Interior Color", vehicle.InteriorColor)
	_ = table.Append("Updated", updated(*vehicle))
	_ = table.Append("ETag", etag)

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func updated(vehicle vapi.Vehicle) string {
	if vehicle.UpdatedAt == 0 {
		return ""
	}

	return vehicle.UpdatedTime().UTC().Format("2006-01-02 15:04:05.000")
}

// checkStatus returns an error carrying the server's message when resp has an unexpected status.
func checkStatus(resp *vapi.Response, expected ...int) error {
	for _, code := range expected {
		if resp.StatusCode == code {
			return nil
		}
	}

	var body struct {
		Message string `json:"message"`
	}

	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &body) == nil && body.Message != "" {
		return fmt.Errorf("%w: %d: %s", constants.ErrUnexpectedStatus, resp.StatusCode, body.Message)
	}

	return fmt.Errorf("%w: %d", constants.ErrUnexpectedStatus, resp.StatusCode)
}
