package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var ifNoneMatch string

	cmd := &cobra.Command{
		Use:   "get VIN",
		Short: "Get a vehicle",
		Long:  "Fetch a single vehicle by VIN. With --if-none-match the server answers 304 when the ETag is current.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			var opts []vapi.CallOption
			if ifNoneMatch != "" {
				opts = append(opts, vapi.IfNoneMatch(ifNoneMatch))
			}

			resp, err := client.Vehicles().Get(context.Background(), args[0], opts...)
			if err != nil {
				return fmt.Errorf("failed to get vehicle: %w", err)
			}

			if resp.StatusCode == http.StatusNotModified {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Vehicle %s not modified\n", args[0])

				return nil
			}

			if err := checkStatus(resp, http.StatusOK); err != nil {
				return fmt.Errorf("failed to get vehicle %s: %w", args[0], err)
			}

			vehicle, err := vapi.DecodeVehicle(resp)
			if err != nil {
				return err
			}

			return renderVehicle(cmd, vehicle, resp.ETag())
		},
	}

	cmd.Flags().StringVar(&ifNoneMatch, "if-none-match", "", "only return the vehicle if its ETag differs")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List vehicles",
		Long:    "List every vehicle, following pagination links until the last page",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			vehicles, err := client.Vehicles().ListVehicles(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list vehicles: %w", err)
			}

			return renderVehicles(cmd, vehicles)
		},
	}
}

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var filter vapi.VehicleFilter

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search vehicles",
		Long: `Search vehicles by attribute. Repeat a flag to match any of several values;
different flags must all match.

  vehicles search --year 2019 --year 2020 --interior-color Black`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			pages, err := client.Vehicles().Search(context.Background(), filter)
			if err != nil {
				return fmt.Errorf("failed to search vehicles: %w", err)
			}

			for _, page := range pages {
				if err := checkStatus(page, http.StatusOK); err != nil {
					return fmt.Errorf("failed to search vehicles: %w", err)
				}
			}

			vehicles, err := vapi.DecodePages[vapi.Vehicle](pages)
			if err != nil {
				return err
			}

			return renderVehicles(cmd, vehicles)
		},
	}

	cmd.Flags().StringSliceVar(&filter.Makes, "make", nil, "match make")
	cmd.Flags().StringSliceVar(&filter.Models, "model", nil, "match model")
	cmd.Flags().IntSliceVar(&filter.Years, "year", nil, "match model year")
	cmd.Flags().StringSliceVar(&filter.ExteriorColors, "exterior-color", nil, "match exterior color")
	cmd.Flags().StringSliceVar(&filter.InteriorColors, "interior-color", nil, "match interior color")

	return cmd
}

// vehicleFlags are the attribute flags shared by create and update.
type vehicleFlags struct {
	file          string
	vehicleMake   string
	model         string
	year          int
	exteriorColor string
	interiorColor string
}

func (f *vehicleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "read the vehicle from a JSON or YAML file")
	cmd.Flags().StringVar(&f.vehicleMake, "make", "", "vehicle make")
	cmd.Flags().StringVar(&f.model, "model", "", "vehicle model")
	cmd.Flags().IntVar(&f.year, "year", 0, "model year")
	cmd.Flags().StringVar(&f.exteriorColor, "exterior-color", "", "exterior color")
	cmd.Flags().StringVar(&f.interiorColor, "interior-color", "", "interior color")
}

// vehicle builds the request body: the file first, then any attribute flags over it.
func (f *vehicleFlags) vehicle(vin string) (*vapi.Vehicle, error) {
	vehicle := &vapi.Vehicle{}

	if f.file != "" {
		data, err := os.ReadFile(filepath.Clean(f.file))
		if err != nil {
			return nil, fmt.Errorf("reading vehicle file: %w", err)
		}

		// YAML is a superset of JSON, so one decoder reads both.
		err = yaml.Unmarshal(data, vehicle)
		if err != nil {
			return nil, fmt.Errorf("parsing vehicle file: %w", err)
		}
	}

	if vin != "" {
		vehicle.VIN = vin
	}

	if f.vehicleMake != "" {
		vehicle.Make = f.vehicleMake
	}

	if f.model != "" {
		vehicle.Model = f.model
	}

	if f.year != 0 {
		vehicle.Year = f.year
	}

	if f.exteriorColor != "" {
		vehicle.ExteriorColor = f.exteriorColor
	}

	if f.interiorColor != "" {
		vehicle.InteriorColor = f.interiorColor
	}

	return vehicle, nil
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	flags := &vehicleFlags{}

	cmd := &cobra.Command{
		Use:   "create [VIN]",
		Short: "Create a vehicle",
		Long:  "Create a vehicle from flags, a JSON or YAML file, or both",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vin := ""
			if len(args) == 1 {
				vin = args[0]
			}

			vehicle, err := flags.vehicle(vin)
			if err != nil {
				return err
			}

			if vehicle.VIN == "" {
				return constants.ErrVINRequired
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.Vehicles().Create(context.Background(), vehicle)
			if err != nil {
				return fmt.Errorf("failed to create vehicle: %w", err)
			}

			if err := checkStatus(resp, http.StatusOK); err != nil {
				return fmt.Errorf("failed to create vehicle %s: %w", vehicle.VIN, err)
			}

			created, err := vapi.DecodeVehicle(resp)
			if err != nil {
				return err
			}

			return renderVehicle(cmd, created, resp.ETag())
		},
	}

	flags.register(cmd)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	flags := &vehicleFlags{}

	var ifNoneMatch string

	cmd := &cobra.Command{
		Use:   "update VIN",
		Short: "Update a vehicle",
		Long: `Replace a vehicle's attributes. With --if-none-match the update only applies
while the vehicle's ETag still matches; otherwise the server answers 412.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicle, err := flags.vehicle(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			var opts []vapi.CallOption
			if ifNoneMatch != "" {
				opts = append(opts, vapi.IfNoneMatch(ifNoneMatch))
			}

			resp, err := client.Vehicles().Update(context.Background(), args[0], vehicle, opts...)
			if err != nil {
				return fmt.Errorf("failed to update vehicle: %w", err)
			}

			if err := checkStatus(resp, http.StatusOK); err != nil {
				return fmt.Errorf("failed to update vehicle %s: %w", args[0], err)
			}

			updatedVehicle, err := vapi.DecodeVehicle(resp)
			if err != nil {
				return err
			}

			return renderVehicle(cmd, updatedVehicle, resp.ETag())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&ifNoneMatch, "if-none-match", "", "ETag the vehicle must currently have")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var ifNoneMatch string

	cmd := &cobra.Command{
		Use:     "delete VIN",
		Aliases: []string{"rm"},
		Short:   "Delete a vehicle",
		Long:    "Delete a vehicle. With --if-none-match the delete only applies while the vehicle's ETag still matches.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			var opts []vapi.CallOption
			if ifNoneMatch != "" {
				opts = append(opts, vapi.IfNoneMatch(ifNoneMatch))
			}

			resp, err := client.Vehicles().Delete(context.Background(), args[0], opts...)
			if err != nil {
				return fmt.Errorf("failed to delete vehicle: %w", err)
			}

			if err := checkStatus(resp, http.StatusNoContent); err != nil {
				return fmt.Errorf("failed to delete vehicle %s: %w", args[0], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted vehicle %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringVar(&ifNoneMatch, "if-none-match", "", "ETag the vehicle must currently have")

	return cmd
}
