package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/test/harness"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var (
		spec   harness.Spec
		count  int
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a batch of generated vehicles",
		Long: `Create COUNT vehicles sharing one make, model, year and colors. VINs are
"{prefix}{make}.{model}.{i}"; a random prefix is used unless --prefix is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			if prefix == "" {
				prefix = harness.UniquePrefix()
			}

			vehicles := harness.GenerateVehicles(prefix, spec, count)
			h := harness.New(client.Vehicles(), &harness.Config{})

			err = h.CreateAll(context.Background(), vehicles)
			if err != nil {
				return fmt.Errorf("failed to seed vehicles: %w", err)
			}

			return renderVehicles(cmd, vehicles)
		},
	}

	cmd.Flags().StringVar(&spec.Make, "make", "Honda", "vehicle make")
	cmd.Flags().StringVar(&spec.Model, "model", "Accord", "vehicle model")
	cmd.Flags().IntVar(&spec.Year, "year", 2019, "model year")
	cmd.Flags().StringVar(&spec.ExteriorColor, "exterior-color", "Red", "exterior color")
	cmd.Flags().StringVar(&spec.InteriorColor, "interior-color", "Black", "interior color")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of vehicles to create")
	cmd.Flags().StringVar(&prefix, "prefix", "", "VIN prefix")

	return cmd
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every vehicle",
		Long:  "Delete every vehicle the server lists. Requires --force.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return constants.ErrPurgeNotConfirmed
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			h := harness.New(client.Vehicles(), &harness.Config{})

			deleted, err := h.DeleteAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to purge vehicles: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d vehicles\n", deleted)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "confirm deleting every vehicle")

	return cmd
}

// NewWaitCommand creates the wait command.
func NewWaitCommand() *cobra.Command {
	var (
		attempts int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for the API to become ready",
		Long:  "Poll the vehicle listing until it answers 200 or the attempts run out",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			h := harness.New(client.Vehicles(), &harness.Config{
				ReadyAttempts: attempts,
				ReadyInterval: interval,
			})

			err = h.WaitReady(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Vehicle API is ready")

			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", constants.DefaultReadyAttempts, "maximum number of polls")
	cmd.Flags().DurationVar(&interval, "interval", constants.DefaultReadyInterval, "pause between polls")

	return cmd
}
