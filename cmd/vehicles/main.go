package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/vehicle-client/cmd/vehicles/commands"
	"github.com/fivetwenty-io/vehicle-client/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Vehicle API CLI",
	Long: `A command-line interface for the vehicle REST API.

Vehicles can be fetched, listed, searched, created, updated and deleted.
Updates and deletes can be made conditional on the vehicle's current ETag.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.vehicles/config.yml)")
	rootCmd.PersistentFlags().StringP("api", "a", "", "API base URL, e.g. http://localhost:8080/api")
	rootCmd.PersistentFlags().String("hostname", "", "API hostname (default localhost)")
	rootCmd.PersistentFlags().String("port", "", "API port (default 8080)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout (default 5s)")
	rootCmd.PersistentFlags().StringSliceP("header", "H", nil, "extra request header in key=value form, repeatable")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "log every request and response")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag(config.KeyAPIURL, rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag(config.KeyHostname, rootCmd.PersistentFlags().Lookup("hostname"))
	_ = viper.BindPFlag(config.KeyPort, rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag(config.KeyTimeout, rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag(config.KeyOutput, rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag(config.KeyVerbose, rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag(config.KeyDebug, rootCmd.PersistentFlags().Lookup("debug"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewPurgeCommand())
	rootCmd.AddCommand(commands.NewWaitCommand())
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfgFile := viper.GetString("config")
	if cfgFile == "" {
		path, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		cfgFile = path
	}

	if err := config.ReadFile(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if viper.GetBool(config.KeyVerbose) && viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
