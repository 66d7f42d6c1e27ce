package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/vehicle-client/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show the resolved configuration or store settings in the config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			if format != outputTable {
				return encode(cmd.OutOrStdout(), format, settings)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Property", "Value")
			_ = table.Append("API URL", settings.APIURL)
			_ = table.Append("API Hostname", settings.Hostname)
			_ = table.Append("API Port", settings.Port)
			_ = table.Append("Timeout", settings.Timeout.String())
			_ = table.Append("Headers", formatHeaders(settings.Headers))
			_ = table.Append("Output", settings.Output)
			_ = table.Append("Config File", viper.ConfigFileUsed())

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a setting in the config file",
		Long: fmt.Sprintf(`Store a setting in the config file. An empty VALUE removes the key.

Keys: %s`, strings.Join(settableKeys(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if path == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return err
				}

				path = defaultPath
			}

			err := config.Set(path, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to set %s: %w", args[0], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)

			return nil
		},
	}
}

func settableKeys() []string {
	keys := make([]string, 0, len(config.Keys))

	for _, key := range config.Keys {
		if key != config.KeyHeaders {
			keys = append(keys, key)
		}
	}

	return keys
}

func formatHeaders(headers map[string]string) string {
	pairs := make([]string, 0, len(headers))

	for key, value := range headers {
		pairs = append(pairs, key+"="+value)
	}

	sort.Strings(pairs)

	return strings.Join(pairs, ", ")
}
