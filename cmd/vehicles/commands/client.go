package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/vehicle-client/internal/config"
	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/internal/logging"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
	"github.com/fivetwenty-io/vehicle-client/pkg/vclient"
)

// loadSettings resolves settings from viper and merges --header flags over configured headers.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	headers, err := parseHeaders(cmd)
	if err != nil {
		return nil, err
	}

	if len(headers) > 0 {
		if settings.Headers == nil {
			settings.Headers = map[string]string{}
		}

		for key, value := range headers {
			settings.Headers[key] = value
		}
	}

	return settings, nil
}

func parseHeaders(cmd *cobra.Command) (map[string]string, error) {
	flag := cmd.Flags().Lookup("header")
	if flag == nil {
		return nil, nil
	}

	values, err := cmd.Flags().GetStringSlice("header")
	if err != nil {
		return nil, fmt.Errorf("reading headers: %w", err)
	}

	headers := make(map[string]string, len(values))

	for _, value := range values {
		key, val, found := strings.Cut(value, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeaderFormat, value)
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}

	return headers, nil
}

// createClient builds a client from the resolved settings.
func createClient(cmd *cobra.Command) (vapi.Client, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}

	rc, err := settings.RequestContext()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(settings.Verbose || settings.Debug)
	if err != nil {
		return nil, err
	}

	return vclient.New(&vapi.Config{
		RequestContext: rc,
		Logger:         logging.NewZapLogger(logger),
		Debug:          settings.Debug,
	})
}
