// Package config loads CLI settings from flags, environment variables and
// $HOME/.vehicles/config.yml through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// Setting keys.
const (
	KeyAPIURL   = "api_url"
	KeyHostname = "api_hostname"
	KeyPort     = "api_port"
	KeyTimeout  = "timeout"
	KeyHeaders  = "headers"
	KeyOutput   = "output"
	KeyVerbose  = "verbose"
	KeyDebug    = "debug"
)

// EnvPrefix prefixes environment variables for settings without a dedicated name,
// for example VEHICLES_TIMEOUT.
const EnvPrefix = "VEHICLES"

// Keys lists every setting the CLI understands.
var Keys = []string{KeyAPIURL, KeyHostname, KeyPort, KeyTimeout, KeyHeaders, KeyOutput, KeyVerbose, KeyDebug}

var (
	ErrUnknownKey      = errors.New("unknown configuration key")
	ErrNegativeTimeout = errors.New("timeout must not be negative")
)

// Settings represents the resolved CLI configuration.
type Settings struct {
	APIURL   string            `json:"api_url,omitempty" yaml:"api_url,omitempty"`
	Hostname string            `json:"api_hostname"      yaml:"api_hostname"`
	Port     string            `json:"api_port"          yaml:"api_port"`
	Timeout  time.Duration     `json:"timeout"           yaml:"timeout"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Output   string            `json:"output"            yaml:"output"`
	Verbose  bool              `json:"verbose"           yaml:"verbose"`
	Debug    bool              `json:"debug"             yaml:"debug"`
}

// SetDefaults registers the documented defaults.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHostname, constants.DefaultAPIHostname)
	v.SetDefault(KeyPort, constants.DefaultAPIPort)
	v.SetDefault(KeyTimeout, constants.DefaultRequestTimeout)
	v.SetDefault(KeyOutput, "table")
}

// BindEnv binds API_HOSTNAME, API_PORT and API_URL, and VEHICLES_* for everything else.
func BindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		KeyHostname: constants.EnvAPIHostname,
		KeyPort:     constants.EnvAPIPort,
		KeyAPIURL:   constants.EnvAPIURL,
	}

	for key, env := range bindings {
		err := v.BindEnv(key, env)
		if err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// DefaultPath returns $HOME/.vehicles/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, "config.yml"), nil
}

// ReadFile reads path into v. A missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("reading config file %s: %w", path, err)
}

// New returns a viper instance with defaults and environment bindings applied.
func New() (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	err := BindEnv(v)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	settings := &Settings{
		APIURL:   v.GetString(KeyAPIURL),
		Hostname: v.GetString(KeyHostname),
		Port:     v.GetString(KeyPort),
		Timeout:  v.GetDuration(KeyTimeout),
		Headers:  v.GetStringMapString(KeyHeaders),
		Output:   v.GetString(KeyOutput),
		Verbose:  v.GetBool(KeyVerbose),
		Debug:    v.GetBool(KeyDebug),
	}

	if settings.Timeout < 0 {
		return nil, &vapi.ConfigurationError{Field: KeyTimeout, Err: fmt.Errorf("%w: %s", ErrNegativeTimeout, settings.Timeout)}
	}

	return settings, nil
}

// RequestContext builds the default request context. api_url wins over hostname and port.
func (s *Settings) RequestContext() (*vapi.RequestContext, error) {
	opts := []vapi.ContextOption{vapi.WithTimeout(s.Timeout)}

	if s.APIURL != "" {
		opts = append(opts, vapi.WithBaseURL(s.APIURL))
	} else {
		opts = append(opts, vapi.WithEnv(s.lookup))
	}

	if len(s.Headers) > 0 {
		opts = append(opts, vapi.WithHeaders(s.Headers))
	}

	return vapi.NewRequestContext(opts...)
}

// lookup resolves API_HOSTNAME and API_PORT from the settings.
func (s *Settings) lookup(key string) (string, bool) {
	switch key {
	case constants.EnvAPIHostname:
		return s.Hostname, s.Hostname != ""
	case constants.EnvAPIPort:
		return s.Port, s.Port != ""
	default:
		return "", false
	}
}

// Set stores a single key in the config file at path, creating it when needed.
func Set(path, key, value string) error {
	if !isKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	values := map[string]interface{}{}

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config file: %w", err)
	}

	if len(data) > 0 {
		err = yaml.Unmarshal(data, &values)
		if err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}

	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}

	out, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding config file: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	err = os.WriteFile(path, out, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func isKey(key string) bool {
	for _, known := range Keys {
		if known == key && known != KeyHeaders {
			return true
		}
	}

	return false
}
