package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fivetwenty-io/vehicle-client/internal/constants"
	"github.com/fivetwenty-io/vehicle-client/internal/logging"
	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
	"github.com/fivetwenty-io/vehicle-client/pkg/vclient"
)

// Config holds the harness settings.
type Config struct {
	BaseURL        string
	Hostname       string
	Port           string
	RequestTimeout time.Duration
	ReadyAttempts  int
	ReadyInterval  time.Duration
	LogRequests    bool
}

// LoadConfig loads configuration from environment variables and .env files.
// Variables already set in the environment win over the file.
func LoadConfig() *Config {
	loadEnvFile()

	return &Config{
		BaseURL:        os.Getenv(constants.EnvAPIURL),
		Hostname:       os.Getenv(constants.EnvAPIHostname),
		Port:           os.Getenv(constants.EnvAPIPort),
		RequestTimeout: getDurationWithDefault("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		ReadyAttempts:  getIntWithDefault("READY_ATTEMPTS", constants.DefaultReadyAttempts),
		ReadyInterval:  getDurationWithDefault("READY_INTERVAL", constants.DefaultReadyInterval),
		LogRequests:    getBoolWithDefault("LOG_REQUESTS", false),
	}
}

// Configured reports whether a server location is set.
func (c *Config) Configured() bool {
	return c.BaseURL != "" || (c.Hostname != "" && c.Port != "")
}

// SkipIfMissingConfig skips the test when no server is configured.
func (c *Config) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if !c.Configured() {
		t.Skip("API_URL or API_HOSTNAME/API_PORT not set, skipping integration test")
	}
}

// RequestContext builds the request context the harness issues calls under.
func (c *Config) RequestContext() (*vapi.RequestContext, error) {
	opts := []vapi.ContextOption{vapi.WithTimeout(c.RequestTimeout)}

	if c.BaseURL != "" {
		opts = append(opts, vapi.WithBaseURL(c.BaseURL))
	} else {
		opts = append(opts, vapi.WithEnv(func(key string) (string, bool) {
			switch key {
			case constants.EnvAPIHostname:
				return c.Hostname, c.Hostname != ""
			case constants.EnvAPIPort:
				return c.Port, c.Port != ""
			}

			return "", false
		}))
	}

	return vapi.NewRequestContext(opts...)
}

// Client builds a vehicle API client. With LogRequests every exchange is logged through logger.
func (c *Config) Client(logger *zap.Logger) (vapi.Client, error) {
	rc, err := c.RequestContext()
	if err != nil {
		return nil, err
	}

	config := &vapi.Config{RequestContext: rc}

	if c.LogRequests {
		config.Logger = logging.NewZapLogger(logger)
		config.Debug = true
	}

	return vclient.New(config)
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return defaultValue
	}

	return parsed
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func loadEnvFile() {
	envPaths := []string{
		".env",
		"../.env",    // From test/harness or test/integration
		"../../.env", // Module root
	}

	for _, path := range envPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if err := godotenv.Load(absPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", absPath, err)
		}

		return
	}
}
