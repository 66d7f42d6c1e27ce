package constants

import "errors"

// Request context errors.
var (
	ErrBaseURLRequired = errors.New("base URL is required: set API_HOSTNAME and API_PORT or provide a URL")
	ErrInvalidBaseURL  = errors.New("base URL must be absolute")
)

// Client construction errors.
var (
	ErrConfigRequired = errors.New("config is required")
)

// Harness errors.
var (
	ErrServerNotReady   = errors.New("vehicle API not ready")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrVehicleMissing   = errors.New("vehicle not found")
)

// CLI errors.
var (
	ErrVINRequired         = errors.New("a vin is required")
	ErrInvalidHeaderFormat = errors.New("headers must use key=value format")
	ErrUnsupportedOutput   = errors.New("unsupported output format")
	ErrPurgeNotConfirmed   = errors.New("refusing to delete every vehicle without --force")
)
