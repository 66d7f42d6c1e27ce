package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultRequestTimeout is applied to every request issued under a request context
	// that does not set its own timeout.
	DefaultRequestTimeout = 5 * time.Second
)

// API location defaults and the environment variables that override them.
const (
	// EnvAPIHostname names the host of the vehicle API.
	EnvAPIHostname = "API_HOSTNAME"

	// EnvAPIPort names the port of the vehicle API.
	EnvAPIPort = "API_PORT"

	// EnvAPIURL is an absolute base URL that takes precedence over hostname and port.
	EnvAPIURL = "API_URL"

	// DefaultAPIHostname is used by the configuration layer when API_HOSTNAME is unset.
	DefaultAPIHostname = "localhost"

	// DefaultAPIPort is used by the configuration layer when API_PORT is unset.
	DefaultAPIPort = "8080"

	// APIPathPrefix is the path every resource lives under.
	APIPathPrefix = "/api"
)

// Header names and values.
const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	HeaderETag        = "ETag"
	HeaderIfNoneMatch = "If-None-Match"
	HeaderPragma      = "Pragma"
	HeaderExpires     = "Expires"
	HeaderLink        = "Link"
	HeaderRequestID   = "Request-Id"

	ContentTypeJSON = "application/json"
	PragmaNoCache   = "no-cache"

	// RelNext is the Link relation that points at the following page.
	RelNext = "next"

	// DefaultUserAgent is sent when the caller does not configure one.
	DefaultUserAgent = "vehicle-client/1.0"
)

// Resource paths, relative to the API base URL.
const (
	VehiclesPath = "vehicles"
	VehiclePath  = "vehicles/%s"
)

// Vehicle query parameters understood by the API.
const (
	QueryMake          = "make"
	QueryModel         = "model"
	QueryYear          = "year"
	QueryExteriorColor = "exterior_color"
	QueryInteriorColor = "interior_color"
	QueryPage          = "page"
)

// Readiness polling used by the test harness.
const (
	// DefaultReadyAttempts is how many times the harness lists vehicles before giving up.
	DefaultReadyAttempts = 10

	// DefaultReadyInterval is the sleep between readiness attempts.
	DefaultReadyInterval = 3 * time.Second
)

// Output formatting.
const (
	// JSONIndentSize is the indent used for json and yaml output.
	JSONIndentSize = 2

	// ConfigDirName is created under the user's home directory.
	ConfigDirName = ".vehicles"
)
