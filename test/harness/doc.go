// Package harness drives a vehicle API for tests: it waits for the server to become
// ready, generates fixtures, and creates, fetches and removes them in bulk.
//
// Configuration comes from the environment, optionally seeded from a .env file:
//
//	API_HOSTNAME, API_PORT   server location, or
//	API_URL                  absolute base URL, e.g. http://localhost:8080/api
//	REQUEST_TIMEOUT          per-request timeout (default 5s)
//	READY_ATTEMPTS           readiness probes before giving up (default 10)
//	READY_INTERVAL           pause between probes (default 3s)
//	LOG_REQUESTS             log every request and response
package harness
