// Package httpserver runs the service's HTTP listeners.
//
// A Server owns any number of listeners (the API and the Prometheus
// endpoint in practice), starts them together and shuts all of them down
// gracefully when the context is cancelled, on SIGINT/SIGTERM, or when one
// listener fails. HealthHandler builds liveness and readiness endpoints.
package httpserver
