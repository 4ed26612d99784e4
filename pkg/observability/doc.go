// Package observability provides structured logging, Prometheus metrics,
// and health checking for the Warren tenant service.
//
// Logging is JSON-structured via stdlib slog. Metrics cover the HTTP
// surface, store operations, and the organization view cache. The health
// checker backs the /healthz and /readyz probes and verifies PostgreSQL
// and (when configured) Redis connectivity.
package observability
