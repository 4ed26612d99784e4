// Package api provides the HTTP surface of the Warren tenant service.
//
// Routes:
//
//	POST   /org/create    register an organization with its admin (no auth)
//	GET    /org/get       fetch an organization view by name (no auth)
//	PUT    /org/update    rename the organization and/or change admin
//	                      credentials (bearer token)
//	DELETE /org/delete    destroy the organization, admin, and partition
//	                      (bearer token)
//	POST   /admin/login   authenticate and obtain an access token (no auth)
//	GET    /healthz       liveness probe
//	GET    /readyz        readiness probe (PostgreSQL, Redis)
//	GET    /metrics       Prometheus scrape endpoint (when enabled)
package api
