// Package middleware provides the HTTP authentication gate.
//
// The gate extracts a bearer token, verifies its signature and expiry,
// parses the embedded admin and organization identifiers, and resolves
// them to a live admin record scoped to both. Verification and resolution
// failures all surface as the same 401 outcome so the response never
// reveals whether an account exists.
package middleware
