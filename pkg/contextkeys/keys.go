// Package contextkeys provides centralized context key definitions.
//
// All context keys used across the application are defined here so that
// producers and consumers of a value agree on a single, typo-proof key.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AdminKey contains the *tenants.Admin resolved from a bearer token.
	// Set by: middleware.Authenticator (pkg/middleware/auth.go)
	// Required by: all mutating organization endpoints
	AdminKey Key = "admin"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: logger, error responses
	RequestIDKey Key = "request_id"
)

// WithAdmin adds the authenticated admin to the context
func WithAdmin(ctx context.Context, admin interface{}) context.Context {
	return context.WithValue(ctx, AdminKey, admin)
}

// Admin retrieves the authenticated admin from the context, or nil
func Admin(ctx context.Context) interface{} {
	return ctx.Value(AdminKey)
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID retrieves the request ID from the context, or ""
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}
