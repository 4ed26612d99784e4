// Package credentials provides password hashing and signed-token primitives.
//
// Passwords are hashed with bcrypt (salted, adaptive). Access tokens are
// HS256-signed JWTs carrying the authenticated admin and organization
// identifiers with a fixed expiry. The package holds no state beyond the
// signing secret and cost parameters handed to it at construction.
package credentials
