package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/platinummonkey/warren/pkg/contextkeys"
	"github.com/platinummonkey/warren/pkg/credentials"
	"github.com/platinummonkey/warren/pkg/httputil"
	"github.com/platinummonkey/warren/pkg/tenants"
)

// TokenVerifier verifies an access token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*credentials.Claims, error)
}

// AdminResolver resolves token claims to a live admin record. The lookup is
// scoped to both id and org so a token survives an org rename but not an
// org deletion or an admin swap.
type AdminResolver interface {
	FindAdminByID(ctx context.Context, id, orgID uuid.UUID) (*tenants.Admin, error)
}

// Authenticator is the bearer-token authentication gate
type Authenticator struct {
	verifier TokenVerifier
	resolver AdminResolver
}

// NewAuthenticator creates a new authentication gate
func NewAuthenticator(verifier TokenVerifier, resolver AdminResolver) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		resolver: resolver,
	}
}

// Handler wraps an HTTP handler with bearer-token authentication. On
// success the resolved admin is available via AdminFromContext.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := a.verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}
		if claims.AdminID == "" || claims.OrgID == "" {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		adminID, err := uuid.Parse(claims.AdminID)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}
		orgID, err := uuid.Parse(claims.OrgID)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		// "admin not found" is deliberately indistinguishable from "bad
		// token" in the response.
		admin, err := a.resolver.FindAdminByID(r.Context(), adminID, orgID)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := contextkeys.WithAdmin(r.Context(), admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminFromContext extracts the authenticated admin from the request
// context, or nil when the gate did not run.
func AdminFromContext(ctx context.Context) *tenants.Admin {
	admin, ok := contextkeys.Admin(ctx).(*tenants.Admin)
	if !ok {
		return nil
	}
	return admin
}
