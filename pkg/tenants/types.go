package tenants

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant with a globally unique name and a
// dedicated data partition.
type Organization struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	PartitionName string    `json:"partition_name"`
	AdminID       uuid.UUID `json:"admin_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Admin is the single account authorized to manage one organization
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	OrgID        uuid.UUID `json:"org_id"`
}

// OrganizationView is the caller-facing projection of an organization
// joined with its admin. The wire field collection_name carries the
// partition name.
type OrganizationView struct {
	OrganizationName string    `json:"organization_name"`
	CollectionName   string    `json:"collection_name"`
	AdminEmail       string    `json:"admin_email"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateOrganizationRequest represents the registration payload
type CreateOrganizationRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

// UpdateOrganizationRequest represents the update payload. All new_*
// fields are optional and independently applied; absence means no change.
type UpdateOrganizationRequest struct {
	OrganizationName    string  `json:"organization_name"`
	NewOrganizationName *string `json:"new_organization_name,omitempty"`
	NewEmail            *string `json:"new_email,omitempty"`
	NewPassword         *string `json:"new_password,omitempty"`
}

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AdminCredentialUpdate describes the optional admin field changes
type AdminCredentialUpdate struct {
	Email        *string
	PasswordHash *string
}

// Service defines the request-level organization lifecycle use cases
type Service interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*OrganizationView, error)
	GetOrganization(ctx context.Context, name string) (*OrganizationView, error)
	UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest, requesterAdminID uuid.UUID) (*OrganizationView, error)
	DeleteOrganization(ctx context.Context, name string, requesterAdminID uuid.UUID) error
	AdminLogin(ctx context.Context, req LoginRequest) (*TokenResponse, error)
}

// partitionPrefix namespaces tenant partitions in the backing store
const partitionPrefix = "org_"

// Slugify transforms a display name into a partition-safe identifier:
// lowercased, runs of non-alphanumerics collapsed to single underscores,
// leading/trailing underscores trimmed. Empty input slugs to "org".
func Slugify(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "org"
	}
	return slug
}

// PartitionNameFor derives the partition name for an organization name.
// The derivation is deterministic so the partition stays recoverable from
// the name alone.
func PartitionNameFor(name string) string {
	return partitionPrefix + Slugify(name)
}
