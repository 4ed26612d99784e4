package tenants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/platinummonkey/warren/pkg/credentials"
	"github.com/platinummonkey/warren/pkg/observability"
)

// minPasswordLength is the minimum accepted password length
const minPasswordLength = 6

// LifecycleService implements Service: it sequences repository operations,
// enforces that only the owning admin may mutate an organization, and maps
// every outcome to the typed error taxonomy.
type LifecycleService struct {
	repo    Repository
	hasher  *credentials.Hasher
	issuer  *credentials.TokenIssuer
	logger  *observability.Logger
	metrics *observability.Metrics
	cache   *ViewCache
}

// NewLifecycleService creates the orchestrator. metrics and cache may be nil.
func NewLifecycleService(
	repo Repository,
	hasher *credentials.Hasher,
	issuer *credentials.TokenIssuer,
	logger *observability.Logger,
	metrics *observability.Metrics,
	cache *ViewCache,
) *LifecycleService {
	return &LifecycleService{
		repo:    repo,
		hasher:  hasher,
		issuer:  issuer,
		logger:  logger,
		metrics: metrics,
		cache:   cache,
	}
}

// CreateOrganization registers an organization with its admin account and
// tenant partition. The name pre-check gives a friendly Conflict early; the
// store's uniqueness constraint settles concurrent same-name races.
func (s *LifecycleService) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*OrganizationView, error) {
	if err := validateName(req.OrganizationName); err != nil {
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	_, err := s.repo.FindOrganizationByName(ctx, req.OrganizationName)
	if err == nil {
		return nil, NewError(ErrKindConflict, "organization already exists")
	}
	if !IsNotFound(err) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, WrapError(ErrKindInternal, "failed to hash password", err)
	}

	org, admin, err := s.repo.CreateOrganizationAndAdmin(ctx, req.OrganizationName, req.Email, passwordHash)
	if err != nil {
		s.logPartialFailure("create", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrganizationsCreatedTotal.Inc()
	}
	s.logger.WithFields(map[string]interface{}{
		"org":       org.Name,
		"partition": org.PartitionName,
	}).Info("organization created")

	return &OrganizationView{
		OrganizationName: org.Name,
		CollectionName:   org.PartitionName,
		AdminEmail:       admin.Email,
		CreatedAt:        org.CreatedAt,
	}, nil
}

// GetOrganization returns the view of an organization joined with its admin
func (s *LifecycleService) GetOrganization(ctx context.Context, name string) (*OrganizationView, error) {
	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, name); ok {
			return view, nil
		}
	}

	org, err := s.repo.FindOrganizationByName(ctx, name)
	if err != nil {
		return nil, err
	}

	view := s.buildView(ctx, org)
	if s.cache != nil {
		s.cache.Set(ctx, name, view)
	}
	return view, nil
}

// UpdateOrganization applies the optional rename, email, and password
// changes. The organization must exist (NotFound) before ownership is
// checked (Forbidden). Every provided field is validated before any
// mutation so a bad credential cannot leave a rename half-applied; the
// rename itself cascades to the tenant partition before the record is
// updated, and renames the partition back if the record update fails.
func (s *LifecycleService) UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest, requesterAdminID uuid.UUID) (*OrganizationView, error) {
	org, err := s.repo.FindOrganizationByName(ctx, req.OrganizationName)
	if err != nil {
		return nil, err
	}
	if org.AdminID != requesterAdminID {
		return nil, NewError(ErrKindForbidden, "not authorized to manage this organization")
	}

	newName := ""
	if req.NewOrganizationName != nil && *req.NewOrganizationName != "" && *req.NewOrganizationName != org.Name {
		newName = *req.NewOrganizationName
		if err := validateName(newName); err != nil {
			return nil, err
		}
	}

	update := AdminCredentialUpdate{}
	if req.NewEmail != nil && *req.NewEmail != "" {
		if err := validateEmail(*req.NewEmail); err != nil {
			return nil, err
		}
		update.Email = req.NewEmail
	}
	if req.NewPassword != nil && *req.NewPassword != "" {
		if err := validatePassword(*req.NewPassword); err != nil {
			return nil, err
		}
		passwordHash, err := s.hasher.Hash(*req.NewPassword)
		if err != nil {
			return nil, WrapError(ErrKindInternal, "failed to hash password", err)
		}
		update.PasswordHash = &passwordHash
	}

	oldName := org.Name
	renamed := false

	if newName != "" {
		_, err := s.repo.FindOrganizationByName(ctx, newName)
		if err == nil {
			return nil, NewError(ErrKindConflict, "new organization name already exists")
		}
		if !IsNotFound(err) {
			return nil, err
		}

		newPartition := PartitionNameFor(newName)
		if err := s.repo.RenamePartition(ctx, org.PartitionName, newPartition); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateOrganizationName(ctx, org.ID, newName, newPartition); err != nil {
			if undoErr := s.repo.RenamePartition(ctx, newPartition, org.PartitionName); undoErr != nil {
				err = WrapError(ErrKindPartialFailure,
					fmt.Sprintf("partition renamed to %s but organization record %s was not updated and the rename could not be undone", newPartition, org.ID),
					errors.Join(err, undoErr))
			}
			s.logPartialFailure("rename", err)
			return nil, err
		}

		org.Name = newName
		org.PartitionName = newPartition
		renamed = true
	}

	if update.Email != nil || update.PasswordHash != nil {
		if err := s.repo.UpdateAdminCredentials(ctx, org.AdminID, update); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if renamed {
			s.cache.Invalidate(ctx, oldName, org.Name)
		} else {
			s.cache.Invalidate(ctx, org.Name)
		}
	}

	return s.buildView(ctx, org), nil
}

// DeleteOrganization cascades the delete through partition, admin, and
// organization records. Only the owning admin may delete.
func (s *LifecycleService) DeleteOrganization(ctx context.Context, name string, requesterAdminID uuid.UUID) error {
	org, err := s.repo.FindOrganizationByName(ctx, name)
	if err != nil {
		return err
	}
	if org.AdminID != requesterAdminID {
		return NewError(ErrKindForbidden, "not authorized to manage this organization")
	}

	if err := s.repo.DeleteOrganizationCascade(ctx, org); err != nil {
		s.logPartialFailure("delete", err)
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, name)
	}
	if s.metrics != nil {
		s.metrics.OrganizationsDeletedTotal.Inc()
	}
	s.logger.WithField("org", name).Info("organization deleted")

	return nil
}

// AdminLogin authenticates an admin by email and password and issues a
// signed access token carrying the admin and organization identifiers.
// Unknown email and wrong password yield the same generic Unauthorized.
func (s *LifecycleService) AdminLogin(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	admin, err := s.repo.FindAdminByEmail(ctx, req.Email)
	if err != nil {
		if IsNotFound(err) {
			s.countLogin("failure")
			return nil, NewError(ErrKindUnauthorized, genericLoginMessage)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, admin.PasswordHash) {
		s.countLogin("failure")
		return nil, NewError(ErrKindUnauthorized, genericLoginMessage)
	}

	// A missing owning organization means broken referential integrity,
	// not a client error; it still surfaces as Unauthorized.
	org, err := s.repo.FindOrganizationByID(ctx, admin.OrgID)
	if err != nil {
		if IsNotFound(err) {
			s.countLogin("failure")
			return nil, NewError(ErrKindUnauthorized, "organization missing")
		}
		return nil, err
	}

	token, err := s.issuer.Issue(admin.ID.String(), org.ID.String())
	if err != nil {
		return nil, WrapError(ErrKindInternal, "failed to issue token", err)
	}

	s.countLogin("success")
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// buildView joins an organization with its admin email. A missing admin
// record degrades to "unknown" rather than failing the read.
func (s *LifecycleService) buildView(ctx context.Context, org *Organization) *OrganizationView {
	adminEmail := "unknown"
	if org.AdminID != uuid.Nil {
		if admin, err := s.repo.FindAdminByID(ctx, org.AdminID, org.ID); err == nil {
			adminEmail = admin.Email
		}
	}
	return &OrganizationView{
		OrganizationName: org.Name,
		CollectionName:   org.PartitionName,
		AdminEmail:       adminEmail,
		CreatedAt:        org.CreatedAt,
	}
}

func (s *LifecycleService) logPartialFailure(op string, err error) {
	if IsPartialFailure(err) {
		s.logger.WithError(err).WithField("operation", op).Error("partial failure: manual reconciliation required")
	}
}

func (s *LifecycleService) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewError(ErrKindValidation, "organization_name is required")
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return NewError(ErrKindValidation, "invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return NewError(ErrKindValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
