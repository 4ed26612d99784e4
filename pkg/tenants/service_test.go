package tenants

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/warren/pkg/credentials"
	"github.com/platinummonkey/warren/pkg/observability"
)

// mockRepository is a mock implementation of Repository for testing
type mockRepository struct {
	findOrgByNameFunc     func(ctx context.Context, name string) (*Organization, error)
	findOrgByIDFunc       func(ctx context.Context, id uuid.UUID) (*Organization, error)
	createOrgAndAdminFunc func(ctx context.Context, name, email, passwordHash string) (*Organization, *Admin, error)
	updateOrgNameFunc     func(ctx context.Context, orgID uuid.UUID, newName, newPartitionName string) error
	renamePartitionFunc   func(ctx context.Context, oldName, newName string) error
	updateAdminCredsFunc  func(ctx context.Context, adminID uuid.UUID, update AdminCredentialUpdate) error
	deleteOrgCascadeFunc  func(ctx context.Context, org *Organization) error
	findAdminByIDFunc     func(ctx context.Context, id, orgID uuid.UUID) (*Admin, error)
	findAdminByEmailFunc  func(ctx context.Context, email string) (*Admin, error)
}

func (m *mockRepository) FindOrganizationByName(ctx context.Context, name string) (*Organization, error) {
	if m.findOrgByNameFunc != nil {
		return m.findOrgByNameFunc(ctx, name)
	}
	return nil, NewError(ErrKindNotFound, "organization not found")
}

func (m *mockRepository) FindOrganizationByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	if m.findOrgByIDFunc != nil {
		return m.findOrgByIDFunc(ctx, id)
	}
	return nil, NewError(ErrKindNotFound, "organization not found")
}

func (m *mockRepository) CreateOrganizationAndAdmin(ctx context.Context, name, email, passwordHash string) (*Organization, *Admin, error) {
	if m.createOrgAndAdminFunc != nil {
		return m.createOrgAndAdminFunc(ctx, name, email, passwordHash)
	}
	org := &Organization{ID: uuid.New(), Name: name, PartitionName: PartitionNameFor(name), CreatedAt: time.Now()}
	admin := &Admin{ID: uuid.New(), Email: email, PasswordHash: passwordHash, OrgID: org.ID}
	org.AdminID = admin.ID
	return org, admin, nil
}

func (m *mockRepository) UpdateOrganizationName(ctx context.Context, orgID uuid.UUID, newName, newPartitionName string) error {
	if m.updateOrgNameFunc != nil {
		return m.updateOrgNameFunc(ctx, orgID, newName, newPartitionName)
	}
	return nil
}

func (m *mockRepository) RenamePartition(ctx context.Context, oldName, newName string) error {
	if m.renamePartitionFunc != nil {
		return m.renamePartitionFunc(ctx, oldName, newName)
	}
	return nil
}

func (m *mockRepository) UpdateAdminCredentials(ctx context.Context, adminID uuid.UUID, update AdminCredentialUpdate) error {
	if m.updateAdminCredsFunc != nil {
		return m.updateAdminCredsFunc(ctx, adminID, update)
	}
	return nil
}

func (m *mockRepository) DeleteOrganizationCascade(ctx context.Context, org *Organization) error {
	if m.deleteOrgCascadeFunc != nil {
		return m.deleteOrgCascadeFunc(ctx, org)
	}
	return nil
}

func (m *mockRepository) FindAdminByID(ctx context.Context, id, orgID uuid.UUID) (*Admin, error) {
	if m.findAdminByIDFunc != nil {
		return m.findAdminByIDFunc(ctx, id, orgID)
	}
	return nil, NewError(ErrKindNotFound, "admin not found")
}

func (m *mockRepository) FindAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	if m.findAdminByEmailFunc != nil {
		return m.findAdminByEmailFunc(ctx, email)
	}
	return nil, NewError(ErrKindNotFound, "admin not found")
}

func newTestService(repo Repository) *LifecycleService {
	return NewLifecycleService(
		repo,
		credentials.NewHasher(bcrypt.MinCost),
		credentials.NewTokenIssuer("test-secret", time.Hour),
		observability.NewLogger(observability.ErrorLevel, io.Discard),
		nil,
		nil,
	)
}

func TestCreateOrganization(t *testing.T) {
	repo := &mockRepository{}
	service := newTestService(repo)

	view, err := service.CreateOrganization(context.Background(), CreateOrganizationRequest{
		OrganizationName: "Acme Corp",
		Email:            "admin@acme.com",
		Password:         "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", view.OrganizationName)
	assert.Equal(t, "org_acme_corp", view.CollectionName)
	assert.Equal(t, "admin@acme.com", view.AdminEmail)
	assert.False(t, view.CreatedAt.IsZero())
}

// TestCreateOrganization_HashesPassword verifies the plaintext never reaches
// the repository.
func TestCreateOrganization_HashesPassword(t *testing.T) {
	var storedHash string
	repo := &mockRepository{
		createOrgAndAdminFunc: func(ctx context.Context, name, email, passwordHash string) (*Organization, *Admin, error) {
			storedHash = passwordHash
			org := &Organization{ID: uuid.New(), Name: name, PartitionName: PartitionNameFor(name)}
			admin := &Admin{ID: uuid.New(), Email: email, PasswordHash: passwordHash, OrgID: org.ID}
			org.AdminID = admin.ID
			return org, admin, nil
		},
	}
	service := newTestService(repo)

	_, err := service.CreateOrganization(context.Background(), CreateOrganizationRequest{
		OrganizationName: "Acme Corp",
		Email:            "admin@acme.com",
		Password:         "secret123",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "secret123", storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret123")))
}

func TestCreateOrganization_DuplicateName(t *testing.T) {
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name}, nil
		},
	}
	service := newTestService(repo)

	_, err := service.CreateOrganization(context.Background(), CreateOrganizationRequest{
		OrganizationName: "Acme Corp",
		Email:            "admin@acme.com",
		Password:         "secret123",
	})

	assert.True(t, IsConflict(err))
}

func TestCreateOrganization_Validation(t *testing.T) {
	service := newTestService(&mockRepository{})

	tests := []struct {
		name string
		req  CreateOrganizationRequest
	}{
		{"empty name", CreateOrganizationRequest{OrganizationName: "  ", Email: "a@b.com", Password: "secret123"}},
		{"missing at sign", CreateOrganizationRequest{OrganizationName: "Acme", Email: "nobody", Password: "secret123"}},
		{"at sign first", CreateOrganizationRequest{OrganizationName: "Acme", Email: "@acme.com", Password: "secret123"}},
		{"at sign last", CreateOrganizationRequest{OrganizationName: "Acme", Email: "admin@", Password: "secret123"}},
		{"short password", CreateOrganizationRequest{OrganizationName: "Acme", Email: "a@b.com", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateOrganization(context.Background(), tt.req)
			assert.True(t, IsValidation(err))
		})
	}
}

// TestCreateOrganization_StoreConflictPassesThrough covers the concurrent
// create losing the race: the pre-check saw nothing but the uniqueness
// constraint fired.
func TestCreateOrganization_StoreConflictPassesThrough(t *testing.T) {
	repo := &mockRepository{
		createOrgAndAdminFunc: func(ctx context.Context, name, email, passwordHash string) (*Organization, *Admin, error) {
			return nil, nil, NewError(ErrKindConflict, "organization already exists")
		},
	}
	service := newTestService(repo)

	_, err := service.CreateOrganization(context.Background(), CreateOrganizationRequest{
		OrganizationName: "Acme Corp",
		Email:            "admin@acme.com",
		Password:         "secret123",
	})

	assert.True(t, IsConflict(err))
}

func TestGetOrganization(t *testing.T) {
	orgID := uuid.New()
	adminID := uuid.New()
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{
				ID: orgID, Name: name, PartitionName: "org_acme_corp",
				AdminID: adminID, CreatedAt: time.Now(),
			}, nil
		},
		findAdminByIDFunc: func(ctx context.Context, id, oid uuid.UUID) (*Admin, error) {
			assert.Equal(t, adminID, id)
			assert.Equal(t, orgID, oid)
			return &Admin{ID: id, Email: "admin@acme.com", OrgID: oid}, nil
		},
	}
	service := newTestService(repo)

	view, err := service.GetOrganization(context.Background(), "Acme Corp")

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", view.OrganizationName)
	assert.Equal(t, "org_acme_corp", view.CollectionName)
	assert.Equal(t, "admin@acme.com", view.AdminEmail)
}

func TestGetOrganization_NotFound(t *testing.T) {
	service := newTestService(&mockRepository{})

	_, err := service.GetOrganization(context.Background(), "ghost")

	assert.True(t, IsNotFound(err))
}

// TestGetOrganization_MissingAdminDegrades verifies a dangling admin
// reference reads as "unknown" instead of failing the lookup.
func TestGetOrganization_MissingAdminDegrades(t *testing.T) {
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, PartitionName: "org_acme_corp", AdminID: uuid.New()}, nil
		},
	}
	service := newTestService(repo)

	view, err := service.GetOrganization(context.Background(), "Acme Corp")

	require.NoError(t, err)
	assert.Equal(t, "unknown", view.AdminEmail)
}

func TestUpdateOrganization_NotFoundBeforeForbidden(t *testing.T) {
	service := newTestService(&mockRepository{})

	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "ghost"}, uuid.New())

	// Existence is reported before ownership is checked
	assert.True(t, IsNotFound(err))
}

func TestUpdateOrganization_Forbidden(t *testing.T) {
	owner := uuid.New()
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, AdminID: owner}, nil
		},
	}
	service := newTestService(repo)

	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp"}, uuid.New())

	assert.True(t, IsForbidden(err))
}

// TestUpdateOrganization_Rename verifies the partition is renamed before the
// record and that the derived partition name follows the new organization
// name.
func TestUpdateOrganization_Rename(t *testing.T) {
	owner := uuid.New()
	orgID := uuid.New()

	var renameOrder []string
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			if name == "Acme Corp" {
				return &Organization{ID: orgID, Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
			}
			return nil, NewError(ErrKindNotFound, "organization not found")
		},
		renamePartitionFunc: func(ctx context.Context, oldName, newName string) error {
			renameOrder = append(renameOrder, "partition")
			assert.Equal(t, "org_acme_corp", oldName)
			assert.Equal(t, "org_new_acme", newName)
			return nil
		},
		updateOrgNameFunc: func(ctx context.Context, id uuid.UUID, newName, newPartitionName string) error {
			renameOrder = append(renameOrder, "record")
			assert.Equal(t, orgID, id)
			assert.Equal(t, "New Acme", newName)
			assert.Equal(t, "org_new_acme", newPartitionName)
			return nil
		},
		findAdminByIDFunc: func(ctx context.Context, id, oid uuid.UUID) (*Admin, error) {
			return &Admin{ID: id, Email: "admin@acme.com", OrgID: oid}, nil
		},
	}
	service := newTestService(repo)

	newName := "New Acme"
	view, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewOrganizationName: &newName}, owner)

	require.NoError(t, err)
	assert.Equal(t, []string{"partition", "record"}, renameOrder)
	assert.Equal(t, "New Acme", view.OrganizationName)
	assert.Equal(t, "org_new_acme", view.CollectionName)
}

func TestUpdateOrganization_RenameToTakenName(t *testing.T) {
	owner := uuid.New()
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			if name == "Acme Corp" {
				return &Organization{ID: uuid.New(), Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
			}
			// The target name is already registered
			return &Organization{ID: uuid.New(), Name: name}, nil
		},
	}
	service := newTestService(repo)

	newName := "Taken"
	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewOrganizationName: &newName}, owner)

	assert.True(t, IsConflict(err))
}

// TestUpdateOrganization_SameNameNoRename verifies a no-op rename touches
// neither the partition nor the record.
func TestUpdateOrganization_SameNameNoRename(t *testing.T) {
	owner := uuid.New()
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: "Acme Corp", PartitionName: "org_acme_corp", AdminID: owner}, nil
		},
		renamePartitionFunc: func(ctx context.Context, oldName, newName string) error {
			t.Fatal("partition rename should not run")
			return nil
		},
		findAdminByIDFunc: func(ctx context.Context, id, oid uuid.UUID) (*Admin, error) {
			return &Admin{ID: id, Email: "admin@acme.com", OrgID: oid}, nil
		},
	}
	service := newTestService(repo)

	sameName := "Acme Corp"
	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewOrganizationName: &sameName}, owner)

	assert.NoError(t, err)
}

func TestUpdateOrganization_CredentialChanges(t *testing.T) {
	owner := uuid.New()
	var applied AdminCredentialUpdate
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
		},
		updateAdminCredsFunc: func(ctx context.Context, adminID uuid.UUID, update AdminCredentialUpdate) error {
			assert.Equal(t, owner, adminID)
			applied = update
			return nil
		},
		findAdminByIDFunc: func(ctx context.Context, id, oid uuid.UUID) (*Admin, error) {
			return &Admin{ID: id, Email: "new@acme.com", OrgID: oid}, nil
		},
	}
	service := newTestService(repo)

	newEmail := "new@acme.com"
	newPassword := "changed-secret"
	view, err := service.UpdateOrganization(context.Background(), UpdateOrganizationRequest{
		OrganizationName: "Acme Corp",
		NewEmail:         &newEmail,
		NewPassword:      &newPassword,
	}, owner)

	require.NoError(t, err)
	require.NotNil(t, applied.Email)
	assert.Equal(t, "new@acme.com", *applied.Email)
	require.NotNil(t, applied.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*applied.PasswordHash), []byte("changed-secret")))
	assert.Equal(t, "new@acme.com", view.AdminEmail)
}

func TestUpdateOrganization_InvalidNewPassword(t *testing.T) {
	owner := uuid.New()
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, AdminID: owner}, nil
		},
	}
	service := newTestService(repo)

	short := "12345"
	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewPassword: &short}, owner)

	assert.True(t, IsValidation(err))
}

// TestUpdateOrganization_ValidatesBeforeRename verifies a bad credential in
// a combined request fails the whole update before the partition or record
// is touched.
func TestUpdateOrganization_ValidatesBeforeRename(t *testing.T) {
	tests := []struct {
		name    string
		request func(req *UpdateOrganizationRequest)
	}{
		{
			name: "short password",
			request: func(req *UpdateOrganizationRequest) {
				short := "12345"
				req.NewPassword = &short
			},
		},
		{
			name: "malformed email",
			request: func(req *UpdateOrganizationRequest) {
				bad := "not-an-email"
				req.NewEmail = &bad
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			owner := uuid.New()
			repo := &mockRepository{
				findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
					if name == "Acme Corp" {
						return &Organization{ID: uuid.New(), Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
					}
					return nil, NewError(ErrKindNotFound, "organization not found")
				},
				renamePartitionFunc: func(ctx context.Context, oldName, newName string) error {
					t.Fatal("partition rename should not run")
					return nil
				},
				updateOrgNameFunc: func(ctx context.Context, id uuid.UUID, newName, newPartitionName string) error {
					t.Fatal("record rename should not run")
					return nil
				},
			}
			service := newTestService(repo)

			newName := "New Acme"
			req := UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewOrganizationName: &newName}
			tc.request(&req)

			_, err := service.UpdateOrganization(context.Background(), req, owner)

			assert.True(t, IsValidation(err))
		})
	}
}

// TestUpdateOrganization_RecordFailureRenamesBack verifies that a record
// update failure after the partition rename puts the partition back and
// surfaces the underlying error unchanged.
func TestUpdateOrganization_RecordFailureRenamesBack(t *testing.T) {
	owner := uuid.New()
	orgID := uuid.New()

	var renames [][2]string
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			if name == "Acme Corp" {
				return &Organization{ID: orgID, Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
			}
			return nil, NewError(ErrKindNotFound, "organization not found")
		},
		renamePartitionFunc: func(ctx context.Context, oldName, newName string) error {
			renames = append(renames, [2]string{oldName, newName})
			return nil
		},
		updateOrgNameFunc: func(ctx context.Context, id uuid.UUID, newName, newPartitionName string) error {
			return NewError(ErrKindTransient, "database is unavailable")
		},
	}
	service := newTestService(repo)

	newName := "New Acme"
	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewOrganizationName: &newName}, owner)

	assert.True(t, IsTransient(err))
	assert.False(t, IsPartialFailure(err))
	require.Len(t, renames, 2)
	assert.Equal(t, [2]string{"org_acme_corp", "org_new_acme"}, renames[0])
	assert.Equal(t, [2]string{"org_new_acme", "org_acme_corp"}, renames[1])
}

// TestUpdateOrganization_RenameBackFailureIsPartial verifies that when the
// record update fails and the partition cannot be renamed back, the caller
// sees a partial failure carrying both errors.
func TestUpdateOrganization_RenameBackFailureIsPartial(t *testing.T) {
	owner := uuid.New()
	orgID := uuid.New()

	renameCalls := 0
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			if name == "Acme Corp" {
				return &Organization{ID: orgID, Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
			}
			return nil, NewError(ErrKindNotFound, "organization not found")
		},
		renamePartitionFunc: func(ctx context.Context, oldName, newName string) error {
			renameCalls++
			if renameCalls > 1 {
				return NewError(ErrKindTransient, "database is unavailable")
			}
			return nil
		},
		updateOrgNameFunc: func(ctx context.Context, id uuid.UUID, newName, newPartitionName string) error {
			return NewError(ErrKindTransient, "database is unavailable")
		},
	}
	service := newTestService(repo)

	newName := "New Acme"
	_, err := service.UpdateOrganization(context.Background(),
		UpdateOrganizationRequest{OrganizationName: "Acme Corp", NewOrganizationName: &newName}, owner)

	assert.True(t, IsPartialFailure(err))
	assert.Equal(t, 2, renameCalls)
}

func TestDeleteOrganization(t *testing.T) {
	owner := uuid.New()
	var deleted *Organization
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
		},
		deleteOrgCascadeFunc: func(ctx context.Context, org *Organization) error {
			deleted = org
			return nil
		},
	}
	service := newTestService(repo)

	err := service.DeleteOrganization(context.Background(), "Acme Corp", owner)

	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "org_acme_corp", deleted.PartitionName)
}

func TestDeleteOrganization_NotFoundBeforeForbidden(t *testing.T) {
	service := newTestService(&mockRepository{})

	err := service.DeleteOrganization(context.Background(), "ghost", uuid.New())

	assert.True(t, IsNotFound(err))
}

func TestDeleteOrganization_Forbidden(t *testing.T) {
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, AdminID: uuid.New()}, nil
		},
	}
	service := newTestService(repo)

	err := service.DeleteOrganization(context.Background(), "Acme Corp", uuid.New())

	assert.True(t, IsForbidden(err))
}

func TestDeleteOrganization_PartialFailurePassesThrough(t *testing.T) {
	owner := uuid.New()
	repo := &mockRepository{
		findOrgByNameFunc: func(ctx context.Context, name string) (*Organization, error) {
			return &Organization{ID: uuid.New(), Name: name, PartitionName: "org_acme_corp", AdminID: owner}, nil
		},
		deleteOrgCascadeFunc: func(ctx context.Context, org *Organization) error {
			return WrapError(ErrKindPartialFailure, "partition dropped but admin record remains", errors.New("connection lost"))
		},
	}
	service := newTestService(repo)

	err := service.DeleteOrganization(context.Background(), "Acme Corp", owner)

	assert.True(t, IsPartialFailure(err))
}

func TestAdminLogin(t *testing.T) {
	hasher := credentials.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	adminID := uuid.New()
	orgID := uuid.New()
	repo := &mockRepository{
		findAdminByEmailFunc: func(ctx context.Context, email string) (*Admin, error) {
			return &Admin{ID: adminID, Email: email, PasswordHash: hash, OrgID: orgID}, nil
		},
		findOrgByIDFunc: func(ctx context.Context, id uuid.UUID) (*Organization, error) {
			assert.Equal(t, orgID, id)
			return &Organization{ID: id, Name: "Acme Corp"}, nil
		},
	}
	service := newTestService(repo)

	resp, err := service.AdminLogin(context.Background(), LoginRequest{
		Email:    "admin@acme.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	issuer := credentials.NewTokenIssuer("test-secret", time.Hour)
	claims, err := issuer.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, adminID.String(), claims.AdminID)
	assert.Equal(t, orgID.String(), claims.OrgID)
}

// TestAdminLogin_GenericFailureMessage verifies an unknown email and a wrong
// password produce byte-identical errors, so responses never reveal whether
// an account exists.
func TestAdminLogin_GenericFailureMessage(t *testing.T) {
	hasher := credentials.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	unknownEmailRepo := &mockRepository{}
	wrongPasswordRepo := &mockRepository{
		findAdminByEmailFunc: func(ctx context.Context, email string) (*Admin, error) {
			return &Admin{ID: uuid.New(), Email: email, PasswordHash: hash, OrgID: uuid.New()}, nil
		},
	}

	_, unknownErr := newTestService(unknownEmailRepo).AdminLogin(context.Background(),
		LoginRequest{Email: "ghost@acme.com", Password: "secret123"})
	_, wrongErr := newTestService(wrongPasswordRepo).AdminLogin(context.Background(),
		LoginRequest{Email: "admin@acme.com", Password: "not-the-password"})

	assert.True(t, IsUnauthorized(unknownErr))
	assert.True(t, IsUnauthorized(wrongErr))
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAdminLogin_OrganizationMissing(t *testing.T) {
	hasher := credentials.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	repo := &mockRepository{
		findAdminByEmailFunc: func(ctx context.Context, email string) (*Admin, error) {
			return &Admin{ID: uuid.New(), Email: email, PasswordHash: hash, OrgID: uuid.New()}, nil
		},
	}
	service := newTestService(repo)

	_, err = service.AdminLogin(context.Background(), LoginRequest{
		Email:    "admin@acme.com",
		Password: "secret123",
	})

	assert.True(t, IsUnauthorized(err))
}

func TestAdminLogin_TransientStoreError(t *testing.T) {
	repo := &mockRepository{
		findAdminByEmailFunc: func(ctx context.Context, email string) (*Admin, error) {
			return nil, WrapError(ErrKindTransient, "store unavailable", context.DeadlineExceeded)
		},
	}
	service := newTestService(repo)

	_, err := service.AdminLogin(context.Background(), LoginRequest{
		Email:    "admin@acme.com",
		Password: "secret123",
	})

	// Store trouble is not an authentication failure
	assert.True(t, IsTransient(err))
}
