package tenants

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/platinummonkey/warren/pkg/observability"
)

// Repository encapsulates CRUD over the organizations and admins record
// sets plus per-tenant partition management. All uniqueness and consistency
// rules live behind this interface.
type Repository interface {
	FindOrganizationByName(ctx context.Context, name string) (*Organization, error)
	FindOrganizationByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	CreateOrganizationAndAdmin(ctx context.Context, name, email, passwordHash string) (*Organization, *Admin, error)
	UpdateOrganizationName(ctx context.Context, orgID uuid.UUID, newName, newPartitionName string) error
	RenamePartition(ctx context.Context, oldPartitionName, newPartitionName string) error
	UpdateAdminCredentials(ctx context.Context, adminID uuid.UUID, update AdminCredentialUpdate) error
	DeleteOrganizationCascade(ctx context.Context, org *Organization) error
	FindAdminByID(ctx context.Context, id, orgID uuid.UUID) (*Admin, error)
	FindAdminByEmail(ctx context.Context, email string) (*Admin, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db         *sql.DB
	partitions PartitionManager
	metrics    *observability.Metrics
}

// NewPostgresRepository creates a new PostgresRepository. metrics may be
// nil when instrumentation is disabled.
func NewPostgresRepository(db *sql.DB, partitions PartitionManager, metrics *observability.Metrics) *PostgresRepository {
	return &PostgresRepository{
		db:         db,
		partitions: partitions,
		metrics:    metrics,
	}
}

// FindOrganizationByName retrieves an organization by its unique name
func (r *PostgresRepository) FindOrganizationByName(ctx context.Context, name string) (*Organization, error) {
	defer r.observe("find_organization_by_name", time.Now())

	return r.scanOrganization(r.db.QueryRowContext(ctx, `
		SELECT id, name, partition_name, admin_id, created_at
		FROM organizations
		WHERE name = $1
	`, name))
}

// FindOrganizationByID retrieves an organization by its identifier
func (r *PostgresRepository) FindOrganizationByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	defer r.observe("find_organization_by_id", time.Now())

	return r.scanOrganization(r.db.QueryRowContext(ctx, `
		SELECT id, name, partition_name, admin_id, created_at
		FROM organizations
		WHERE id = $1
	`, id))
}

func (r *PostgresRepository) scanOrganization(row *sql.Row) (*Organization, error) {
	org := &Organization{}
	var adminID uuid.NullUUID
	err := row.Scan(&org.ID, &org.Name, &org.PartitionName, &adminID, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, NewError(ErrKindNotFound, "organization not found")
	}
	if err != nil {
		return nil, r.translateErr("find_organization", "failed to get organization", err)
	}
	if adminID.Valid {
		org.AdminID = adminID.UUID
	}
	return org, nil
}

// CreateOrganizationAndAdmin registers an organization together with its
// single admin and its tenant partition. The record steps run in one
// transaction; partition creation follows with compensating deletes on
// failure. A duplicate organization name reports Conflict, whether caught
// here or by the store's uniqueness constraint under a concurrent create.
func (r *PostgresRepository) CreateOrganizationAndAdmin(ctx context.Context, name, email, passwordHash string) (*Organization, *Admin, error) {
	defer r.observe("create_organization_and_admin", time.Now())

	org := &Organization{
		ID:            uuid.New(),
		Name:          name,
		PartitionName: PartitionNameFor(name),
	}
	admin := &Admin{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		OrgID:        org.ID,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, r.translateErr("create_organization_and_admin", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO organizations (id, name, partition_name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, org.ID, org.Name, org.PartitionName).Scan(&org.CreatedAt)
	if err != nil {
		return nil, nil, r.translateErr("create_organization_and_admin", "failed to create organization", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash, org_id)
		VALUES ($1, $2, $3, $4)
	`, admin.ID, admin.Email, admin.PasswordHash, admin.OrgID)
	if err != nil {
		return nil, nil, r.translateErr("create_organization_and_admin", "failed to create admin", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE organizations SET admin_id = $1 WHERE id = $2
	`, admin.ID, org.ID)
	if err != nil {
		return nil, nil, r.translateErr("create_organization_and_admin", "failed to link admin", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, r.translateErr("create_organization_and_admin", "failed to commit", err)
	}
	org.AdminID = admin.ID

	if err := r.partitions.Create(ctx, org.PartitionName, org.ID); err != nil {
		if undoErr := r.undoCreate(ctx, org, admin); undoErr != nil {
			return nil, nil, WrapError(ErrKindPartialFailure,
				fmt.Sprintf("partition creation failed and cleanup left records behind (org %s)", org.ID),
				errors.Join(err, undoErr))
		}
		return nil, nil, err
	}

	return org, admin, nil
}

// undoCreate removes the records of a registration whose partition step
// failed, so no organization exists without an initialized partition. The
// partition may have been created before its marker table, so it is
// dropped too; Drop uses IF EXISTS and tolerates a schema that never
// came into being.
func (r *PostgresRepository) undoCreate(ctx context.Context, org *Organization, admin *Admin) error {
	if err := r.partitions.Drop(ctx, org.PartitionName); err != nil {
		return fmt.Errorf("failed to drop partition during cleanup: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, admin.ID); err != nil {
		return fmt.Errorf("failed to remove admin during cleanup: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, org.ID); err != nil {
		return fmt.Errorf("failed to remove organization during cleanup: %w", err)
	}
	return nil
}

// UpdateOrganizationName renames an organization and records its new
// partition name in the same statement, keeping the two in sync.
func (r *PostgresRepository) UpdateOrganizationName(ctx context.Context, orgID uuid.UUID, newName, newPartitionName string) error {
	defer r.observe("update_organization_name", time.Now())

	result, err := r.db.ExecContext(ctx, `
		UPDATE organizations SET name = $1, partition_name = $2 WHERE id = $3
	`, newName, newPartitionName, orgID)
	if err != nil {
		return r.translateErr("update_organization_name", "failed to rename organization", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.translateErr("update_organization_name", "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return NewError(ErrKindNotFound, "organization not found")
	}
	return nil
}

// RenamePartition renames a tenant partition. Renaming onto an existing
// partition reports Conflict; the organization-name uniqueness check is
// expected to have run first.
func (r *PostgresRepository) RenamePartition(ctx context.Context, oldPartitionName, newPartitionName string) error {
	defer r.observe("rename_partition", time.Now())
	return r.partitions.Rename(ctx, oldPartitionName, newPartitionName)
}

// UpdateAdminCredentials applies the provided email and/or password hash
// changes. Fields left nil are untouched.
func (r *PostgresRepository) UpdateAdminCredentials(ctx context.Context, adminID uuid.UUID, update AdminCredentialUpdate) error {
	defer r.observe("update_admin_credentials", time.Now())

	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	if update.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argPos))
		args = append(args, *update.Email)
		argPos++
	}
	if update.PasswordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", argPos))
		args = append(args, *update.PasswordHash)
		argPos++
	}
	if len(setClauses) == 0 {
		return nil
	}

	args = append(args, adminID)
	query := fmt.Sprintf("UPDATE admins SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.translateErr("update_admin_credentials", "failed to update admin", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return r.translateErr("update_admin_credentials", "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return NewError(ErrKindNotFound, "admin not found")
	}
	return nil
}

// DeleteOrganizationCascade destroys the partition, then the admin record,
// then the organization record. The order matches registration history: a
// failure after the partition drop leaves an orphaned organization/admin
// pair and is surfaced as PartialFailure instead of being silently
// reordered, since no reconciliation policy exists yet.
func (r *PostgresRepository) DeleteOrganizationCascade(ctx context.Context, org *Organization) error {
	defer r.observe("delete_organization_cascade", time.Now())

	if err := r.partitions.Drop(ctx, org.PartitionName); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE org_id = $1`, org.ID); err != nil {
		return WrapError(ErrKindPartialFailure,
			fmt.Sprintf("partition dropped but admin record remains (org %s)", org.ID), err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, org.ID); err != nil {
		return WrapError(ErrKindPartialFailure,
			fmt.Sprintf("partition and admin removed but organization record remains (org %s)", org.ID), err)
	}

	return nil
}

// FindAdminByID retrieves an admin scoped to both its id and its
// organization, so a token whose org claim is forged or stale resolves to
// nothing.
func (r *PostgresRepository) FindAdminByID(ctx context.Context, id, orgID uuid.UUID) (*Admin, error) {
	defer r.observe("find_admin_by_id", time.Now())

	return r.scanAdmin(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, org_id
		FROM admins
		WHERE id = $1 AND org_id = $2
	`, id, orgID))
}

// FindAdminByEmail retrieves an admin by email
func (r *PostgresRepository) FindAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	defer r.observe("find_admin_by_email", time.Now())

	return r.scanAdmin(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, org_id
		FROM admins
		WHERE email = $1
	`, email))
}

func (r *PostgresRepository) scanAdmin(row *sql.Row) (*Admin, error) {
	admin := &Admin{}
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.OrgID)
	if err == sql.ErrNoRows {
		return nil, NewError(ErrKindNotFound, "admin not found")
	}
	if err != nil {
		return nil, r.translateErr("find_admin", "failed to get admin", err)
	}
	return admin, nil
}

// observe records operation count and duration when metrics are enabled
func (r *PostgresRepository) observe(op string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.StoreOperationsTotal.WithLabelValues(op).Inc()
	r.metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// translateErr converts driver errors into the typed taxonomy
func (r *PostgresRepository) translateErr(op, message string, err error) error {
	var converted error
	switch {
	case isTransientErr(err):
		converted = WrapError(ErrKindTransient, message+": store unavailable or timed out", err)
	case isUniqueViolation(err):
		converted = WrapError(ErrKindConflict, "organization already exists", err)
	default:
		converted = WrapError(ErrKindInternal, message, err)
	}
	if r.metrics != nil {
		r.metrics.StoreErrorsTotal.WithLabelValues(op, string(KindOf(converted))).Inc()
	}
	return converted
}

// pqUniqueViolation is PostgreSQL's duplicate-key error code
const pqUniqueViolation = pq.ErrorCode("23505")

func asPqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pqErr, ok := asPqError(err)
	return ok && pqErr.Code == pqUniqueViolation
}

// isTransientErr reports whether err is safe to retry: a request timeout,
// a lost connection, or a cancelled query.
func isTransientErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pqErr, ok := asPqError(err); ok {
		// Class 08: connection exceptions; 57014: query_canceled;
		// 53300: too_many_connections.
		if strings.HasPrefix(string(pqErr.Code), "08") ||
			pqErr.Code == "57014" || pqErr.Code == "53300" {
			return true
		}
	}
	return false
}
