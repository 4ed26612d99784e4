package tenants

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PartitionManager is the named-partition abstraction: one independently
// addressable data container per organization, created empty-but-initialized,
// renamed atomically, and destroyed with its organization.
type PartitionManager interface {
	Create(ctx context.Context, name string, orgID uuid.UUID) error
	Rename(ctx context.Context, oldName, newName string) error
	Drop(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// partitionNamePattern guards the identifiers interpolated into DDL.
// Slugify only emits [a-z0-9_], so anything else is a caller bug.
var partitionNamePattern = regexp.MustCompile(`^org_[a-z0-9_]+$`)

// SchemaPartitionManager implements PartitionManager using dynamically
// named PostgreSQL schemas. CREATE/ALTER/DROP SCHEMA give native support
// for runtime-named containers, so no key-prefix emulation is needed.
type SchemaPartitionManager struct {
	db *sql.DB
}

// NewSchemaPartitionManager creates a schema-backed partition manager
func NewSchemaPartitionManager(db *sql.DB) *SchemaPartitionManager {
	return &SchemaPartitionManager{db: db}
}

// Create creates the partition schema and its marker table recording the
// owning organization. A duplicate schema reports Conflict.
func (m *SchemaPartitionManager) Create(ctx context.Context, name string, orgID uuid.UUID) error {
	if err := validatePartitionName(name); err != nil {
		return err
	}

	quoted := pq.QuoteIdentifier(name)
	if _, err := m.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", quoted)); err != nil {
		return translatePartitionErr("create partition", err)
	}

	stmt := fmt.Sprintf(`CREATE TABLE %s._meta (
		org_id         UUID NOT NULL,
		initialized_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, quoted)
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return translatePartitionErr("initialize partition", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s._meta (org_id) VALUES ($1)", quoted)
	if _, err := m.db.ExecContext(ctx, insert, orgID); err != nil {
		return translatePartitionErr("initialize partition", err)
	}

	return nil
}

// Rename renames the partition schema. Renaming onto an existing schema
// reports Conflict; renaming a missing schema reports NotFound.
func (m *SchemaPartitionManager) Rename(ctx context.Context, oldName, newName string) error {
	if err := validatePartitionName(oldName); err != nil {
		return err
	}
	if err := validatePartitionName(newName); err != nil {
		return err
	}

	stmt := fmt.Sprintf("ALTER SCHEMA %s RENAME TO %s",
		pq.QuoteIdentifier(oldName), pq.QuoteIdentifier(newName))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return translatePartitionErr("rename partition", err)
	}
	return nil
}

// Drop destroys the partition schema and everything in it. Dropping an
// already-absent partition succeeds, which keeps crash-recovery cleanup
// re-runnable.
func (m *SchemaPartitionManager) Drop(ctx context.Context, name string) error {
	if err := validatePartitionName(name); err != nil {
		return err
	}

	stmt := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(name))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return translatePartitionErr("drop partition", err)
	}
	return nil
}

// Exists reports whether the partition schema is present
func (m *SchemaPartitionManager) Exists(ctx context.Context, name string) (bool, error) {
	if err := validatePartitionName(name); err != nil {
		return false, err
	}

	var exists bool
	err := m.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_catalog.pg_namespace WHERE nspname = $1)", name).
		Scan(&exists)
	if err != nil {
		return false, translatePartitionErr("check partition", err)
	}
	return exists, nil
}

func validatePartitionName(name string) error {
	if !partitionNamePattern.MatchString(name) {
		return NewError(ErrKindValidation, fmt.Sprintf("invalid partition name %q", name))
	}
	return nil
}

// PostgreSQL error codes the partition layer distinguishes
const (
	pqDuplicateSchema   = pq.ErrorCode("42P06")
	pqInvalidSchemaName = pq.ErrorCode("3F000")
)

func translatePartitionErr(op string, err error) error {
	if isTransientErr(err) {
		return WrapError(ErrKindTransient, op+" timed out", err)
	}
	if pqErr, ok := asPqError(err); ok {
		switch pqErr.Code {
		case pqDuplicateSchema:
			return WrapError(ErrKindConflict, "partition already exists", err)
		case pqInvalidSchemaName:
			return WrapError(ErrKindNotFound, "partition not found", err)
		}
	}
	return WrapError(ErrKindInternal, "failed to "+op, err)
}
