package tenants

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the master record sets and the uniqueness
// constraints the lifecycle depends on. organizations.name and
// organizations.partition_name are each globally unique; admins are unique
// on the composite (email, org_id). The constraints live in the store so a
// concurrent duplicate create loses at commit time, not just at pre-check.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id             UUID PRIMARY KEY,
		name           TEXT NOT NULL,
		partition_name TEXT NOT NULL,
		admin_id       UUID,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		org_id        UUID NOT NULL REFERENCES organizations (id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS organizations_name_unique ON organizations (name)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS organizations_partition_name_unique ON organizations (partition_name)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS admin_email_org_unique ON admins (email, org_id)`,
}

// EnsureSchema creates the tables and uniqueness constraints. It runs as a
// startup hook before the server accepts traffic and is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
