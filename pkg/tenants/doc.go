// Package tenants implements multi-tenant organization lifecycle management.
//
// # Overview
//
// Each organization owns exactly one admin account and one tenant partition,
// a dynamically named PostgreSQL schema created at registration, renamed in
// lockstep with the organization, and destroyed at deletion.
//
// The package is layered:
//
//   - Repository: CRUD over the organizations and admins record sets plus
//     partition management, backed by PostgreSQL. Uniqueness of the
//     organization name, the partition name, and the (email, org_id) pair is
//     enforced by database constraints, not only by pre-checks, so concurrent
//     same-name registrations are resolved by the store rejecting the loser.
//   - PartitionManager: the named-partition abstraction
//     (create/rename/drop/exists) over PostgreSQL schemas.
//   - LifecycleService: the request-level use cases (create, get, update,
//     delete, login) sequencing repository calls, enforcing that only the
//     owning admin may mutate an organization, and mapping outcomes to the
//     typed error taxonomy in errors.go.
//
// # Consistency
//
// The record steps of creation (organization shell, admin, admin_id
// back-fill) run in one SQL transaction; partition creation follows, with
// compensating deletes on failure. Deletion runs partition drop, admin
// delete, organization delete in that order; a failure after the partition
// drop surfaces as ErrKindPartialFailure rather than being silently
// reordered, since no reconciliation policy exists yet.
package tenants
