// Package store defines the persistence collaborator boundary for members.
//
// Error contract for all implementations:
//   - ErrNotFound when the requested record does not exist
//   - nil on success, with the returned object authoritative (server-assigned
//     record id included); callers must fold it back into their working set
//   - wrapped errors with context for infrastructure failures
package store

import (
	"context"
	"errors"

	"kindred/internal/member/models"
	id "kindred/pkg/domain"
)

// ErrNotFound is the sentinel for missing records, checked with errors.Is.
var ErrNotFound = errors.New("record not found")

// MemberStore is the tenant-scoped object store for member records.
type MemberStore interface {
	// Create persists a new member and returns the stored object with its
	// assigned record id.
	Create(ctx context.Context, m *models.Member) (*models.Member, error)

	// Update overwrites an existing member and returns the stored object.
	Update(ctx context.Context, m *models.Member) (*models.Member, error)

	// Delete removes a member record. The engine itself never deletes;
	// this is a passthrough for the owning surface.
	Delete(ctx context.Context, tenantID id.TenantID, recordID id.RecordID) error

	// FindByRecordID loads one member by its storage identity.
	FindByRecordID(ctx context.Context, tenantID id.TenantID, recordID id.RecordID) (*models.Member, error)

	// FindByMemberID returns every member sharing a business id within the
	// tenant. Multiple results are expected: business ids collide.
	FindByMemberID(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) ([]*models.Member, error)

	// ListByTenant returns the tenant's full population snapshot.
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Member, error)
}
