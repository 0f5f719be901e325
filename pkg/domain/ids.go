// Package domain holds typed identifiers shared across the engine.
//
// IDs are distinct types so a tenant id can never be passed where a member id
// is expected; the compiler enforces what tenant scoping rules rely on.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "kindred/pkg/domain-errors"
)

// MemberID is the human-readable business identifier derived from a member's
// name, address, and mobile fragments. It is intentionally lossy: collisions
// are expected and resolved before persistence, never assumed away.
type MemberID string

func (m MemberID) String() string { return string(m) }

// IsZero reports whether the id is unset.
func (m MemberID) IsZero() bool { return m == "" }

// RecordID is the opaque storage identifier assigned by the persistence
// collaborator. The engine never fabricates one.
type RecordID string

func (r RecordID) String() string { return string(r) }

func (r RecordID) IsZero() bool { return r == "" }

// TenantID scopes every lookup; two tenants' identical-looking member ids must
// never cross-resolve.
type TenantID uuid.UUID

func (t TenantID) String() string { return uuid.UUID(t).String() }

func (t TenantID) IsZero() bool { return t == TenantID(uuid.Nil) }

// MarshalText writes the tenant id in canonical UUID form.
func (t TenantID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tenant id, rejecting the nil UUID.
func (t *TenantID) UnmarshalText(text []byte) error {
	parsed, err := ParseTenantID(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTenantID validates a tenant id at a trust boundary.
func ParseTenantID(raw string) (TenantID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TenantID{}, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return TenantID{}, dErrors.New(dErrors.CodeBadRequest, "tenant id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return TenantID{}, dErrors.New(dErrors.CodeBadRequest, "tenant id must not be the nil UUID")
	}
	return TenantID(parsed), nil
}

// AdvisorID identifies an advisor a member is assigned to.
type AdvisorID string

func (a AdvisorID) String() string { return string(a) }
