package models

import (
	"strings"
	"time"

	id "kindred/pkg/domain"
)

// Member is the aggregate for a customer identity record.
//
// Invariants:
//   - IsSPOC is true exactly when at least one policy has HolderTypeFamily
//   - FamilyName is set only while IsSPOC holds
//   - SpocID is present only on dependents and survives relieving
//   - CompanyID scopes every lookup and duplicate check
type Member struct {
	ID                    id.RecordID       `json:"id,omitempty"`
	MemberID              id.MemberID       `json:"memberId"`
	Name                  string            `json:"name"`
	DOB                   string            `json:"dob,omitempty"`
	Anniversary           string            `json:"anniversary,omitempty"`
	Gender                string            `json:"gender,omitempty"`
	Mobile                string            `json:"mobile,omitempty"`
	Email                 string            `json:"email,omitempty"`
	Address               string            `json:"address,omitempty"`
	OtherSpecialOccasions []SpecialOccasion `json:"otherSpecialOccasions,omitempty"`
	IsSPOC                bool              `json:"isSPOC"`
	FamilyName            string            `json:"familyName,omitempty"`
	SpocID                id.MemberID       `json:"spocId,omitempty"`
	RelievedTimestamp     *time.Time        `json:"relievedTimestamp,omitempty"`
	Policies              []Policy          `json:"policies,omitempty"`
	AssignedTo            []id.AdvisorID    `json:"assignedTo,omitempty"`
	CompanyID             id.TenantID       `json:"companyId"`

	// AutomatedGreetingsEnabled opts a member out of birthday, anniversary,
	// and occasion notifications when explicitly false. Nil means enabled.
	AutomatedGreetingsEnabled *bool `json:"automatedGreetingsEnabled,omitempty"`
}

// SpecialOccasion is a recurring annual event a member tracks beyond
// birthday and anniversary.
type SpecialOccasion struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// IsNew reports whether the member has not been persisted yet.
func (m *Member) IsNew() bool { return m.ID.IsZero() }

// IsDependent reports whether the member is linked to a family head.
func (m *Member) IsDependent() bool { return !m.SpocID.IsZero() }

// GreetingsEnabled reports whether recurring-event notifications apply.
// Only an explicit false opts out; renewals are never affected.
func (m *Member) GreetingsEnabled() bool {
	return m.AutomatedGreetingsEnabled == nil || *m.AutomatedGreetingsEnabled
}

// HasFamilyPolicy reports whether any policy designates the member a SPOC.
func (m *Member) HasFamilyPolicy() bool {
	for i := range m.Policies {
		if m.Policies[i].PolicyHolderType == HolderTypeFamily {
			return true
		}
	}
	return false
}

// NameEquals compares names the way legacy covered-member rows were matched:
// trimmed and case-insensitive.
func (m *Member) NameEquals(name string) bool {
	return strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(name))
}

// Clone returns a deep copy. Reconciliation reasons over immutable snapshots
// of the population; mutating a caller-owned record mid-pipeline would let a
// failed save leak partial state.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	out := *m
	if m.RelievedTimestamp != nil {
		ts := *m.RelievedTimestamp
		out.RelievedTimestamp = &ts
	}
	if m.AutomatedGreetingsEnabled != nil {
		v := *m.AutomatedGreetingsEnabled
		out.AutomatedGreetingsEnabled = &v
	}
	if m.OtherSpecialOccasions != nil {
		out.OtherSpecialOccasions = make([]SpecialOccasion, len(m.OtherSpecialOccasions))
		copy(out.OtherSpecialOccasions, m.OtherSpecialOccasions)
	}
	if m.AssignedTo != nil {
		out.AssignedTo = make([]id.AdvisorID, len(m.AssignedTo))
		copy(out.AssignedTo, m.AssignedTo)
	}
	if m.Policies != nil {
		out.Policies = make([]Policy, len(m.Policies))
		for i := range m.Policies {
			out.Policies[i] = *m.Policies[i].Clone()
		}
	}
	return &out
}

// FamilyLabel derives the display label for the member's family group.
func FamilyLabel(name string) string {
	return strings.TrimSpace(name) + "'s Family"
}
