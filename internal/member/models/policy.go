package models

import (
	id "kindred/pkg/domain"
)

// HolderType distinguishes individual cover from family cover.
type HolderType string

const (
	HolderTypeIndividual HolderType = "Individual"
	HolderTypeFamily     HolderType = "Family"
)

// PolicyStatus tracks the lifecycle of a policy.
type PolicyStatus string

const (
	PolicyStatusActive PolicyStatus = "Active"
	PolicyStatusLapsed PolicyStatus = "Lapsed"
	PolicyStatusClosed PolicyStatus = "Closed"
)

// Policy belongs to exactly one member.
type Policy struct {
	ID               string          `json:"id,omitempty"`
	PolicyType       string          `json:"policyType"`
	Premium          float64         `json:"premium"`
	RenewalDate      string          `json:"renewalDate,omitempty"`
	Status           PolicyStatus    `json:"status"`
	PolicyHolderType HolderType      `json:"policyHolderType"`
	CoveredMembers   []CoveredMember `json:"coveredMembers,omitempty"`
	Commission       Commission      `json:"commission"`

	// FamilyHeadMemberID is a denormalized copy of the owner's MemberID,
	// refreshed on every save so covered members can resolve their head
	// without loading the owner.
	FamilyHeadMemberID id.MemberID `json:"familyHeadMemberId,omitempty"`
}

// Commission is the advisor's cut on a policy.
type Commission struct {
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// CoveredMember is an entry inside a Family policy's covered list.
//
// MemberID, once populated, is the permanent join key to the standalone
// dependent record. It must never be cleared or reassigned; name+dob matching
// exists only for legacy rows created before the link was introduced.
type CoveredMember struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	DOB      string      `json:"dob,omitempty"`
	Gender   string      `json:"gender,omitempty"`
	Mobile   string      `json:"mobile,omitempty"`
	Email    string      `json:"email,omitempty"`
	Address  string      `json:"address,omitempty"`
	MemberID id.MemberID `json:"memberId,omitempty"`
}

// IsLinked reports whether the entry already joins to a dependent record.
func (c *CoveredMember) IsLinked() bool { return !c.MemberID.IsZero() }

// Clone returns a deep copy of the policy.
func (p *Policy) Clone() *Policy {
	out := *p
	if p.CoveredMembers != nil {
		out.CoveredMembers = make([]CoveredMember, len(p.CoveredMembers))
		copy(out.CoveredMembers, p.CoveredMembers)
	}
	return &out
}
