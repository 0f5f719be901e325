package family

import (
	"kindred/internal/member/models"
)

// Plan is the ordered outcome of a reconciliation. The persisting phase must
// honor the order: dependents in DependentsToCreate are persisted first and
// bound back onto the member's covered entries, then the member itself, then
// DependentsToUpdate. Violating the order leaves a covered entry pointing at
// a dependent that does not yet exist in the store.
type Plan struct {
	// Member is the record to upsert, with SPOC flags and covered links
	// already recomputed.
	Member *models.Member

	// DependentsToCreate are synthesized dependent records, in covered-list
	// order.
	DependentsToCreate []*models.Member

	// DependentsToUpdate are existing records queued for refresh: legacy rows
	// adopted into the family, renamed-family fan-out, and the SPOC when a
	// dependent edit propagated upward.
	DependentsToUpdate []*models.Member

	// Links joins each synthesized dependent to the covered entry that
	// produced it so the persisted identity can be written back.
	Links []PendingLink
}

// PendingLink records which covered entry a synthesized dependent came from.
type PendingLink struct {
	PolicyID  string
	EntryID   string
	Dependent int // index into DependentsToCreate
}

// BindCreated writes the persisted dependent's business id onto the covered
// entry that produced it. Entries that already carry a link are never
// touched; the link is populated exactly once.
func (p *Plan) BindCreated(index int, created *models.Member) {
	for _, link := range p.Links {
		if link.Dependent != index {
			continue
		}
		for pi := range p.Member.Policies {
			pol := &p.Member.Policies[pi]
			if pol.ID != link.PolicyID {
				continue
			}
			for ci := range pol.CoveredMembers {
				entry := &pol.CoveredMembers[ci]
				if entry.ID == link.EntryID && !entry.IsLinked() {
					entry.MemberID = created.MemberID
				}
			}
		}
	}
}

// RelievePlan detaches a dependent from its family head. The dependent keeps
// its SpocID so the historical family tree stays navigable.
type RelievePlan struct {
	// Dependent is the relieved record, relievedTimestamp stamped.
	Dependent *models.Member
	// Spoc is the family head with the dependent's covered entries removed.
	Spoc *models.Member
}
