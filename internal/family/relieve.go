package family

import (
	"time"

	"kindred/internal/member/models"
	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
)

// Relieve detaches a dependent from its family head: the dependent's covered
// entries are removed from every family policy of the SPOC (matched strictly
// by MemberID, never by name, so a same-named individual is never
// mis-detached) and the dependent is stamped relieved. SpocID is deliberately
// preserved.
func (r *Reconciler) Relieve(memberID id.MemberID, population []*models.Member, now time.Time) (*RelievePlan, error) {
	target := findByMemberID(population, memberID, "")
	if target == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "member %s not found", memberID)
	}
	if !target.IsDependent() {
		return nil, dErrors.Newf(dErrors.CodeNotADependent, "member %s has no family head", memberID)
	}

	spoc := findByMemberID(population, target.SpocID, target.ID)
	if spoc == nil {
		return nil, dErrors.Newf(dErrors.CodeSpocNotFound, "family head %s not found for member %s", target.SpocID, memberID)
	}

	spocUpd := spoc.Clone()
	for pi := range spocUpd.Policies {
		pol := &spocUpd.Policies[pi]
		if pol.PolicyHolderType != models.HolderTypeFamily {
			continue
		}
		kept := pol.CoveredMembers[:0]
		for _, entry := range pol.CoveredMembers {
			if entry.MemberID != target.MemberID {
				kept = append(kept, entry)
			}
		}
		pol.CoveredMembers = kept
	}

	dep := target.Clone()
	ts := now
	dep.RelievedTimestamp = &ts

	return &RelievePlan{Dependent: dep, Spoc: spocUpd}, nil
}
