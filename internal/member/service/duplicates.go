// Package service holds member-level logic that sits between transport and
// the stores: duplicate detection and the merge used to resolve one.
package service

import (
	"kindred/internal/member/models"
	id "kindred/pkg/domain"
	pstrings "kindred/pkg/platform/strings"
)

// FindDuplicates returns every existing member whose business id equals the
// draft's, scoped to the draft's tenant and excluding the draft's own record.
// Exact match only; resolution is never automatic. A non-empty result is
// handed back to the caller to decide.
func FindDuplicates(draft *models.Member, population []*models.Member) []*models.Member {
	if draft == nil || draft.MemberID.IsZero() {
		return nil
	}
	var out []*models.Member
	for _, existing := range population {
		if existing.CompanyID != draft.CompanyID {
			continue
		}
		if !draft.ID.IsZero() && existing.ID == draft.ID {
			continue
		}
		if existing.MemberID == draft.MemberID {
			out = append(out, existing)
		}
	}
	return out
}

// Merge shallow-merges the draft over a chosen existing record: draft fields
// win on conflict, existing fields survive where the draft is empty. The
// result keeps the existing record's storage identity so persistence becomes
// an update instead of a create.
func Merge(draft, existing *models.Member) *models.Member {
	merged := existing.Clone()

	if draft.Name != "" {
		merged.Name = draft.Name
	}
	if draft.DOB != "" {
		merged.DOB = draft.DOB
	}
	if draft.Anniversary != "" {
		merged.Anniversary = draft.Anniversary
	}
	if draft.Gender != "" {
		merged.Gender = draft.Gender
	}
	if draft.Mobile != "" {
		merged.Mobile = draft.Mobile
	}
	if draft.Email != "" {
		merged.Email = draft.Email
	}
	if draft.Address != "" {
		merged.Address = draft.Address
	}
	if len(draft.OtherSpecialOccasions) > 0 {
		merged.OtherSpecialOccasions = append([]models.SpecialOccasion(nil), draft.OtherSpecialOccasions...)
	}
	if len(draft.Policies) > 0 {
		merged.Policies = make([]models.Policy, len(draft.Policies))
		for i := range draft.Policies {
			merged.Policies[i] = *draft.Policies[i].Clone()
		}
	}
	if len(draft.AssignedTo) > 0 {
		// Union, not replace: an advisor assignment on either side survives.
		merged.AssignedTo = pstrings.DedupeAndTrim(append(append([]id.AdvisorID(nil), existing.AssignedTo...), draft.AssignedTo...))
	}
	if draft.AutomatedGreetingsEnabled != nil {
		v := *draft.AutomatedGreetingsEnabled
		merged.AutomatedGreetingsEnabled = &v
	}

	return merged
}
