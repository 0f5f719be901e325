package family

import (
	"strings"

	"kindred/internal/member/models"
	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
)

// entryMatchesMember decides whether a covered entry refers to the given
// member. The permanent MemberID link wins whenever the entry carries one;
// name+dob matching applies only to legacy rows that predate the link and
// must never override an existing link.
func entryMatchesMember(entry *models.CoveredMember, m *models.Member) bool {
	if entry.IsLinked() {
		return entry.MemberID == m.MemberID
	}
	return legacyMatch(entry.Name, entry.DOB, m)
}

// legacyMatch is the compatibility shim for pre-link rows: trimmed
// case-insensitive name plus exact dob string equality. Kept in one place so
// it can be retired once all records carry links.
//
// dob stays an exact string compare; normalizing it is an open product
// question and guessing here could silently join the wrong records.
func legacyMatch(name, dob string, m *models.Member) bool {
	return m.NameEquals(name) && m.DOB == dob
}

// findUnlinkedDependent searches the population for an existing member a
// covered entry should adopt instead of creating a duplicate. Ambiguity is
// surfaced, never guessed: more than one candidate is a link-resolution error.
func findUnlinkedDependent(population []*models.Member, self *models.Member, name, dob string) (*models.Member, error) {
	var found *models.Member
	for _, candidate := range population {
		if !self.ID.IsZero() && candidate.ID == self.ID {
			continue
		}
		if !legacyMatch(name, dob, candidate) {
			continue
		}
		if found != nil {
			return nil, dErrors.Newf(dErrors.CodeLinkResolution,
				"covered member %q matches multiple existing records", strings.TrimSpace(name))
		}
		found = candidate
	}
	return found, nil
}

// linkConflictError reports a covered entry whose only legacy match already
// belongs to a different family head.
func linkConflictError(name string) error {
	return dErrors.Newf(dErrors.CodeLinkResolution,
		"covered member %q matches a record already linked to another family", strings.TrimSpace(name))
}

// findByMemberID resolves a business id within the population, preferring a
// record flagged as SPOC when collisions exist.
func findByMemberID(population []*models.Member, memberID id.MemberID, excludeRecord id.RecordID) *models.Member {
	var fallback *models.Member
	for _, candidate := range population {
		if candidate.MemberID != memberID {
			continue
		}
		if !excludeRecord.IsZero() && candidate.ID == excludeRecord {
			continue
		}
		if candidate.IsSPOC {
			return candidate
		}
		if fallback == nil {
			fallback = candidate
		}
	}
	return fallback
}
