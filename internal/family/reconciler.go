// Package family keeps a family head (SPOC) and the dependents covered under
// their policies mutually consistent. Reconciliation is pure: it reasons over
// an immutable population snapshot and emits an ordered plan; all persistence
// happens in the sync orchestrator.
package family

import (
	"log/slog"

	"github.com/google/uuid"

	"kindred/internal/member/identity"
	"kindred/internal/member/models"
	id "kindred/pkg/domain"
)

// Reconciler computes family-graph plans.
type Reconciler struct {
	logger *slog.Logger
}

// Option configures the Reconciler.
type Option func(*Reconciler)

// WithLogger sets a logger for reconciliation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// New constructs a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs the three dependent-ordered steps over a save: SPOC
// recomputation, covered-member provisioning, and dependent-to-SPOC
// propagation. old is nil for a brand-new member. The draft and population
// are never mutated.
func (r *Reconciler) Reconcile(old *models.Member, draft *models.Member, population []*models.Member) (*Plan, error) {
	member := draft.Clone()
	plan := &Plan{Member: member}
	queue := newUpdateQueue(plan)

	r.recomputeSpoc(old, member, population, queue)
	if err := r.provisionCoveredMembers(member, population, plan, queue); err != nil {
		return nil, err
	}
	r.propagateToSpoc(member, population, queue)

	return plan, nil
}

// recomputeSpoc derives isSPOC from the policy list and keeps the family
// label current, fanning a rename out to every dependent still pointing at
// the previous label.
func (r *Reconciler) recomputeSpoc(old, member *models.Member, population []*models.Member, queue *updateQueue) {
	wasSpoc := old != nil && old.IsSPOC
	member.IsSPOC = member.HasFamilyPolicy()

	if !member.IsSPOC {
		if !member.IsDependent() {
			member.FamilyName = ""
		}
		return
	}

	renamed := wasSpoc && old.Name != member.Name
	if !wasSpoc || renamed || member.FamilyName == "" {
		member.FamilyName = models.FamilyLabel(member.Name)
	}

	if !renamed {
		return
	}
	// Dependents must display the current family label, not a stale one.
	for _, dep := range population {
		if dep.SpocID != old.MemberID {
			continue
		}
		if !member.ID.IsZero() && dep.ID == member.ID {
			continue
		}
		upd := queue.checkout(dep)
		upd.FamilyName = member.FamilyName
	}
}

// provisionCoveredMembers stamps the family head's id onto every family
// policy and resolves each unlinked covered entry to a dependent record:
// adopting an existing member when exactly one legacy match exists, otherwise
// synthesizing a new dependent seeded from the entry's own contact fields.
func (r *Reconciler) provisionCoveredMembers(member *models.Member, population []*models.Member, plan *Plan, queue *updateQueue) error {
	for pi := range member.Policies {
		pol := &member.Policies[pi]
		if pol.PolicyHolderType != models.HolderTypeFamily {
			continue
		}
		pol.FamilyHeadMemberID = member.MemberID

		for ci := range pol.CoveredMembers {
			entry := &pol.CoveredMembers[ci]
			if entry.ID == "" {
				entry.ID = uuid.NewString()
			}
			if entry.IsLinked() {
				continue
			}

			match, err := findUnlinkedDependent(population, member, entry.Name, entry.DOB)
			if err != nil {
				return err
			}
			if match != nil {
				if err := r.adoptExisting(member, entry, match, queue); err != nil {
					return err
				}
				continue
			}

			dep := r.synthesizeDependent(member, entry)
			plan.DependentsToCreate = append(plan.DependentsToCreate, dep)
			plan.Links = append(plan.Links, PendingLink{
				PolicyID:  pol.ID,
				EntryID:   entry.ID,
				Dependent: len(plan.DependentsToCreate) - 1,
			})
		}
	}
	return nil
}

// adoptExisting links a covered entry to a member that already exists in the
// population instead of creating a duplicate.
func (r *Reconciler) adoptExisting(member *models.Member, entry *models.CoveredMember, match *models.Member, queue *updateQueue) error {
	switch {
	case match.SpocID.IsZero():
		upd := queue.checkout(match)
		upd.SpocID = member.MemberID
		upd.FamilyName = member.FamilyName
		entry.MemberID = match.MemberID
	case match.SpocID == member.MemberID:
		// Already in this family; just populate the missing link.
		entry.MemberID = match.MemberID
	default:
		// The matched record belongs to another family head. Guessing here
		// could silently rewire someone else's family tree.
		return linkConflictError(entry.Name)
	}
	return nil
}

// synthesizeDependent builds a full dependent record for an entry with no
// existing match, falling back to the SPOC's address and mobile when the
// entry lacks its own.
func (r *Reconciler) synthesizeDependent(member *models.Member, entry *models.CoveredMember) *models.Member {
	address := entry.Address
	if address == "" {
		address = member.Address
	}
	mobile := entry.Mobile
	if mobile == "" {
		mobile = member.Mobile
	}
	return &models.Member{
		MemberID:   identity.Generate(entry.Name, address, mobile),
		Name:       entry.Name,
		DOB:        entry.DOB,
		Gender:     entry.Gender,
		Mobile:     entry.Mobile,
		Email:      entry.Email,
		Address:    entry.Address,
		IsSPOC:     false,
		SpocID:     member.MemberID,
		FamilyName: member.FamilyName,
		CompanyID:  member.CompanyID,
	}
}

// propagateToSpoc refreshes the covered entry for a dependent being saved so
// the family head's policies reflect the dependent's latest identity fields.
func (r *Reconciler) propagateToSpoc(member *models.Member, population []*models.Member, queue *updateQueue) {
	if !member.IsDependent() {
		return
	}
	spoc := findByMemberID(population, member.SpocID, member.ID)
	if spoc == nil {
		if r.logger != nil {
			r.logger.Warn("dependent references a missing family head",
				"member_id", member.MemberID,
				"spoc_id", member.SpocID,
			)
		}
		return
	}

	member.FamilyName = spoc.FamilyName

	upd := queue.checkout(spoc)
	touched := false
	for pi := range upd.Policies {
		pol := &upd.Policies[pi]
		if pol.PolicyHolderType != models.HolderTypeFamily {
			continue
		}
		for ci := range pol.CoveredMembers {
			entry := &pol.CoveredMembers[ci]
			if !entryMatchesMember(entry, member) {
				continue
			}
			entry.Name = member.Name
			entry.DOB = member.DOB
			entry.Gender = member.Gender
			entry.Email = member.Email
			entry.Mobile = member.Mobile
			touched = true
		}
	}
	if !touched {
		queue.discard(spoc.ID)
	}
}

// updateQueue dedupes queued dependent updates by record id so a member
// touched by several steps is persisted once, with all edits applied.
type updateQueue struct {
	plan    *Plan
	indexed map[id.RecordID]*models.Member
}

func newUpdateQueue(plan *Plan) *updateQueue {
	return &updateQueue{plan: plan, indexed: make(map[id.RecordID]*models.Member)}
}

// checkout returns the queued working copy for a record, cloning and queueing
// it on first touch.
func (q *updateQueue) checkout(m *models.Member) *models.Member {
	if existing, ok := q.indexed[m.ID]; ok {
		return existing
	}
	clone := m.Clone()
	q.indexed[m.ID] = clone
	q.plan.DependentsToUpdate = append(q.plan.DependentsToUpdate, clone)
	return clone
}

// discard removes a record from the queue if checking it out produced no
// edits. Only safe for records checked out exactly once.
func (q *updateQueue) discard(recordID id.RecordID) {
	if _, ok := q.indexed[recordID]; !ok {
		return
	}
	delete(q.indexed, recordID)
	for i, queued := range q.plan.DependentsToUpdate {
		if queued.ID == recordID {
			q.plan.DependentsToUpdate = append(q.plan.DependentsToUpdate[:i], q.plan.DependentsToUpdate[i+1:]...)
			return
		}
	}
}
