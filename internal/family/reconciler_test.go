package family

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kindred/internal/member/models"
	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
)

type ReconcilerSuite struct {
	suite.Suite
	reconciler *Reconciler
	tenant     id.TenantID
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.reconciler = New()
	s.tenant = id.TenantID(uuid.New())
}

func (s *ReconcilerSuite) spocDraft() *models.Member {
	return &models.Member{
		ID:        "rec-asha",
		MemberID:  "AS1243210",
		Name:      "Asha Rao",
		Address:   "12 MG Road",
		Mobile:    "9876543210",
		CompanyID: s.tenant,
		Policies: []models.Policy{{
			ID:               "pol-1",
			PolicyType:       "Health",
			Status:           models.PolicyStatusActive,
			PolicyHolderType: models.HolderTypeFamily,
			CoveredMembers: []models.CoveredMember{{
				ID:   "cm-ravi",
				Name: "Ravi Rao",
				DOB:  "2010-01-05",
			}},
		}},
	}
}

func (s *ReconcilerSuite) TestSpocRecomputation() {
	s.Run("family policy makes the member a SPOC", func() {
		plan, err := s.reconciler.Reconcile(nil, s.spocDraft(), nil)
		s.Require().NoError(err)
		s.True(plan.Member.IsSPOC)
		s.Equal("Asha Rao's Family", plan.Member.FamilyName)
	})

	s.Run("no family policy clears SPOC status and label", func() {
		old := s.spocDraft()
		old.IsSPOC = true
		old.FamilyName = "Asha Rao's Family"

		draft := s.spocDraft()
		draft.FamilyName = "Asha Rao's Family"
		draft.Policies = []models.Policy{{ID: "pol-2", PolicyHolderType: models.HolderTypeIndividual}}

		plan, err := s.reconciler.Reconcile(old, draft, nil)
		s.Require().NoError(err)
		s.False(plan.Member.IsSPOC)
		s.Empty(plan.Member.FamilyName)
	})

	s.Run("rename fans the new label out to dependents", func() {
		old := s.spocDraft()
		old.IsSPOC = true
		old.FamilyName = "Asha Rao's Family"
		old.Policies[0].CoveredMembers[0].MemberID = "RA1243210"

		dependent := &models.Member{
			ID:         "rec-ravi",
			MemberID:   "RA1243210",
			Name:       "Ravi Rao",
			SpocID:     old.MemberID,
			FamilyName: "Asha Rao's Family",
			CompanyID:  s.tenant,
		}

		draft := old.Clone()
		draft.Name = "Asha Sharma"

		plan, err := s.reconciler.Reconcile(old, draft, []*models.Member{dependent})
		s.Require().NoError(err)
		s.Equal("Asha Sharma's Family", plan.Member.FamilyName)
		s.Require().Len(plan.DependentsToUpdate, 1)
		s.Equal(id.RecordID("rec-ravi"), plan.DependentsToUpdate[0].ID)
		s.Equal("Asha Sharma's Family", plan.DependentsToUpdate[0].FamilyName)
	})
}

func (s *ReconcilerSuite) TestCoveredMemberProvisioning() {
	s.Run("unmatched entry synthesizes a dependent", func() {
		draft := s.spocDraft()
		plan, err := s.reconciler.Reconcile(nil, draft, nil)
		s.Require().NoError(err)

		s.Require().Len(plan.DependentsToCreate, 1)
		dep := plan.DependentsToCreate[0]
		s.Equal("Ravi Rao", dep.Name)
		s.False(dep.IsSPOC)
		s.Equal(id.MemberID("AS1243210"), dep.SpocID)
		s.Equal("Asha Rao's Family", dep.FamilyName)
		s.Equal(s.tenant, dep.CompanyID)
		// Entry had no contact fields; identity seeds from the SPOC's.
		s.Equal(id.MemberID("RA1243210"), dep.MemberID)

		s.Equal(id.MemberID("AS1243210"), plan.Member.Policies[0].FamilyHeadMemberID)
		s.Require().Len(plan.Links, 1)
		s.Equal("cm-ravi", plan.Links[0].EntryID)
	})

	s.Run("link backfill after creation", func() {
		plan, err := s.reconciler.Reconcile(nil, s.spocDraft(), nil)
		s.Require().NoError(err)

		created := plan.DependentsToCreate[0].Clone()
		created.ID = "rec-ravi"
		plan.BindCreated(0, created)

		s.Equal(id.MemberID("RA1243210"), plan.Member.Policies[0].CoveredMembers[0].MemberID)
	})

	s.Run("linked entries are left alone", func() {
		draft := s.spocDraft()
		draft.Policies[0].CoveredMembers[0].MemberID = "RA1243210"

		plan, err := s.reconciler.Reconcile(nil, draft, nil)
		s.Require().NoError(err)
		s.Empty(plan.DependentsToCreate)
		s.Empty(plan.DependentsToUpdate)
		s.Equal(id.MemberID("RA1243210"), plan.Member.Policies[0].CoveredMembers[0].MemberID,
			"an existing link is never reassigned")
	})

	s.Run("legacy row adopts an existing unlinked member", func() {
		existing := &models.Member{
			ID:        "rec-ravi",
			MemberID:  "RA0098765",
			Name:      "  ravi rao ",
			DOB:       "2010-01-05",
			CompanyID: s.tenant,
		}

		plan, err := s.reconciler.Reconcile(nil, s.spocDraft(), []*models.Member{existing})
		s.Require().NoError(err)

		s.Empty(plan.DependentsToCreate, "no duplicate is created")
		s.Require().Len(plan.DependentsToUpdate, 1)
		adopted := plan.DependentsToUpdate[0]
		s.Equal(id.MemberID("AS1243210"), adopted.SpocID)
		s.Equal("Asha Rao's Family", adopted.FamilyName)
		s.Equal(id.MemberID("RA0098765"), plan.Member.Policies[0].CoveredMembers[0].MemberID)
	})

	s.Run("ambiguous legacy match is surfaced", func() {
		twinA := &models.Member{ID: "rec-a", MemberID: "RA000001_", Name: "Ravi Rao", DOB: "2010-01-05", CompanyID: s.tenant}
		twinB := &models.Member{ID: "rec-b", MemberID: "RA000002_", Name: "Ravi Rao", DOB: "2010-01-05", CompanyID: s.tenant}

		_, err := s.reconciler.Reconcile(nil, s.spocDraft(), []*models.Member{twinA, twinB})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeLinkResolution))
	})

	s.Run("match already in another family is surfaced", func() {
		taken := &models.Member{
			ID: "rec-taken", MemberID: "RA000003_", Name: "Ravi Rao", DOB: "2010-01-05",
			SpocID: "ZZ9900000", CompanyID: s.tenant,
		}
		_, err := s.reconciler.Reconcile(nil, s.spocDraft(), []*models.Member{taken})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeLinkResolution))
	})
}

func (s *ReconcilerSuite) TestDependentPropagation() {
	spoc := s.spocDraft()
	spoc.IsSPOC = true
	spoc.FamilyName = "Asha Rao's Family"
	spoc.Policies[0].CoveredMembers[0].MemberID = "RA1243210"

	dependent := &models.Member{
		ID:        "rec-ravi",
		MemberID:  "RA1243210",
		Name:      "Ravi Rao",
		DOB:       "2010-01-05",
		SpocID:    "AS1243210",
		CompanyID: s.tenant,
	}

	s.Run("dependent edit refreshes the SPOC's covered entry", func() {
		draft := dependent.Clone()
		draft.Name = "Ravindra Rao"
		draft.Email = "ravi@example.com"

		plan, err := s.reconciler.Reconcile(dependent, draft, []*models.Member{spoc})
		s.Require().NoError(err)

		s.Require().Len(plan.DependentsToUpdate, 1)
		updated := plan.DependentsToUpdate[0]
		s.Equal(spoc.ID, updated.ID)
		entry := updated.Policies[0].CoveredMembers[0]
		s.Equal("Ravindra Rao", entry.Name)
		s.Equal("ravi@example.com", entry.Email)
		s.Equal("cm-ravi", entry.ID, "entry id is preserved across propagation")
		s.Equal(id.MemberID("RA1243210"), entry.MemberID)
	})

	s.Run("memberId match wins over a same-named entry", func() {
		head := spoc.Clone()
		head.Policies[0].CoveredMembers = append(head.Policies[0].CoveredMembers, models.CoveredMember{
			ID: "cm-other", Name: "Ravi Rao", DOB: "2010-01-05",
		})

		draft := dependent.Clone()
		draft.Name = "Ravindra Rao"

		plan, err := s.reconciler.Reconcile(dependent, draft, []*models.Member{head})
		s.Require().NoError(err)

		entries := plan.DependentsToUpdate[0].Policies[0].CoveredMembers
		s.Equal("Ravindra Rao", entries[0].Name, "linked entry is refreshed")
	})

	s.Run("missing SPOC is tolerated on save", func() {
		draft := dependent.Clone()
		draft.Name = "Ravindra Rao"

		plan, err := s.reconciler.Reconcile(dependent, draft, nil)
		s.Require().NoError(err)
		s.Empty(plan.DependentsToUpdate)
	})

	s.Run("unchanged dependent queues no SPOC update", func() {
		plan, err := s.reconciler.Reconcile(dependent, dependent.Clone(), []*models.Member{spoc})
		s.Require().NoError(err)
		s.Require().Len(plan.DependentsToUpdate, 1,
			"the matching entry is refreshed even when values are identical")
		s.Equal(spoc.ID, plan.DependentsToUpdate[0].ID)
	})
}
