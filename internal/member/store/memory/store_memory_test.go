package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kindred/internal/member/models"
	"kindred/internal/member/store"
	id "kindred/pkg/domain"
)

type InMemoryMemberStoreSuite struct {
	suite.Suite
	store  *InMemoryMemberStore
	tenant id.TenantID
}

func TestInMemoryMemberStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryMemberStoreSuite))
}

func (s *InMemoryMemberStoreSuite) SetupTest() {
	s.store = New()
	s.tenant = id.TenantID(uuid.New())
}

func (s *InMemoryMemberStoreSuite) TestCreateAssignsRecordID() {
	created, err := s.store.Create(context.Background(), &models.Member{
		MemberID:  "AS1243210",
		Name:      "Asha Rao",
		CompanyID: s.tenant,
	})
	s.Require().NoError(err)
	s.False(created.ID.IsZero(), "create must assign a record id")

	found, err := s.store.FindByRecordID(context.Background(), s.tenant, created.ID)
	s.Require().NoError(err)
	s.Equal(created, found)
}

func (s *InMemoryMemberStoreSuite) TestFindIsTenantScoped() {
	created, err := s.store.Create(context.Background(), &models.Member{
		MemberID:  "AS1243210",
		Name:      "Asha Rao",
		CompanyID: s.tenant,
	})
	s.Require().NoError(err)

	otherTenant := id.TenantID(uuid.New())
	_, err = s.store.FindByRecordID(context.Background(), otherTenant, created.ID)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *InMemoryMemberStoreSuite) TestFindByMemberIDReturnsAllCollisions() {
	ctx := context.Background()
	_, err := s.store.Create(ctx, &models.Member{MemberID: "RA12_____", Name: "Ravi Rao", CompanyID: s.tenant})
	s.Require().NoError(err)
	_, err = s.store.Create(ctx, &models.Member{MemberID: "RA12_____", Name: "Rajan Rane", CompanyID: s.tenant})
	s.Require().NoError(err)
	_, err = s.store.Create(ctx, &models.Member{MemberID: "RA12_____", Name: "Other Tenant", CompanyID: id.TenantID(uuid.New())})
	s.Require().NoError(err)

	matches, err := s.store.FindByMemberID(ctx, s.tenant, "RA12_____")
	s.Require().NoError(err)
	s.Len(matches, 2, "collisions within the tenant only")
}

func (s *InMemoryMemberStoreSuite) TestUpdateMissingReturnsNotFound() {
	_, err := s.store.Update(context.Background(), &models.Member{
		ID: "missing", CompanyID: s.tenant,
	})
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *InMemoryMemberStoreSuite) TestReadsDoNotAliasStoreState() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, &models.Member{
		MemberID:  "AS1243210",
		Name:      "Asha Rao",
		CompanyID: s.tenant,
		Policies: []models.Policy{{
			ID:               "pol-1",
			PolicyHolderType: models.HolderTypeFamily,
			CoveredMembers:   []models.CoveredMember{{ID: "cm-1", Name: "Ravi Rao"}},
		}},
	})
	s.Require().NoError(err)

	created.Policies[0].CoveredMembers[0].Name = "Mutated"

	reloaded, err := s.store.FindByRecordID(ctx, s.tenant, created.ID)
	s.Require().NoError(err)
	s.Equal("Ravi Rao", reloaded.Policies[0].CoveredMembers[0].Name)
}

func (s *InMemoryMemberStoreSuite) TestDelete() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, &models.Member{MemberID: "AS1243210", CompanyID: s.tenant})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, s.tenant, created.ID))

	_, err = s.store.FindByRecordID(ctx, s.tenant, created.ID)
	s.ErrorIs(err, store.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, s.tenant, created.ID), store.ErrNotFound)
}
