package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindred/internal/member/models"
)

// today is a fixed reference date: 2026-08-29.
var today = time.Date(2026, 8, 29, 15, 42, 0, 0, time.UTC)

func activePolicy(renewal string) models.Policy {
	return models.Policy{
		ID:          "pol-1",
		PolicyType:  "Health",
		Status:      models.PolicyStatusActive,
		RenewalDate: renewal,
	}
}

func TestComputeBirthdays(t *testing.T) {
	t.Run("upcoming birthday inside the window", func(t *testing.T) {
		m := &models.Member{ID: "rec-1", MemberID: "AS1243210", Name: "Asha Rao", DOB: "1984-09-10", Mobile: "9876543210"}
		got := Compute([]*models.Member{m}, nil, today)
		require.Len(t, got, 1)
		assert.Equal(t, TypeBirthday, got[0].Type)
		assert.Equal(t, "Asha Rao's birthday is in 12 days", got[0].Message)
		assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), got[0].Date)
		assert.Equal(t, "bday-rec-1-1", got[0].ID)
		assert.Equal(t, "9876543210", got[0].MemberMobile)
	})

	t.Run("birthday today", func(t *testing.T) {
		m := &models.Member{ID: "rec-1", Name: "Asha Rao", DOB: "1984-08-29"}
		got := Compute([]*models.Member{m}, nil, today)
		require.Len(t, got, 1)
		assert.Equal(t, "Asha Rao's birthday is today", got[0].Message)
	})

	t.Run("tomorrow is singular", func(t *testing.T) {
		m := &models.Member{ID: "rec-1", Name: "Asha Rao", DOB: "1984-08-30"}
		got := Compute([]*models.Member{m}, nil, today)
		require.Len(t, got, 1)
		assert.Equal(t, "Asha Rao's birthday is in 1 day", got[0].Message)
	})

	t.Run("passed date rolls to next year and leaves the window", func(t *testing.T) {
		m := &models.Member{ID: "rec-1", Name: "Asha Rao", DOB: "1984-08-28"}
		assert.Empty(t, Compute([]*models.Member{m}, nil, today))
	})

	t.Run("window boundary is inclusive at 30 days", func(t *testing.T) {
		in := &models.Member{ID: "rec-in", Name: "In Window", DOB: "1990-09-28"}
		outside := &models.Member{ID: "rec-out", Name: "Out Window", DOB: "1990-09-29"}
		got := Compute([]*models.Member{in, outside}, nil, today)
		require.Len(t, got, 1)
		assert.Equal(t, "In Window's birthday is in 30 days", got[0].Message)
	})

	t.Run("unparseable dates are skipped", func(t *testing.T) {
		m := &models.Member{ID: "rec-1", Name: "Asha Rao", DOB: "not-a-date"}
		assert.Empty(t, Compute([]*models.Member{m}, nil, today))
	})
}

func TestComputeOptOut(t *testing.T) {
	off := false
	m := &models.Member{
		ID:                        "rec-1",
		Name:                      "Asha Rao",
		DOB:                       "1984-09-10",
		Anniversary:               "2008-09-12",
		OtherSpecialOccasions:     []models.SpecialOccasion{{ID: "so-1", Name: "Griha Pravesh", Date: "2020-09-14"}},
		Policies:                  []models.Policy{activePolicy("2026-09-15")},
		AutomatedGreetingsEnabled: &off,
	}

	got := Compute([]*models.Member{m}, nil, today)
	require.Len(t, got, 1, "opt-out drops greetings but never renewals")
	assert.Equal(t, TypePolicyRenewal, got[0].Type)
}

func TestComputeRenewals(t *testing.T) {
	t.Run("active policy inside the window carries the policy", func(t *testing.T) {
		m := &models.Member{ID: "rec-1", Name: "Asha Rao", Policies: []models.Policy{activePolicy("2026-09-15")}}
		got := Compute([]*models.Member{m}, nil, today)
		require.Len(t, got, 1)
		assert.Equal(t, TypePolicyRenewal, got[0].Type)
		assert.Equal(t, "Asha Rao's Health policy renewal is in 17 days", got[0].Message)
		require.NotNil(t, got[0].Policy)
		assert.Equal(t, "pol-1", got[0].Policy.ID)
	})

	t.Run("boundaries", func(t *testing.T) {
		cases := []struct {
			renewal string
			want    int
		}{
			{"2026-09-28", 1}, // daysUntil = 30, included
			{"2026-09-29", 0}, // daysUntil = 31, excluded
			{"2026-08-29", 1}, // today, included
			{"2026-08-28", 0}, // overdue, excluded from the upcoming set
		}
		for _, tc := range cases {
			m := &models.Member{ID: "rec-1", Name: "Asha Rao", Policies: []models.Policy{activePolicy(tc.renewal)}}
			assert.Len(t, Compute([]*models.Member{m}, nil, today), tc.want, "renewal %s", tc.renewal)
		}
	})

	t.Run("inactive policies are skipped", func(t *testing.T) {
		pol := activePolicy("2026-09-15")
		pol.Status = models.PolicyStatusLapsed
		m := &models.Member{ID: "rec-1", Name: "Asha Rao", Policies: []models.Policy{pol}}
		assert.Empty(t, Compute([]*models.Member{m}, nil, today))
	})
}

func TestComputeCustomMessages(t *testing.T) {
	msgs := []CustomMessage{
		{ID: "cm-1", Message: "Post-review follow up", Date: "2026-08-29"},
		{ID: "cm-2", Message: "Tomorrow's message", Date: "2026-08-30"},
		{ID: "cm-3", Message: "Bad date", Date: "29/08/2026"},
	}

	got := Compute(nil, msgs, today)
	require.Len(t, got, 1, "custom messages have no lookahead")
	assert.Equal(t, TypeCustom, got[0].Type)
	assert.Equal(t, "Post-review follow up", got[0].Message)
	assert.Equal(t, "custom-cm-1-1", got[0].ID)
}

func TestComputeOrderingAndIdempotence(t *testing.T) {
	members := []*models.Member{
		{ID: "rec-1", Name: "Asha Rao", DOB: "1984-09-20", Anniversary: "2008-09-02",
			Policies: []models.Policy{activePolicy("2026-09-10")}},
		{ID: "rec-2", Name: "Ravi Rao", DOB: "2010-08-31",
			OtherSpecialOccasions: []models.SpecialOccasion{{ID: "so-1", Name: "Graduation", Date: "2024-09-05"}}},
	}
	msgs := []CustomMessage{{ID: "cm-1", Message: "Call back today", Date: "2026-08-29"}}

	first := Compute(members, msgs, today)
	second := Compute(members, msgs, today)

	require.Equal(t, first, second, "identical inputs yield identical output")

	require.NotEmpty(t, first)
	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].Date.Before(first[i-1].Date), "sorted ascending by date")
	}

	seen := map[string]bool{}
	for _, n := range first {
		assert.False(t, seen[n.ID], "ids are unique within a run: %s", n.ID)
		seen[n.ID] = true
	}
}

func TestComputeSequenceCountersPerSource(t *testing.T) {
	m := &models.Member{
		ID:   "rec-1",
		Name: "Asha Rao",
		OtherSpecialOccasions: []models.SpecialOccasion{
			{ID: "so-1", Name: "Occasion One", Date: "2022-09-01"},
			{ID: "so-2", Name: "Occasion Two", Date: "2023-09-03"},
		},
	}
	got := Compute([]*models.Member{m}, nil, today)
	require.Len(t, got, 2)

	ids := []string{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []string{"occ-rec-1-1", "occ-rec-1-2"}, ids)
}

func TestNewTaskAssignment(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	n := NewTaskAssignment("task-7", "adv-1", "Send renewal reminder", due)
	assert.Equal(t, TypeTaskAssignment, n.Type)
	assert.Equal(t, "task-task-7-1", n.ID)
	assert.Contains(t, n.Message, "Send renewal reminder")
}
