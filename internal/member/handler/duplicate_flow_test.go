package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindred/internal/family"
	"kindred/internal/member/models"
	"kindred/internal/member/store/memory"
	"kindred/internal/notification/queue"
	"kindred/internal/platform/logger"
	memsync "kindred/internal/sync"
	id "kindred/pkg/domain"
	"kindred/pkg/testutil"
)

// TestDuplicateResolutionFlow walks the full advisor-facing loop: a save is
// halted by a collision, the advisor picks merge, and the resubmission lands
// on the existing record.
func TestDuplicateResolutionFlow(t *testing.T) {
	tenant := id.TenantID(uuid.New())
	store := memory.New()

	router := chi.NewRouter()
	New(memsync.New(store, family.New()), store, queue.NewMemory(), logger.New()).Register(router)

	membersPath := fmt.Sprintf("/tenants/%s/members", tenant)

	var existingID id.RecordID
	testutil.Given(t, "a member already holds the id", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, membersPath, map[string]any{
			"member": &models.Member{
				Name:      "Asha Rao",
				Address:   "12 MG Road",
				Mobile:    "9876543210",
				CompanyID: tenant,
			},
		}))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[SaveMemberResponse](t, rr)
		existingID = resp.Member.ID
	})

	colliding := &models.Member{
		Name:      "Ashok Rathi",
		Address:   "12 Palace Road",
		Mobile:    "1111143210",
		Email:     "ashok@example.com",
		CompanyID: tenant,
	}

	testutil.When(t, "a colliding draft is submitted without a resolution", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, membersPath, map[string]any{
			"member": colliding,
		}))
		testutil.AssertStatus(t, rr, http.StatusConflict)

		resp := testutil.UnmarshalResponse[DuplicateResponse](t, rr)
		require.Len(t, resp.Duplicates, 1)
		assert.Equal(t, existingID, resp.Duplicates[0].ID)
	})

	testutil.Then(t, "resubmitting with merge lands on the existing record", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, membersPath, map[string]any{
			"member":     colliding,
			"resolution": "merge",
		}))
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[SaveMemberResponse](t, rr)
		assert.Equal(t, existingID, resp.Member.ID)
		assert.Equal(t, "Ashok Rathi", resp.Member.Name)
		assert.Equal(t, "ashok@example.com", resp.Member.Email)
	})
}
