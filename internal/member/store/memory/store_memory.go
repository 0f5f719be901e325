// Package memory provides the in-memory member store used by tests and
// development wiring.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"kindred/internal/member/models"
	"kindred/internal/member/store"
	id "kindred/pkg/domain"
)

// InMemoryMemberStore keeps member records in a map keyed by record id.
// All reads and writes deep-copy so callers can never alias store state.
type InMemoryMemberStore struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.Member
}

// New constructs an empty in-memory member store.
func New() *InMemoryMemberStore {
	return &InMemoryMemberStore{records: make(map[id.RecordID]*models.Member)}
}

func (s *InMemoryMemberStore) Create(_ context.Context, m *models.Member) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := m.Clone()
	if stored.ID.IsZero() {
		stored.ID = id.RecordID(uuid.NewString())
	}
	s.records[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemoryMemberStore) Update(_ context.Context, m *models.Member) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[m.ID]
	if !ok || existing.CompanyID != m.CompanyID {
		return nil, fmt.Errorf("member %s: %w", m.ID, store.ErrNotFound)
	}
	stored := m.Clone()
	s.records[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemoryMemberStore) Delete(_ context.Context, tenantID id.TenantID, recordID id.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[recordID]
	if !ok || existing.CompanyID != tenantID {
		return fmt.Errorf("member %s: %w", recordID, store.ErrNotFound)
	}
	delete(s.records, recordID)
	return nil
}

func (s *InMemoryMemberStore) FindByRecordID(_ context.Context, tenantID id.TenantID, recordID id.RecordID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, ok := s.records[recordID]
	if !ok || existing.CompanyID != tenantID {
		return nil, fmt.Errorf("member %s: %w", recordID, store.ErrNotFound)
	}
	return existing.Clone(), nil
}

func (s *InMemoryMemberStore) FindByMemberID(_ context.Context, tenantID id.TenantID, memberID id.MemberID) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Member
	for _, m := range s.records {
		if m.CompanyID == tenantID && m.MemberID == memberID {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryMemberStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Member
	for _, m := range s.records {
		if m.CompanyID == tenantID {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}
