package lead

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"kindred/internal/member/store"
	id "kindred/pkg/domain"
)

// InMemoryStore keeps leads in a map. Used by tests and local runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads map[id.RecordID]*Lead
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{leads: make(map[id.RecordID]*Lead)}
}

func (s *InMemoryStore) Create(ctx context.Context, l *Lead) (*Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := l.Clone()
	if stored.ID.IsZero() {
		stored.ID = id.RecordID(uuid.NewString())
	}
	s.leads[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemoryStore) Update(ctx context.Context, l *Lead) (*Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.leads[l.ID]
	if !ok || existing.CompanyID != l.CompanyID {
		return nil, store.ErrNotFound
	}
	stored := l.Clone()
	s.leads[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, tenantID id.TenantID, leadID id.RecordID) (*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[leadID]
	if !ok || l.CompanyID != tenantID {
		return nil, store.ErrNotFound
	}
	return l.Clone(), nil
}

func (s *InMemoryStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Lead
	for _, l := range s.leads {
		if l.CompanyID == tenantID {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}
