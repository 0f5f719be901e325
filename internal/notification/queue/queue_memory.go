package queue

import (
	"context"
	"sync"

	"kindred/internal/notification"
	id "kindred/pkg/domain"
)

// InMemoryQueue keeps scheduled messages in memory for tests and dev wiring.
type InMemoryQueue struct {
	mu       sync.RWMutex
	messages map[id.TenantID][]notification.CustomMessage
}

// NewMemory constructs an empty in-memory message queue.
func NewMemory() *InMemoryQueue {
	return &InMemoryQueue{messages: make(map[id.TenantID][]notification.CustomMessage)}
}

func (q *InMemoryQueue) Push(_ context.Context, tenantID id.TenantID, msg notification.CustomMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages[tenantID] = append(q.messages[tenantID], msg)
	return nil
}

func (q *InMemoryQueue) Snapshot(_ context.Context, tenantID id.TenantID) ([]notification.CustomMessage, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]notification.CustomMessage, len(q.messages[tenantID]))
	copy(out, q.messages[tenantID])
	return out, nil
}

func (q *InMemoryQueue) Remove(_ context.Context, tenantID id.TenantID, messageID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.messages[tenantID][:0]
	for _, msg := range q.messages[tenantID] {
		if msg.ID != messageID {
			kept = append(kept, msg)
		}
	}
	q.messages[tenantID] = kept
	return nil
}
