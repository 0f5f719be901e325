// Package queue stores advisor-scheduled custom messages until the scheduler
// consumes them. Messages are tenant-scoped like every other lookup.
package queue

import (
	"context"

	"kindred/internal/notification"
	id "kindred/pkg/domain"
)

// MessageQueue is the store for scheduled custom messages.
type MessageQueue interface {
	// Push schedules a message.
	Push(ctx context.Context, tenantID id.TenantID, msg notification.CustomMessage) error

	// Snapshot returns every scheduled message for a tenant, in push order.
	Snapshot(ctx context.Context, tenantID id.TenantID) ([]notification.CustomMessage, error)

	// Remove deletes a message by id.
	Remove(ctx context.Context, tenantID id.TenantID, messageID string) error
}
