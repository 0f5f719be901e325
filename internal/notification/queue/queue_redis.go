package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kindred/internal/notification"
	id "kindred/pkg/domain"
)

// Redis key layout: one hash per tenant, field = message id, value = JSON
// document, plus a list preserving push order.
const (
	messageHashPrefix  = "kindred:msgs:"
	messageOrderPrefix = "kindred:msgorder:"
)

// RedisQueue is the shared message queue for deployments with more than one
// instance.
type RedisQueue struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed message queue.
func NewRedis(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Push(ctx context.Context, tenantID id.TenantID, msg notification.CustomMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode custom message: %w", err)
	}
	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, messageHashPrefix+tenantID.String(), msg.ID, payload)
	pipe.RPush(ctx, messageOrderPrefix+tenantID.String(), msg.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push custom message: %w", err)
	}
	return nil
}

func (q *RedisQueue) Snapshot(ctx context.Context, tenantID id.TenantID) ([]notification.CustomMessage, error) {
	order, err := q.client.LRange(ctx, messageOrderPrefix+tenantID.String(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read message order: %w", err)
	}
	if len(order) == 0 {
		return nil, nil
	}
	docs, err := q.client.HMGet(ctx, messageHashPrefix+tenantID.String(), order...).Result()
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	out := make([]notification.CustomMessage, 0, len(docs))
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			// Removed between LRANGE and HMGET; skip the stale order entry.
			continue
		}
		var msg notification.CustomMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("decode custom message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (q *RedisQueue) Remove(ctx context.Context, tenantID id.TenantID, messageID string) error {
	pipe := q.client.TxPipeline()
	pipe.HDel(ctx, messageHashPrefix+tenantID.String(), messageID)
	pipe.LRem(ctx, messageOrderPrefix+tenantID.String(), 0, messageID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove custom message: %w", err)
	}
	return nil
}
