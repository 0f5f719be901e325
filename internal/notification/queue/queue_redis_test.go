package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kindred/internal/notification"
	id "kindred/pkg/domain"
)

type RedisQueueSuite struct {
	suite.Suite
	queue  *RedisQueue
	tenant id.TenantID
}

func TestRedisQueueSuite(t *testing.T) {
	suite.Run(t, new(RedisQueueSuite))
}

func (s *RedisQueueSuite) SetupTest() {
	mr := miniredis.RunT(s.T())
	s.queue = NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	s.tenant = id.TenantID(uuid.New())
}

func (s *RedisQueueSuite) TestPushAndSnapshotPreserveOrder() {
	ctx := context.Background()
	first := notification.CustomMessage{ID: "cm-1", Message: "Call back", Date: "2026-08-29"}
	second := notification.CustomMessage{ID: "cm-2", Message: "Send docs", Date: "2026-08-30"}

	s.Require().NoError(s.queue.Push(ctx, s.tenant, first))
	s.Require().NoError(s.queue.Push(ctx, s.tenant, second))

	got, err := s.queue.Snapshot(ctx, s.tenant)
	s.Require().NoError(err)
	s.Equal([]notification.CustomMessage{first, second}, got)
}

func (s *RedisQueueSuite) TestSnapshotIsTenantScoped() {
	ctx := context.Background()
	s.Require().NoError(s.queue.Push(ctx, s.tenant, notification.CustomMessage{ID: "cm-1", Message: "Mine"}))

	other := id.TenantID(uuid.New())
	got, err := s.queue.Snapshot(ctx, other)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RedisQueueSuite) TestRemove() {
	ctx := context.Background()
	s.Require().NoError(s.queue.Push(ctx, s.tenant, notification.CustomMessage{ID: "cm-1", Message: "One"}))
	s.Require().NoError(s.queue.Push(ctx, s.tenant, notification.CustomMessage{ID: "cm-2", Message: "Two"}))

	s.Require().NoError(s.queue.Remove(ctx, s.tenant, "cm-1"))

	got, err := s.queue.Snapshot(ctx, s.tenant)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("cm-2", got[0].ID)
}

func TestMemoryQueueMatchesRedisContract(t *testing.T) {
	ctx := context.Background()
	tenant := id.TenantID(uuid.New())
	q := NewMemory()

	require.NoError(t, q.Push(ctx, tenant, notification.CustomMessage{ID: "cm-1", Message: "One"}))
	require.NoError(t, q.Push(ctx, tenant, notification.CustomMessage{ID: "cm-2", Message: "Two"}))
	require.NoError(t, q.Remove(ctx, tenant, "cm-1"))

	got, err := q.Snapshot(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "cm-2", got[0].ID)
}
