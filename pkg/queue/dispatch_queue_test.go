package queue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fieldops/pkg/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *queue.DispatchQueue {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return queue.NewDispatchQueueWithClient(client, "test:dispatch")
}

func TestPublishRequiresTenant(t *testing.T) {
	q := newTestQueue(t)

	err := q.Publish(context.Background(), &queue.DispatchEvent{
		EventID: "e1",
		Kind:    queue.EventWorkOrderAssigned,
	})
	assert.Error(t, err)
}

func TestPublishAndRecentEvents(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for i := uint(1); i <= 3; i++ {
		err := q.Publish(ctx, &queue.DispatchEvent{
			EventID:     string(rune('a' + i)),
			Kind:        queue.EventWorkOrderAssigned,
			TenantID:    1,
			WorkOrderID: i,
			Number:      "WO-TEST",
		})
		require.NoError(t, err)
	}

	events, err := q.RecentEvents(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// 新到旧
	assert.Equal(t, uint(3), events[0].WorkOrderID)
	assert.Equal(t, uint(1), events[2].WorkOrderID)

	// 发布时补齐时间戳
	assert.NotZero(t, events[0].OccurredAt)
}

func TestRecentEventsPerTenant(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, &queue.DispatchEvent{
		EventID: "a", Kind: queue.EventWorkOrderAssigned, TenantID: 1, WorkOrderID: 11,
	}))
	require.NoError(t, q.Publish(ctx, &queue.DispatchEvent{
		EventID: "b", Kind: queue.EventWorkOrderAssigned, TenantID: 2, WorkOrderID: 22,
	}))

	// 各租户只看到自己的历史
	events, err := q.RecentEvents(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint(11), events[0].WorkOrderID)

	events, err = q.RecentEvents(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint(22), events[0].WorkOrderID)
}

func TestRecentEventsLimit(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for i := uint(0); i < 10; i++ {
		require.NoError(t, q.Publish(ctx, &queue.DispatchEvent{
			EventID: "e", Kind: queue.EventWorkOrderOverdue, TenantID: 1, WorkOrderID: i + 1,
		}))
	}

	events, err := q.RecentEvents(ctx, 1, 4)
	require.NoError(t, err)
	assert.Len(t, events, 4)

	// 非法limit回退默认值
	events, err = q.RecentEvents(ctx, 1, -1)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestSubscribeReceivesOwnTenantOnly(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubsub := q.Subscribe(ctx, 1)
	defer pubsub.Close()

	// 等待订阅生效
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)
	ch := pubsub.Channel()

	// 其他租户的事件不会到达本频道
	require.NoError(t, q.Publish(ctx, &queue.DispatchEvent{
		EventID: "other", Kind: queue.EventWorkOrderAssigned, TenantID: 2, WorkOrderID: 99,
	}))
	require.NoError(t, q.Publish(ctx, &queue.DispatchEvent{
		EventID: "mine", Kind: queue.EventWorkOrderAssigned, TenantID: 1, WorkOrderID: 7, Number: "WO-ABC",
	}))

	select {
	case msg := <-ch:
		var ev queue.DispatchEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, "mine", ev.EventID)
		assert.Equal(t, uint(1), ev.TenantID)
		assert.Equal(t, uint(7), ev.WorkOrderID)
	case <-ctx.Done():
		t.Fatal("未收到派单事件")
	}

	// 频道里不应再有消息
	select {
	case msg := <-ch:
		t.Fatalf("收到不属于本租户的事件: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}
