package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DispatchQueue 派单事件队列 - Redis实现
// 事件按租户分频道发布，派单看板只订阅本租户频道
type DispatchQueue struct {
	client *redis.Client
	prefix string
}

// 派单事件类型
const (
	EventWorkOrderAssigned  = "work_order_assigned"
	EventWorkOrderStarted   = "work_order_started"
	EventWorkOrderCompleted = "work_order_completed"
	EventWorkOrderCancelled = "work_order_cancelled"
	EventWorkOrderOverdue   = "work_order_overdue"
)

// DispatchEvent 派单事件
type DispatchEvent struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`
	TenantID    uint   `json:"tenant_id"`
	WorkOrderID uint   `json:"work_order_id"`
	Number      string `json:"number"`       // 工单编号
	AssigneeID  uint   `json:"assignee_id"`  // 被派技师，未派单为0
	ActorID     uint   `json:"actor_id"`     // 触发人，系统任务为0
	OccurredAt  int64  `json:"occurred_at"`  // Unix秒
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewDispatchQueue 创建派单队列实例
func NewDispatchQueue(config *Config) *DispatchQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "fieldops:dispatch"
	}

	return &DispatchQueue{
		client: client,
		prefix: prefix,
	}
}

// NewDispatchQueueWithClient 用现有客户端创建（测试用）
func NewDispatchQueueWithClient(client *redis.Client, prefix string) *DispatchQueue {
	if prefix == "" {
		prefix = "fieldops:dispatch"
	}
	return &DispatchQueue{client: client, prefix: prefix}
}

// Close 关闭Redis连接
func (q *DispatchQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *DispatchQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// GetClient 获取底层Redis客户端
func (q *DispatchQueue) GetClient() *redis.Client {
	return q.client
}

// channelFor 租户事件频道
func (q *DispatchQueue) channelFor(tenantID uint) string {
	return fmt.Sprintf("%s:events:%d", q.prefix, tenantID)
}

// historyKeyFor 租户事件历史列表
func (q *DispatchQueue) historyKeyFor(tenantID uint) string {
	return fmt.Sprintf("%s:history:%d", q.prefix, tenantID)
}

// Publish 发布派单事件
// 同时写入历史列表（保留最近200条）并推送到本租户频道
func (q *DispatchQueue) Publish(ctx context.Context, event *DispatchEvent) error {
	if event.TenantID == 0 {
		return fmt.Errorf("派单事件缺少租户ID")
	}
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化派单事件失败: %v", err)
	}

	historyKey := q.historyKeyFor(event.TenantID)
	pipe := q.client.Pipeline()
	pipe.LPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, 0, 199)
	pipe.Publish(ctx, q.channelFor(event.TenantID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("发布派单事件失败: %v", err)
	}
	return nil
}

// Subscribe 订阅某租户的派单事件频道
func (q *DispatchQueue) Subscribe(ctx context.Context, tenantID uint) *redis.PubSub {
	return q.client.Subscribe(ctx, q.channelFor(tenantID))
}

// RecentEvents 读取某租户最近的派单事件（新到旧）
func (q *DispatchQueue) RecentEvents(ctx context.Context, tenantID uint, limit int) ([]*DispatchEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	raw, err := q.client.LRange(ctx, q.historyKeyFor(tenantID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*DispatchEvent, 0, len(raw))
	for _, item := range raw {
		var ev DispatchEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue // 跳过坏数据
		}
		events = append(events, &ev)
	}
	return events, nil
}
