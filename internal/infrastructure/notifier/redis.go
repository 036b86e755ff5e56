package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

// redisPublisher redis客户端的PUBLISH能力（*redis.Client满足）
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier 通过Redis Pub/Sub广播评价创建事件
// 注意：Pub/Sub不持久化，没有在线订阅者时消息直接丢弃；需要可靠投递请用rabbitmq
type RedisNotifier struct {
	client  redisPublisher
	channel string
}

// NewRedisNotifier 创建Redis通知
func NewRedisNotifier(client redisPublisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = "reviews.created"
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Name() string { return "redis" }

// ReviewCreated 实现review.Notifier
func (n *RedisNotifier) ReviewCreated(ctx context.Context, r *review.Review) error {
	ev := NewReviewCreatedEvent(r)
	ev.TraceID = tracing.ExtractTraceID(ctx)
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("评价事件序列化失败: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("发布Redis消息失败(%s): %w", n.channel, err)
	}
	return nil
}
