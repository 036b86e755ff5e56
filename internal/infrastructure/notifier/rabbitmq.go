package notifier

import (
	"context"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

// amqpPublisher mq.Publisher的发布能力（测试中可替换）
type amqpPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// RabbitMQNotifier 发布评价创建事件到RabbitMQ
type RabbitMQNotifier struct {
	publisher  amqpPublisher
	routingKey string
}

// NewRabbitMQNotifier 创建RabbitMQ通知
func NewRabbitMQNotifier(publisher amqpPublisher, routingKey string) *RabbitMQNotifier {
	if routingKey == "" {
		routingKey = EventReviewCreated
	}
	return &RabbitMQNotifier{publisher: publisher, routingKey: routingKey}
}

func (n *RabbitMQNotifier) Name() string { return "rabbitmq" }

// ReviewCreated 实现review.Notifier
func (n *RabbitMQNotifier) ReviewCreated(ctx context.Context, r *review.Review) error {
	ev := NewReviewCreatedEvent(r)
	ev.TraceID = tracing.ExtractTraceID(ctx)
	return n.publisher.Publish(ctx, n.routingKey, ev)
}
