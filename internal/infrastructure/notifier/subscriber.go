package notifier

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/pkg/mq"
)

// EventHandler 评价创建事件处理函数
type EventHandler func(ctx context.Context, ev ReviewCreatedEvent) error

// AMQPHandler 把EventHandler适配为mq.Handler
// 注意：载荷无法解析时记录日志后直接Ack丢弃，重新入队只会无限循环；
// handler返回的错误原样交给mq.Consumer（Nack重新入队）
func AMQPHandler(handler EventHandler, logger *zap.Logger) mq.Handler {
	return func(ctx context.Context, routingKey string, body []byte) error {
		ev, err := DecodeEvent(body)
		if err != nil {
			logger.Warn("丢弃无法解析的评价事件",
				zap.String("source", "rabbitmq"),
				zap.String("routing_key", routingKey),
				zap.Error(err),
			)
			return nil
		}
		return handler(ctx, ev)
	}
}

// SubscribeNATS 订阅NATS subject，阻塞到ctx取消
func SubscribeNATS(ctx context.Context, conn *nats.Conn, subject string, handler EventHandler, logger *zap.Logger) error {
	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, NATSHeaderCarrier(msg.Header))
		dispatch(msgCtx, "nats", msg.Data, handler, logger)
	})
	if err != nil {
		return fmt.Errorf("订阅NATS失败(%s): %w", subject, err)
	}
	logger.Info("开始订阅NATS", zap.String("subject", subject))

	<-ctx.Done()
	return sub.Unsubscribe()
}

// SubscribeRedis 订阅Redis频道，阻塞到ctx取消
// 学习要点：Receive会等待订阅确认，确认前发布的消息收不到
func SubscribeRedis(ctx context.Context, client *redis.Client, channel string, handler EventHandler, logger *zap.Logger) error {
	pubsub := client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("订阅Redis频道失败(%s): %w", channel, err)
	}
	logger.Info("开始订阅Redis频道", zap.String("channel", channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			dispatch(ctx, "redis", []byte(msg.Payload), handler, logger)
		}
	}
}

// dispatch 解析并处理一条消息，错误只记录日志（NATS/Redis Pub/Sub没有ack）
func dispatch(ctx context.Context, source string, body []byte, handler EventHandler, logger *zap.Logger) {
	ev, err := DecodeEvent(body)
	if err != nil {
		logger.Warn("丢弃无法解析的评价事件", zap.String("source", source), zap.Error(err))
		return
	}
	if err := handler(ctx, ev); err != nil {
		logger.Error("处理评价事件失败",
			zap.String("source", source),
			zap.Uint("review_id", ev.ReviewID),
			zap.Error(err),
		)
	}
}
