package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

// natsPublisher *nats.Conn的发布能力（测试中可替换）
type natsPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSNotifier 发布评价创建事件到NATS
// 学习要点：消息头注入traceparent，订阅端可以接上追踪链路
type NATSNotifier struct {
	conn    natsPublisher
	subject string
}

// NewNATSNotifier 创建NATS通知
func NewNATSNotifier(conn natsPublisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = EventReviewCreated
	}
	return &NATSNotifier{conn: conn, subject: subject}
}

// ConnectNATS 连接NATS（断线自动重连，事件写日志）
func ConnectNATS(url, appName string, logger *zap.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(appName+" notifier"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS已重连", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS连接已关闭")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败(%s): %w", url, err)
	}
	logger.Info("✓ NATS连接成功", zap.String("url", conn.ConnectedUrl()))
	return conn, nil
}

func (n *NATSNotifier) Name() string { return "nats" }

// ReviewCreated 实现review.Notifier
func (n *NATSNotifier) ReviewCreated(ctx context.Context, r *review.Review) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "NATS.Publish")
	defer span.End()

	ev := NewReviewCreatedEvent(r)
	ev.TraceID = tracing.ExtractTraceID(ctx)
	data, err := json.Marshal(ev)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("评价事件序列化失败: %w", err)
	}

	msg := nats.NewMsg(n.subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, NATSHeaderCarrier(msg.Header))

	if err := n.conn.PublishMsg(msg); err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("发布NATS消息失败(%s): %w", n.subject, err)
	}
	return nil
}

// NATSHeaderCarrier 把NATS消息头适配为otel的TextMapCarrier
type NATSHeaderCarrier nats.Header

// Get 读取header
func (c NATSHeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

// Set 写入header
func (c NATSHeaderCarrier) Set(key, value string) {
	nats.Header(c).Set(key, value)
}

// Keys 全部header名
func (c NATSHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
