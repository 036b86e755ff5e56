// Package notifier 评价创建通知的出站适配器
//
// 领域层只认识review.Notifier接口；这里提供几种实现：
//
//	log       写一条结构化日志（默认）
//	rabbitmq  发布到topic exchange，routing key默认review.created
//	nats      发布到subject，默认review.created
//	redis     PUBLISH到频道，默认reviews.created
//
// 多个驱动通过Multi扇出，除log外的驱动都包一层熔断器。
// 所有驱动的错误最终只会被Manager记录日志，不影响评价写入。
package notifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/pkg/circuitbreaker"
	"github.com/xiebiao/reviewrating/pkg/metrics"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

const tracerName = "reviewrating/notifier"

// Driver 带名称的通知实现
type Driver interface {
	review.Notifier
	Name() string
}

// Multi 顺序调用全部驱动
// 某个驱动失败不影响后续驱动，全部错误合并返回
type Multi struct {
	drivers []Driver
}

// NewMulti 创建扇出通知
func NewMulti(drivers ...Driver) *Multi {
	return &Multi{drivers: drivers}
}

// Drivers 已启用的驱动
func (m *Multi) Drivers() []Driver {
	return m.drivers
}

// ReviewCreated 实现review.Notifier
func (m *Multi) ReviewCreated(ctx context.Context, r *review.Review) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Notifier.ReviewCreated")
	defer span.End()

	var errs []error
	for _, d := range m.drivers {
		err := d.ReviewCreated(ctx, r)
		metrics.IncReviewNotification(d.Name(), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
		}
	}

	err := errors.Join(errs...)
	tracing.RecordError(span, err)
	return err
}

// breakerDriver 熔断保护
type breakerDriver struct {
	next Driver
	cb   *circuitbreaker.CircuitBreaker
}

// WithBreaker 给驱动加熔断器，状态变化写日志
func WithBreaker(d Driver, cfg circuitbreaker.Config, logger *zap.Logger) Driver {
	cb := circuitbreaker.New("notifier-"+d.Name(), cfg)
	cb.OnStateChange(func(name string, from, to circuitbreaker.State) {
		logger.Warn("通知熔断器状态变化",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})
	return &breakerDriver{next: d, cb: cb}
}

func (b *breakerDriver) Name() string { return b.next.Name() }

func (b *breakerDriver) ReviewCreated(ctx context.Context, r *review.Review) error {
	return b.cb.Execute(ctx, func(ctx context.Context) error {
		return b.next.ReviewCreated(ctx, r)
	})
}

// LogNotifier 把评价创建事件写成结构化日志
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

// ReviewCreated 实现review.Notifier
func (n *LogNotifier) ReviewCreated(ctx context.Context, r *review.Review) error {
	fields := []zap.Field{
		zap.Uint("review_id", r.ID),
		zap.String("reviewable", r.Reviewable.String()),
		zap.String("author", r.Author.String()),
		zap.Bool("rated", r.HasRating()),
	}
	if r.Rating != nil {
		fields = append(fields, zap.Float64("rating", *r.Rating))
	}
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	n.logger.Info("评价已创建", fields...)
	return nil
}
