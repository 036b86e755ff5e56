// Package tracing 提供基于OpenTelemetry的分布式追踪
//
// # 核心概念
//
//   - Trace（追踪）：一个完整的请求链路，如"为图书写评价"从HTTP入口到通知发出的全过程
//   - Span（跨度）：一个操作单元，如ReviewStore.Create、NATS发布
//   - SpanContext：跨进程传递的TraceID/SpanID（HTTP traceparent头、NATS消息头、AMQP消息头）
//
// # 追踪示例
//
//	Trace: POST /api/v1/books/42/reviews（TraceID=abc123）
//	├─ Span1: CreateReview用例（12ms）
//	│  ├─ Span2: ReviewStore.Create（3ms）
//	│  └─ Span3: notifier.nats Publish（1ms）
//	└─ Span4: 响应序列化
//
// # 使用示例
//
//	shutdown, err := tracing.InitTracer("reviewrating", "localhost:4317")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
//
//	ctx, span := tracing.StartSpan(ctx, "reviewrating/mysql", "ReviewStore.Count")
//	defer span.End()
//
// # 注意事项
//
//  1. Span名使用操作名（ReviewStore.Count），实体ID放进属性而不是Span名
//  2. 未调用InitTracer时otel使用全局no-op Provider，StartSpan仍然可以安全调用
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数：
//   - serviceName: 服务名称（在Jaeger UI中显示）
//   - endpoint: OTLP gRPC端点（host:port，如localhost:4317）
//
// 返回：
//   - shutdown: 关闭函数（程序退出时调用，确保数据刷新）
//   - error: 初始化失败时返回错误
//
// 设计要点：
// 1. 使用OTLP协议（OpenTelemetry Protocol）而非Jaeger原生协议
//   - 优点：厂商中立，未来可无缝切换到Zipkin、Datadog
//   - 缺点：需要Jaeger 1.35+支持OTLP
//
// 2. 采样策略：
//   - AlwaysSample（100%采样）：适合开发/测试环境
//   - 生产环境建议使用TraceIDRatioBased（如1%采样）
//
// 3. 资源属性：
//   - service.name: 服务名称（必需，用于在Jaeger UI中分组）
//   - service.version: 服务版本（可选，便于区分不同版本的性能）
//
// 示例：
//
//	shutdown, err := tracing.InitTracer("reviewrating", cfg.Tracing.Endpoint)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	// 1. 创建OTLP gRPC Exporter
	// OTLP支持两种传输方式：
	// - gRPC（默认端口4317）：高性能，适合高吞吐场景
	// - HTTP（默认端口4318）：兼容性好，适合有防火墙限制的场景
	//
	// 注意：endpoint不包含协议前缀；连接是惰性的，Collector不可用不会导致启动失败
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（资源属性）
	// Resource描述产生遥测数据的实体（服务、主机、容器等）
	// 这些属性会附加到所有Span上，便于在Jaeger UI中筛选和分组
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			// service.name是必需属性，用于在Jaeger UI中标识服务
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	// TracerProvider是OpenTelemetry的核心组件，负责：
	// - 创建Tracer
	// - 管理Span的生命周期
	// - 应用采样策略
	// - 将Span批量发送到Exporter
	tp := sdktrace.NewTracerProvider(
		// 采样策略：AlwaysSample表示100%采样
		// 生产环境建议使用：
		// sdktrace.WithSampler(sdktrace.TraceIDRatioBased(0.01)) // 1%采样
		sdktrace.WithSampler(sdktrace.AlwaysSample()),

		// Span处理器：BatchSpanProcessor批量发送Span（性能优于SimpleSpanProcessor）
		// - 默认每2秒或512个Span发送一次
		// - 程序退出时调用shutdown()强制刷新剩余Span
		sdktrace.WithBatcher(exporter),

		// 资源属性
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider
	// 全局Provider的优点：
	// - 业务代码无需传递TracerProvider，直接使用otel.Tracer()获取
	// - 第三方库（HTTP、gRPC）自动使用全局Provider
	otel.SetTracerProvider(tp)

	// 5. 设置全局TextMapPropagator（上下文传播器）
	// Propagator负责在跨服务调用时传递TraceID/SpanID
	// - W3C Trace Context：标准的HTTP Header格式（traceparent、tracestate）
	// - Baggage：传递自定义键值对（如user_id、tenant_id）
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, // W3C Trace Context
			propagation.Baggage{},      // Baggage
		),
	)

	// 6. 返回关闭函数
	// shutdown确保所有Span被发送到Collector
	// 必须在程序退出前调用，否则可能丢失最后一批Span
	shutdown := func(ctx context.Context) error {
		// 设置5秒超时，防止shutdown阻塞过久
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个新的Span（便捷函数）
//
// 参数：
//   - ctx: 父Context（包含父Span信息）
//   - tracerName: Tracer名称（通常是服务名或模块名）
//   - spanName: Span名称（操作名称，如"ReviewStore.Create"）
//
// 返回：
//   - context.Context: 包含新Span的Context（传递给下游调用）
//   - trace.Span: Span对象（用于添加属性、记录错误、设置状态）
//
// 设计要点：
// 1. Span命名规范：
//   - 使用操作名：ReviewStore.Count、CreateReview
//   - 避免动态值：Count-book-42（❌），应使用属性：span.SetAttributes(attribute.String("reviewable", "book#42"))
//
// 2. Span层级：
//   - 根Span：第一个Span，没有父Span（如HTTP请求处理）
//   - 子Span：嵌套在根Span下（如数据库查询、RPC调用）
//
// 3. Context传递：
//   - 必须使用返回的ctx调用下游函数，否则无法构建调用树
//
// 示例：
//
//	func (s *ReviewStore) Count(ctx context.Context, f review.Filter) (int64, error) {
//	    ctx, span := tracing.StartSpan(ctx, tracerName, "ReviewStore.Count")
//	    defer span.End()
//	    ...
//	}
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	// 从全局Provider获取Tracer
	// tracerName用于在Jaeger UI中标识Span的来源（服务或模块）
	tracer := otel.Tracer(tracerName)

	// 创建Span
	// - 如果ctx包含父Span，新Span会自动成为子Span
	// - 如果ctx不包含父Span，新Span成为根Span
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
//
// 参数：
//   - ctx: 包含Span的Context
//
// 返回：
//   - string: TraceID的十六进制字符串（32位，如"4bf92f3577b34da6a3ce929d0e0e4736"）
//
// 使用场景：
// 在日志中记录TraceID，便于从日志快速定位到Jaeger追踪：
//
//	traceID := tracing.ExtractTraceID(ctx)
//	logger.Info("评价创建成功", zap.String("trace_id", traceID), zap.Uint("review_id", id))
//
// 然后在Jaeger UI搜索TraceID，查看完整的调用链路
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
//
// 参数：
//   - ctx: 包含Span的Context
//
// 返回：
//   - string: SpanID的十六进制字符串（16位，如"00f067aa0ba902b7"）
//
// 使用场景：
// 在分布式日志系统（如ELK）中关联Span：
//
//	spanID := tracing.ExtractSpanID(ctx)
//	logger.Info("评价创建成功",
//	    zap.String("trace_id", tracing.ExtractTraceID(ctx)),
//	    zap.String("span_id", spanID),
//	)
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}

// RecordError 在Span上记录错误并标记失败（err为nil时不做任何事）
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
