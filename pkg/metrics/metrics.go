// Package metrics 提供基于Prometheus的指标收集
//
// # 指标类型回顾
//
//   - Counter（计数器）：只增不减，如评价创建总数、HTTP请求总数
//   - Gauge（仪表盘）：可增可减的瞬时值，如正在处理的请求数、熔断器状态
//   - Histogram（直方图）：观测值分布，如评价统计查询耗时
//
// # 本服务暴露的指标
//
//	http_requests_total{method,path,status}            HTTP请求总数
//	http_request_duration_seconds{method,path}         HTTP请求耗时
//	http_requests_in_progress                          正在处理的HTTP请求数
//	reviews_created_total{reviewable_type}             评价创建总数
//	review_query_duration_seconds{operation}           评价仓储操作耗时
//	review_notifications_total{driver,result}          评价创建通知结果
//	circuit_breaker_state{name}                        熔断器状态
//	circuit_breaker_requests_total{name,result}        熔断器请求结果
//	messages_published_total{exchange,routing_key}    消息发布总数
//	messages_consumed_total{queue,result}              消息消费总数
//	message_processing_duration_seconds                消息处理耗时
//
// # 使用示例
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	n, err := store.Count(ctx, filter)
//	metrics.ObserveReviewQuery("count", start)
//
// # 注意事项
//
//  1. reviewable_type是有限集合（已注册的实体类型），可以作为标签；
//     实体ID、作者ID是高基数值，禁止作为标签
//  2. 所有便捷函数在InitMetrics之前调用都是空操作，
//     单元测试不需要为了指标初始化全局Registry
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// once 保证只注册一次（promauto重复注册会panic）
	once sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 评价业务指标

	// ReviewsCreatedTotal 评价创建总数（Counter）
	// 标签：reviewable_type（被评价实体类型标签）
	ReviewsCreatedTotal *prometheus.CounterVec

	// ReviewQueryDuration 评价仓储操作耗时（Histogram）
	// 标签：operation（create/list/latest/count/exists/average）
	ReviewQueryDuration *prometheus.HistogramVec

	// ReviewNotificationsTotal 评价创建通知结果（Counter）
	// 标签：driver（log/rabbitmq/nats/redis）、result（success/failure）
	ReviewNotificationsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数（Counter）
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时（Histogram）
	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics 初始化所有Prometheus指标
// 程序启动时调用一次；重复调用是安全的
func InitMetrics() {
	once.Do(register)
}

func register() {
	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 评价业务指标
	ReviewsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_created_total",
			Help: "评价创建总数",
		},
		[]string{"reviewable_type"},
	)

	ReviewQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "review_query_duration_seconds",
			Help: "评价仓储操作耗时（秒）",
			// 统计查询都是单条聚合SQL，正常在毫秒级
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)

	ReviewNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_notifications_total",
			Help: "评价创建通知结果",
		},
		[]string{"driver", "result"},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	if gauge == nil {
		return
	}
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}

// ObserveReviewQuery 记录一次评价仓储操作耗时
// 用法：defer metrics.ObserveReviewQuery("count", time.Now())
func ObserveReviewQuery(operation string, start time.Time) {
	ObserveHistogramVec(ReviewQueryDuration, map[string]string{"operation": operation}, time.Since(start).Seconds())
}

// IncReviewCreated 评价创建成功计数
func IncReviewCreated(reviewableType string) {
	IncCounterVec(ReviewsCreatedTotal, map[string]string{"reviewable_type": reviewableType})
}

// IncReviewNotification 评价通知结果计数
func IncReviewNotification(driver string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	IncCounterVec(ReviewNotificationsTotal, map[string]string{"driver": driver, "result": result})
}
