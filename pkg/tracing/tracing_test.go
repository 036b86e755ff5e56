package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useRecorder 安装内存Span记录器，测试结束后恢复原Provider
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

// TestInitTracer Collector不可用时初始化也应成功（gRPC连接是惰性的）
func TestInitTracer(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	shutdown, err := InitTracer("reviewrating-test", "localhost:4317")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := StartSpan(context.Background(), "reviewrating-test", "StatsLookup")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	_ = shutdown(context.Background())
}

// TestStartSpan 子Span继承TraceID并拥有不同的SpanID
func TestStartSpan(t *testing.T) {
	rec := useRecorder(t)

	ctx, root := StartSpan(context.Background(), "reviewrating-test", "CreateReview")
	_, child := StartSpan(ctx, "reviewrating-test", "ReviewStore.Create")
	child.End()
	root.End()

	assert.Equal(t, root.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.NotEqual(t, root.SpanContext().SpanID(), child.SpanContext().SpanID())

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "ReviewStore.Create", ended[0].Name())
	assert.Equal(t, root.SpanContext().SpanID(), ended[0].Parent().SpanID())
}

// TestRecordError 错误写入Span并标记失败状态
func TestRecordError(t *testing.T) {
	rec := useRecorder(t)

	_, span := StartSpan(context.Background(), "reviewrating-test", "Failing")
	RecordError(span, errors.New("数据库不可用"))
	span.End()

	_, ok := StartSpan(context.Background(), "reviewrating-test", "Succeeding")
	RecordError(ok, nil)
	ok.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Events(), 1)
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

// TestExtractIDs 从Context提取TraceID/SpanID
func TestExtractIDs(t *testing.T) {
	useRecorder(t)

	t.Run("有效Span", func(t *testing.T) {
		ctx, span := StartSpan(context.Background(), "reviewrating-test", "Extract")
		defer span.End()

		assert.Len(t, ExtractTraceID(ctx), 32)
		assert.Len(t, ExtractSpanID(ctx), 16)
	})

	t.Run("无Span", func(t *testing.T) {
		assert.Empty(t, ExtractTraceID(context.Background()))
		assert.Empty(t, ExtractSpanID(context.Background()))
	})
}
