package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/pkg/circuitbreaker"
)

func sampleReview() *review.Review {
	rating := 4.5
	title := "值得一读"
	return &review.Review{
		ID:         7,
		Review:     "翻译很好",
		Rating:     &rating,
		Title:      &title,
		Reviewable: review.Ref{Type: "book", ID: 3},
		Author:     review.Ref{Type: "user", ID: 11},
		CreatedAt:  time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

// fakeDriver 记录调用次数，按需返回错误
type fakeDriver struct {
	name  string
	err   error
	calls int
}

func (f *fakeDriver) Name() string { return f.name }

func (f *fakeDriver) ReviewCreated(context.Context, *review.Review) error {
	f.calls++
	return f.err
}

func TestNewReviewCreatedEvent(t *testing.T) {
	ev := NewReviewCreatedEvent(sampleReview())

	assert.Equal(t, EventReviewCreated, ev.Event)
	assert.Equal(t, uint(7), ev.ReviewID)
	assert.Equal(t, review.Ref{Type: "book", ID: 3}, ev.Reviewable())
	assert.Equal(t, review.Ref{Type: "user", ID: 11}, ev.Author())
	require.NotNil(t, ev.Rating)
	assert.Equal(t, 4.5, *ev.Rating)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev.ReviewID, decoded.ReviewID)
	assert.True(t, ev.CreatedAt.Equal(decoded.CreatedAt))
}

func TestNewReviewCreatedEvent_TextOnly(t *testing.T) {
	rv := sampleReview()
	rv.Rating = nil
	rv.Title = nil

	data, err := json.Marshal(NewReviewCreatedEvent(rv))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rating":null`)
	assert.Contains(t, string(data), `"title":null`)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"event":"order.created"}`))
	assert.Error(t, err)
}

func TestMulti_FanOutJoinsErrors(t *testing.T) {
	failing := &fakeDriver{name: "nats", err: errors.New("no servers available")}
	ok := &fakeDriver{name: "log"}
	m := NewMulti(failing, ok)

	err := m.ReviewCreated(context.Background(), sampleReview())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls, "前一个驱动失败不影响后续驱动")
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, NewMulti().ReviewCreated(context.Background(), sampleReview()))
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.ReviewCreated(context.Background(), sampleReview()))

	entries := logs.FilterMessage("评价已创建").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "book#3", fields["reviewable"])
	assert.Equal(t, "user#11", fields["author"])
	assert.Equal(t, 4.5, fields["rating"])
}

func TestWithBreaker_OpensAfterFailures(t *testing.T) {
	inner := &fakeDriver{name: "redis", err: errors.New("connection refused")}
	d := WithBreaker(inner, circuitbreaker.Config{FailureThreshold: 2, Timeout: time.Minute}, zap.NewNop())

	ctx := context.Background()
	assert.Error(t, d.ReviewCreated(ctx, sampleReview()))
	assert.Error(t, d.ReviewCreated(ctx, sampleReview()))

	err := d.ReviewCreated(ctx, sampleReview())
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.Equal(t, 2, inner.calls, "熔断后不再调用下游")
	assert.Equal(t, "redis", d.Name())
}

type fakeAMQP struct {
	routingKey string
	message    interface{}
	err        error
}

func (f *fakeAMQP) Publish(_ context.Context, routingKey string, message interface{}) error {
	f.routingKey = routingKey
	f.message = message
	return f.err
}

func TestRabbitMQNotifier(t *testing.T) {
	pub := &fakeAMQP{}
	n := NewRabbitMQNotifier(pub, "")

	require.NoError(t, n.ReviewCreated(context.Background(), sampleReview()))
	assert.Equal(t, EventReviewCreated, pub.routingKey)
	ev, ok := pub.message.(ReviewCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(7), ev.ReviewID)

	pub.err = errors.New("channel closed")
	assert.Error(t, n.ReviewCreated(context.Background(), sampleReview()))
}

type fakeNATS struct {
	msg *nats.Msg
	err error
}

func (f *fakeNATS) PublishMsg(msg *nats.Msg) error {
	f.msg = msg
	return f.err
}

func TestNATSNotifier_PropagatesTrace(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tracetest.NewSpanRecorder()))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	conn := &fakeNATS{}
	n := NewNATSNotifier(conn, "reviews.book")

	ctx, span := tp.Tracer("test").Start(context.Background(), "create-review")
	require.NoError(t, n.ReviewCreated(ctx, sampleReview()))
	span.End()

	require.NotNil(t, conn.msg)
	assert.Equal(t, "reviews.book", conn.msg.Subject)
	assert.NotEmpty(t, conn.msg.Header.Get("traceparent"))

	ev, err := DecodeEvent(conn.msg.Data)
	require.NoError(t, err)
	assert.Equal(t, span.SpanContext().TraceID().String(), ev.TraceID)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	n := NewNATSNotifier(&fakeNATS{err: nats.ErrConnectionClosed}, "")
	err := n.ReviewCreated(context.Background(), sampleReview())
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
}

func TestNATSHeaderCarrier(t *testing.T) {
	c := NATSHeaderCarrier(nats.Header{})
	c.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}

type fakeRedis struct {
	channel string
	payload interface{}
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload = message
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisNotifier(t *testing.T) {
	client := &fakeRedis{}
	n := NewRedisNotifier(client, "")

	require.NoError(t, n.ReviewCreated(context.Background(), sampleReview()))
	assert.Equal(t, "reviews.created", client.channel)

	data, ok := client.payload.([]byte)
	require.True(t, ok)
	ev, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, uint(3), ev.ReviewableID)

	client.err = errors.New("READONLY")
	assert.Error(t, n.ReviewCreated(context.Background(), sampleReview()))
}

func TestAMQPHandler(t *testing.T) {
	var got ReviewCreatedEvent
	h := AMQPHandler(func(_ context.Context, ev ReviewCreatedEvent) error {
		got = ev
		return nil
	}, zap.NewNop())

	data, err := json.Marshal(NewReviewCreatedEvent(sampleReview()))
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), EventReviewCreated, data))
	assert.Equal(t, uint(7), got.ReviewID)

	assert.NoError(t, h(context.Background(), EventReviewCreated, []byte("garbage")), "无法解析的消息直接丢弃")
}
