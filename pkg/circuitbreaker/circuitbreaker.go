// Package circuitbreaker 熔断器
//
// 三种状态：
//
//	CLOSED ──(连续失败达到阈值)──▶ OPEN ──(Timeout到期)──▶ HALF_OPEN
//	   ▲                                                      │
//	   └──────────────(探测请求成功)──────────────────────────┘
//	                  (探测请求失败 → 回到OPEN)
//
// 在本服务中熔断器包在评价创建通知外面：消息中间件宕机时，
// 通知在几次失败后直接快速失败，不会让每次创建评价都等满通知超时。
//
// 使用示例：
//
//	cb := circuitbreaker.New("notifier-nats", circuitbreaker.Config{
//	    MaxRequests:      1,
//	    Interval:         time.Minute,
//	    Timeout:          30 * time.Second,
//	    FailureThreshold: 5,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return publisher.Publish(ctx, event)
//	})
//	if errors.Is(err, circuitbreaker.ErrOpenState) {
//	    // 快速失败，消息中间件暂不可用
//	}
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xiebiao/reviewrating/pkg/metrics"
)

// State 熔断器状态
type State int

const (
	// StateClosed 关闭状态（正常放行，统计失败）
	StateClosed State = iota

	// StateOpen 打开状态（快速失败，Timeout后转为HALF_OPEN）
	StateOpen

	// StateHalfOpen 半开状态（放行少量探测请求）
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许的探测请求数（0按1处理）
	MaxRequests uint32

	// Interval CLOSED状态的统计窗口，到期清零（0表示不清零）
	Interval time.Duration

	// Timeout OPEN状态持续时间
	Timeout time.Duration

	// FailureThreshold 连续失败多少次后熔断（ReadyToTrip为nil时使用，0按5处理）
	FailureThreshold uint32

	// ReadyToTrip 自定义熔断判断
	ReadyToTrip func(counts Counts) bool

	// Now 时钟（测试用）
	Now func() time.Time
}

// Counts 统计数据
type Counts struct {
	Requests             uint32 // 总请求数
	TotalSuccesses       uint32 // 总成功数
	TotalFailures        uint32 // 总失败数
	ConsecutiveSuccesses uint32 // 连续成功数
	ConsecutiveFailures  uint32 // 连续失败数
}

// FailureRate 失败率
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) reset() {
	*c = Counts{}
}

func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// ErrOpenState 熔断器打开（或半开状态探测名额已满）
var ErrOpenState = errors.New("circuit breaker is open")

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name        string
	maxRequests uint32
	interval    time.Duration
	timeout     time.Duration
	readyToTrip func(counts Counts) bool
	now         func() time.Time

	mu            sync.Mutex
	state         State
	generation    uint64 // 每次状态切换递增，丢弃旧周期请求的结果
	counts        Counts
	expiry        time.Time
	onStateChange func(name string, from State, to State)
}

// New 创建熔断器
func New(name string, cfg Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:        name,
		maxRequests: cfg.MaxRequests,
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		readyToTrip: cfg.ReadyToTrip,
		now:         cfg.Now,
		state:       StateClosed,
	}
	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.now == nil {
		cb.now = time.Now
	}
	if cb.readyToTrip == nil {
		threshold := cfg.FailureThreshold
		if threshold == 0 {
			threshold = 5
		}
		cb.readyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		}
	}
	if cb.interval > 0 {
		cb.expiry = cb.now().Add(cb.interval)
	}

	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(StateClosed))
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// OnStateChange 设置状态变化回调（在锁内调用，回调里不要再访问熔断器）
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute 在熔断器保护下执行fn
// ctx已取消时直接返回ctx.Err()，不计入失败
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	generation, err := cb.beforeRequest()
	if err != nil {
		cb.record("rejected")
		return err
	}

	err = fn(ctx)

	cb.afterRequest(generation, err == nil)
	if err != nil {
		cb.record("failure")
	} else {
		cb.record("success")
	}
	return err
}

func (cb *CircuitBreaker) record(result string) {
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": cb.name, "result": result})
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(cb.now())

	if state == StateOpen {
		return generation, ErrOpenState
	}
	if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, generation := cb.currentState(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.onSuccess()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.reset()

	switch state {
	case StateClosed:
		if cb.interval > 0 {
			cb.expiry = now.Add(cb.interval)
		} else {
			cb.expiry = time.Time{}
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": cb.name}, float64(state))
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.currentState(cb.now())
	return state
}

// Counts 当前统计数据
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}
