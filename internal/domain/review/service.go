package review

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultNotifyTimeout = 5 * time.Second

// Manager 评价领域服务
// 设计说明:
// 1. 持有仓储、解析器、通知端口,全部在构造时注入,运行期没有全局状态
// 2. For(entity)为单个被评价实体创建伴生对象Reviews,所有评价操作都挂在伴生对象上
// 3. 通知端口是尽力而为的:失败或panic只记录日志,不影响已写入的评价
type Manager struct {
	store         Store
	resolver      *Resolver
	notifier      Notifier
	logger        *zap.Logger
	now           func() time.Time
	notifyTimeout time.Duration
}

// Option Manager的可选配置
type Option func(*Manager)

// WithNotifier 设置评价创建通知
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithClock 设置时钟(测试中用于构造指定创建时间的评价)
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithNotifyTimeout 设置单次通知的超时时间
func WithNotifyTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.notifyTimeout = d
		}
	}
}

// NewManager 创建评价领域服务
func NewManager(store Store, resolver *Resolver, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		resolver:      resolver,
		logger:        zap.NewNop(),
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = NewResolver()
	}
	return m
}

// Resolver 返回解析器
func (m *Manager) Resolver() *Resolver {
	return m.resolver
}

// For 创建被评价实体的伴生对象
// entity为nil时伴生对象的所有查询都返回空结果,创建评价返回ErrInvalidReview
func (m *Manager) For(entity Entity) *Reviews {
	ref, _ := m.resolver.Ref(entity)
	return &Reviews{m: m, ref: ref}
}

// Reviews 单个被评价实体的评价伴生对象
type Reviews struct {
	m   *Manager
	ref Ref
}

// Ref 被评价实体的多态引用
func (r *Reviews) Ref() Ref {
	return r.ref
}

// List 全部评价,最新在前
func (r *Reviews) List(ctx context.Context) ([]*Review, error) {
	if r.ref.IsZero() {
		return []*Review{}, nil
	}
	return r.m.store.List(ctx, r.ref)
}

// Latest 最新一条评价,没有评价时返回(nil, nil)
func (r *Reviews) Latest(ctx context.Context) (*Review, error) {
	if r.ref.IsZero() {
		return nil, nil
	}
	return r.m.store.Latest(ctx, r.ref)
}

// Create 创建评价
// 业务规则:
// 1. 正文不能为空,作者必须存在
// 2. 评分只校验"是有限数",范围由宿主应用决定
// 3. 同一作者可以对同一实体多次评价,不去重
// 4. 写入成功后触发通知,通知失败不回滚、不返回错误
func (r *Reviews) Create(ctx context.Context, text string, author Entity, opts ...CreateOption) (*Review, error) {
	if r.ref.IsZero() {
		return nil, ErrInvalidReview.WithCause(fmt.Errorf("被评价实体为空"))
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidReview.WithCause(fmt.Errorf("评价正文为空"))
	}
	authorRef, ok := r.m.resolver.Ref(author)
	if !ok {
		return nil, ErrInvalidReview.WithCause(fmt.Errorf("作者为空"))
	}

	rv := &Review{
		Review:     text,
		Reviewable: r.ref,
		Author:     authorRef,
	}
	for _, opt := range opts {
		opt(rv)
	}
	if rv.Rating != nil && (math.IsNaN(*rv.Rating) || math.IsInf(*rv.Rating, 0)) {
		return nil, ErrInvalidReview.WithCause(fmt.Errorf("评分必须是有限数: %v", *rv.Rating))
	}

	now := r.m.now()
	rv.CreatedAt = now
	rv.UpdatedAt = now

	if err := r.m.store.Create(ctx, rv); err != nil {
		return nil, err
	}

	r.m.notify(ctx, rv.Clone())
	return rv, nil
}

// HasReview 是否有评价
func (r *Reviews) HasReview(ctx context.Context) (bool, error) {
	if r.ref.IsZero() {
		return false, nil
	}
	return r.m.store.Exists(ctx, Filter{Reviewable: r.ref})
}

// HasReviewed 指定作者是否评价过
// 作者按(类型标签, ID)精确匹配;author为nil时返回false
func (r *Reviews) HasReviewed(ctx context.Context, author Entity) (bool, error) {
	authorRef, ok := r.m.resolver.Ref(author)
	if !ok || r.ref.IsZero() {
		return false, nil
	}
	return r.m.store.Exists(ctx, Filter{Reviewable: r.ref, Author: &authorRef})
}

// HasRating 是否有带评分的评价
func (r *Reviews) HasRating(ctx context.Context) (bool, error) {
	if r.ref.IsZero() {
		return false, nil
	}
	return r.m.store.Exists(ctx, Filter{Reviewable: r.ref, RatedOnly: true})
}

// NumberOfReviews 评价数量
// 可选Between(from, to)限定创建时间,from晚于to返回ErrInvalidDateRange
func (r *Reviews) NumberOfReviews(ctx context.Context, opts ...StatsOption) (int64, error) {
	return r.count(ctx, false, opts)
}

// NumberOfRatings 带评分的评价数量,时间范围规则同NumberOfReviews
func (r *Reviews) NumberOfRatings(ctx context.Context, opts ...StatsOption) (int64, error) {
	return r.count(ctx, true, opts)
}

func (r *Reviews) count(ctx context.Context, ratedOnly bool, opts []StatsOption) (int64, error) {
	q, err := buildStatsQuery(opts)
	if err != nil {
		return 0, err
	}
	if r.ref.IsZero() {
		return 0, nil
	}
	return r.m.store.Count(ctx, Filter{Reviewable: r.ref, RatedOnly: ratedOnly, Period: q.period})
}

// AverageRating 平均分
// 学习要点:
// 1. 与NumberOfRatings使用完全相同的过滤条件(rating IS NOT NULL + 时间范围)
// 2. 均值由数据库计算;Round(n)在进程内做四舍五入(远离零),不传Round返回原始均值
// 3. 没有评分时返回nil,而不是0
func (r *Reviews) AverageRating(ctx context.Context, opts ...StatsOption) (*float64, error) {
	q, err := buildStatsQuery(opts)
	if err != nil {
		return nil, err
	}
	if r.ref.IsZero() {
		return nil, nil
	}

	avg, err := r.m.store.AverageRating(ctx, Filter{Reviewable: r.ref, RatedOnly: true, Period: q.period})
	if err != nil || avg == nil {
		return nil, err
	}
	if q.round != nil {
		v := RoundTo(*avg, *q.round)
		return &v, nil
	}
	return avg, nil
}

// Stats 评价汇总
// HasReview/HasRating不受时间范围影响，其余三项与对应的单项查询结果一致
type Stats struct {
	HasReview       bool
	HasRating       bool
	NumberOfReviews int64
	NumberOfRatings int64
	AverageRating   *float64
}

// Stats 一次取齐评价汇总（参数规则同AverageRating）
func (r *Reviews) Stats(ctx context.Context, opts ...StatsOption) (*Stats, error) {
	if _, err := buildStatsQuery(opts); err != nil {
		return nil, err
	}

	var (
		s   Stats
		err error
	)
	if s.HasReview, err = r.HasReview(ctx); err != nil {
		return nil, err
	}
	if s.HasRating, err = r.HasRating(ctx); err != nil {
		return nil, err
	}
	if s.NumberOfReviews, err = r.NumberOfReviews(ctx, opts...); err != nil {
		return nil, err
	}
	if s.NumberOfRatings, err = r.NumberOfRatings(ctx, opts...); err != nil {
		return nil, err
	}
	if s.AverageRating, err = r.AverageRating(ctx, opts...); err != nil {
		return nil, err
	}
	return &s, nil
}

// RoundTo 四舍五入到指定小数位(半数远离零)
// 4.6666 → 4.67(2位) / 4.667(3位)
// 位数过大时v*10^digits溢出,此时v的精度本来就不足digits位,原样返回
func RoundTo(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow10(digits)
	switch {
	case p == 0:
		return math.Copysign(0, v)
	case math.IsInf(p, 0) || math.IsInf(v*p, 0):
		return v
	}
	return math.Round(v*p) / p
}

// notify 触发评价创建通知
// 设计说明:
// 1. 通知使用独立的超时context,调用方取消请求不会中断已提交评价的通知
// 2. recover兜底,钩子里的panic不会冒泡到创建流程
func (m *Manager) notify(ctx context.Context, rv *Review) {
	if m.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.notifyTimeout)
	defer cancel()

	fields := []zap.Field{
		zap.Uint("review_id", rv.ID),
		zap.String("reviewable", rv.Reviewable.String()),
		zap.String("author", rv.Author.String()),
	}

	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("评价创建通知panic", append(fields, zap.Any("panic", p))...)
		}
	}()

	if err := m.notifier.ReviewCreated(ctx, rv); err != nil {
		m.logger.Warn("评价创建通知失败", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Debug("评价创建通知已发送", fields...)
}
