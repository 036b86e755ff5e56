package review

import (
	"time"
)

// Period 闭区间时间范围 [From, To]
// 边界上的评价同时属于相邻的两个区间
type Period struct {
	From time.Time
	To   time.Time
}

// Validate 校验时间范围
// 规则：
// 1. From和To必须同时给出
// 2. From不能晚于To
func (p Period) Validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return ErrInvalidDateRange
	}
	if p.From.After(p.To) {
		return ErrInvalidDateRange
	}
	return nil
}

// Contains 判断时间点是否落在区间内（含边界）
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

// StatsOption 统计查询的可选参数
type StatsOption func(*statsQuery)

type statsQuery struct {
	period *Period
	round  *int
}

// Between 限定创建时间范围 [from, to]
func Between(from, to time.Time) StatsOption {
	return func(q *statsQuery) {
		q.period = &Period{From: from, To: to}
	}
}

// Round 平均分保留的小数位数（仅对AverageRating生效）
func Round(digits int) StatsOption {
	return func(q *statsQuery) {
		q.round = &digits
	}
}

// buildStatsQuery 合并参数并在查询前完成校验
func buildStatsQuery(opts []StatsOption) (*statsQuery, error) {
	q := &statsQuery{}
	for _, opt := range opts {
		opt(q)
	}
	if q.period != nil {
		if err := q.period.Validate(); err != nil {
			return nil, err
		}
	}
	return q, nil
}
