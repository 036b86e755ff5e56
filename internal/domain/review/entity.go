package review

import (
	"fmt"
	"time"
)

// Entity 评价能力接口
// 设计说明：
// 1. 任何可以被评价（图书、商品、店铺）或可以撰写评价（用户、机构）的领域对象
//    只需要提供一个稳定的唯一标识
// 2. 宿主实体只依赖这个接口，不需要继承任何基类
// 3. 类型标签由Resolver根据实体的具体类型解析，实体本身不感知
type Entity interface {
	EntityID() uint
}

// Ref 多态引用（类型标签 + 标识）
// 一条评价记录通过两个Ref分别指向被评价实体和作者，
// 同一张评价表因此可以服务任意多种实体类型
type Ref struct {
	Type string
	ID   uint
}

// EntityID 实现Entity接口，Ref可以直接作为实体传入
func (r Ref) EntityID() uint {
	return r.ID
}

// IsZero 是否为空引用
func (r Ref) IsZero() bool {
	return r.Type == "" && r.ID == 0
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Type, r.ID)
}

// Review 评价实体
// DDD设计说明:
// 1. ID单调递增，"最新评价"即ID最大的那一条
// 2. Rating为nil表示"只有文字没有评分"，不是0分
// 3. 评价创建后不会被本系统修改，被评价实体与作者引用均不可变
type Review struct {
	ID         uint
	Review     string   // 评价正文（必填）
	Rating     *float64 // 评分（可选）
	Title      *string  // 标题（可选）
	Reviewable Ref      // 被评价实体
	Author     Ref      // 作者
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasRating 是否带评分
func (r *Review) HasRating() bool {
	return r.Rating != nil
}

// Clone 深拷贝
// 通知钩子拿到的是副本，钩子内部的修改不会影响调用方持有的评价
func (r *Review) Clone() *Review {
	c := *r
	if r.Rating != nil {
		v := *r.Rating
		c.Rating = &v
	}
	if r.Title != nil {
		v := *r.Title
		c.Title = &v
	}
	return &c
}

// CreateOption 创建评价的可选参数
type CreateOption func(*Review)

// WithRating 附带评分
func WithRating(rating float64) CreateOption {
	return func(r *Review) {
		r.Rating = &rating
	}
}

// WithTitle 附带标题
func WithTitle(title string) CreateOption {
	return func(r *Review) {
		r.Title = &title
	}
}
