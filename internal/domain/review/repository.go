package review

import (
	"context"
)

// Store 评价仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(GORM)
// 2. 所有读操作都排除软删除的评价
// 3. 计数、存在性、平均分都下推到数据库执行,不加载整张列表
type Store interface {
	// Create 写入评价并回填ID与时间戳
	Create(ctx context.Context, review *Review) error

	// List 查询被评价实体的全部评价,按ID倒序(最新在前)
	List(ctx context.Context, reviewable Ref) ([]*Review, error)

	// Latest 查询ID最大的评价,没有评价时返回(nil, nil)
	Latest(ctx context.Context, reviewable Ref) (*Review, error)

	// Count 按条件计数
	Count(ctx context.Context, filter Filter) (int64, error)

	// Exists 按条件判断是否存在(LIMIT 1)
	Exists(ctx context.Context, filter Filter) (bool, error)

	// AverageRating 按条件计算平均分,没有评分时返回nil
	AverageRating(ctx context.Context, filter Filter) (*float64, error)
}

// Filter 评价查询条件
// Reviewable必填;Author、Period为nil表示不限
type Filter struct {
	Reviewable Ref
	Author     *Ref
	RatedOnly  bool
	Period     *Period
}

// Notifier 评价创建通知端口
// 约定:
// 1. 每次成功创建评价恰好调用一次,参数为刚写入的完整评价
// 2. 返回的错误只会被记录,不会回滚评价,也不会返回给调用方
// 3. 重试由实现方自行负责
type Notifier interface {
	ReviewCreated(ctx context.Context, review *Review) error
}

// NotifierFunc 函数适配器
type NotifierFunc func(ctx context.Context, review *Review) error

// ReviewCreated 实现Notifier接口
func (f NotifierFunc) ReviewCreated(ctx context.Context, review *Review) error {
	return f(ctx, review)
}
