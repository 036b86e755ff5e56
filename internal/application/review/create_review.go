package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/domain/user"
	"github.com/xiebiao/reviewrating/pkg/metrics"
	"github.com/xiebiao/reviewrating/pkg/tracing"
)

const tracerName = "reviewrating/application/review"

// StatsCache 评价汇总缓存端口（Redis实现，未启用时为nil）
// 设计说明：
// 1. Get同时返回该实体当前的缓存代数（generation）
// 2. Invalidate删除缓存并递增代数
// 3. Set只在代数仍等于读取时的值才写入，否则静默放弃
//    避免"读未命中→查库→并发写入并失效→回填旧值"把旧汇总写回缓存
type StatsCache interface {
	Get(ctx context.Context, ref review.Ref) (stats *review.Stats, generation int64, err error)
	Set(ctx context.Context, ref review.Ref, generation int64, stats *review.Stats) error
	Invalidate(ctx context.Context, ref review.Ref) error
}

// CreateReviewUseCase 发表评价用例
// 设计说明:
// 1. 先确认图书和作者存在,再交给评价领域服务写入
// 2. 不放进事务:通知在写入后立即触发,必须保证此时评价已经提交
// 3. 写入成功后删除该书的汇总缓存;缓存失败只记日志
type CreateReviewUseCase struct {
	reviews     *review.Manager
	bookService book.Service
	userService user.Service
	cache       StatsCache
	logger      *zap.Logger
}

// NewCreateReviewUseCase 创建发表评价用例
// cache可以为nil(未启用Redis)
func NewCreateReviewUseCase(reviews *review.Manager, bookService book.Service, userService user.Service, cache StatsCache, logger *zap.Logger) *CreateReviewUseCase {
	return &CreateReviewUseCase{
		reviews:     reviews,
		bookService: bookService,
		userService: userService,
		cache:       cache,
		logger:      logger,
	}
}

// CreateReviewRequest 发表评价请求
type CreateReviewRequest struct {
	BookID   uint
	AuthorID uint
	Review   string
	Rating   *float64
	Title    *string
}

// Execute 执行发表评价
func (uc *CreateReviewUseCase) Execute(ctx context.Context, req CreateReviewRequest) (*ReviewItem, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateReview")
	defer span.End()

	b, err := uc.bookService.GetBookByID(ctx, req.BookID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	author, err := uc.userService.GetUser(ctx, req.AuthorID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	var opts []review.CreateOption
	if req.Rating != nil {
		opts = append(opts, review.WithRating(*req.Rating))
	}
	if req.Title != nil {
		opts = append(opts, review.WithTitle(*req.Title))
	}

	rv, err := uc.reviews.For(b).Create(ctx, req.Review, author, opts...)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	metrics.IncReviewCreated(rv.Reviewable.Type)

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, rv.Reviewable); err != nil {
			uc.logger.Warn("删除评价汇总缓存失败", zap.String("reviewable", rv.Reviewable.String()), zap.Error(err))
		}
	}

	return toReviewItem(rv), nil
}

