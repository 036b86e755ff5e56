package review

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
)

// maxRoundDigits 平均分最多保留的小数位
const maxRoundDigits = 10

// ReviewStatsUseCase 评价汇总用例
// 设计说明:
// 1. 不带时间范围的汇总走缓存(缓存未启用时直接查库)
// 2. 缓存中保存原始均值,取整在返回前进行,不同round参数共用一份缓存
// 3. from/to必须同时给出,只给一端返回ErrInvalidDateRange
type ReviewStatsUseCase struct {
	reviews     *review.Manager
	bookService book.Service
	cache       StatsCache
	logger      *zap.Logger
}

// NewReviewStatsUseCase 创建评价汇总用例
func NewReviewStatsUseCase(reviews *review.Manager, bookService book.Service, cache StatsCache, logger *zap.Logger) *ReviewStatsUseCase {
	return &ReviewStatsUseCase{
		reviews:     reviews,
		bookService: bookService,
		cache:       cache,
		logger:      logger,
	}
}

// ReviewStatsRequest 汇总请求
type ReviewStatsRequest struct {
	BookID uint
	From   *time.Time
	To     *time.Time
	Round  *int
}

// Execute 执行汇总查询
func (uc *ReviewStatsUseCase) Execute(ctx context.Context, req ReviewStatsRequest) (*StatsResponse, error) {
	if (req.From == nil) != (req.To == nil) {
		return nil, review.ErrInvalidDateRange
	}
	if req.Round != nil && (*req.Round < 0 || *req.Round > maxRoundDigits) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "round取值范围为0-10")
	}

	b, err := uc.bookService.GetBookByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	reviews := uc.reviews.For(b)

	var stats *review.Stats
	if req.From != nil {
		stats, err = reviews.Stats(ctx, review.Between(*req.From, *req.To))
	} else {
		stats, err = uc.cachedStats(ctx, reviews)
	}
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{
		HasReview:       stats.HasReview,
		HasRating:       stats.HasRating,
		NumberOfReviews: stats.NumberOfReviews,
		NumberOfRatings: stats.NumberOfRatings,
		AverageRating:   stats.AverageRating,
	}
	if resp.AverageRating != nil && req.Round != nil {
		v := review.RoundTo(*resp.AverageRating, *req.Round)
		resp.AverageRating = &v
	}
	return resp, nil
}

// cachedStats 先读缓存,未命中查库后按读取时的代数回填
// 读缓存失败时拿不到代数,只查库不回填
func (uc *ReviewStatsUseCase) cachedStats(ctx context.Context, reviews *review.Reviews) (*review.Stats, error) {
	if uc.cache == nil {
		return reviews.Stats(ctx)
	}

	ref := reviews.Ref()
	cached, generation, cacheErr := uc.cache.Get(ctx, ref)
	if cacheErr != nil {
		uc.logger.Warn("读取评价汇总缓存失败", zap.String("reviewable", ref.String()), zap.Error(cacheErr))
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := reviews.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if cacheErr == nil {
		if err := uc.cache.Set(ctx, ref, generation, stats); err != nil {
			uc.logger.Warn("写入评价汇总缓存失败", zap.String("reviewable", ref.String()), zap.Error(err))
		}
	}
	return stats, nil
}
