package review

import (
	"context"

	"github.com/xiebiao/reviewrating/internal/domain/book"
	"github.com/xiebiao/reviewrating/internal/domain/review"
	"github.com/xiebiao/reviewrating/internal/domain/user"
)

// QueryReviewsUseCase 评价查询用例(列表、最新、是否评价过)
// 学习要点:所有查询都先确认图书存在,不存在的图书返回404而不是空列表
type QueryReviewsUseCase struct {
	reviews     *review.Manager
	bookService book.Service
	userService user.Service
}

// NewQueryReviewsUseCase 创建评价查询用例
func NewQueryReviewsUseCase(reviews *review.Manager, bookService book.Service, userService user.Service) *QueryReviewsUseCase {
	return &QueryReviewsUseCase{
		reviews:     reviews,
		bookService: bookService,
		userService: userService,
	}
}

// List 图书的全部评价,最新在前
func (uc *QueryReviewsUseCase) List(ctx context.Context, bookID uint) ([]*ReviewItem, error) {
	b, err := uc.bookService.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	list, err := uc.reviews.For(b).List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*ReviewItem, len(list))
	for i, rv := range list {
		items[i] = toReviewItem(rv)
	}
	return items, nil
}

// Latest 最新一条评价,没有评价时返回(nil, nil)
func (uc *QueryReviewsUseCase) Latest(ctx context.Context, bookID uint) (*ReviewItem, error) {
	b, err := uc.bookService.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	rv, err := uc.reviews.For(b).Latest(ctx)
	if err != nil || rv == nil {
		return nil, err
	}
	return toReviewItem(rv), nil
}

// HasReviewed 用户是否评价过该书
// 用户不存在时返回false(按多态引用匹配,不需要加载用户)
func (uc *QueryReviewsUseCase) HasReviewed(ctx context.Context, bookID, userID uint) (bool, error) {
	b, err := uc.bookService.GetBookByID(ctx, bookID)
	if err != nil {
		return false, err
	}
	return uc.reviews.For(b).HasReviewed(ctx, &user.User{ID: userID})
}
