package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/reviewrating/internal/application/review"
	"github.com/xiebiao/reviewrating/internal/interface/http/dto"
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
	"github.com/xiebiao/reviewrating/pkg/response"
)

// ReviewHandler 图书评价HTTP处理器
// 说明：评价引擎本身与图书无关，这里把它挂在/books/:id/reviews下作为宿主应用的示例
type ReviewHandler struct {
	createUseCase *appreview.CreateReviewUseCase
	queryUseCase  *appreview.QueryReviewsUseCase
	statsUseCase  *appreview.ReviewStatsUseCase
}

// NewReviewHandler 创建评价处理器
func NewReviewHandler(
	createUseCase *appreview.CreateReviewUseCase,
	queryUseCase *appreview.QueryReviewsUseCase,
	statsUseCase *appreview.ReviewStatsUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createUseCase: createUseCase,
		queryUseCase:  queryUseCase,
		statsUseCase:  statsUseCase,
	}
}

// CreateReview 发表评价
// @Summary      发表评价
// @Description  作者对图书发表评价，评分和标题可选；同一作者可以多次评价
// @Tags         评价
// @Accept       json
// @Produce      json
// @Param        id      path int                     true "图书ID"
// @Param        request body dto.CreateReviewRequest true "评价内容"
// @Success      200 {object} response.Response{data=dto.ReviewResponse}
// @Failure      400 {object} response.Response "参数错误或评价内容非法"
// @Failure      404 {object} response.Response "图书或作者不存在"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appreview.CreateReviewRequest{
		BookID:   bookID,
		AuthorID: req.AuthorID,
		Review:   req.Review,
		Rating:   req.Rating,
		Title:    req.Title,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toReviewResponse(result))
}

// ListReviews 图书的全部评价
// @Summary      评价列表
// @Description  最新在前
// @Tags         评价
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]dto.ReviewResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.queryUseCase.List(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ReviewResponse, len(items))
	for i, item := range items {
		list[i] = toReviewResponse(item)
	}
	response.Success(c, list)
}

// LatestReview 最新一条评价
// @Summary      最新评价
// @Description  没有评价时data为null
// @Tags         评价
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.ReviewResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews/latest [get]
func (h *ReviewHandler) LatestReview(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	item, err := h.queryUseCase.Latest(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if item == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, toReviewResponse(item))
}

// ReviewStats 评价汇总
// @Summary      评价汇总
// @Description  评价数、评分数、平均分；from/to(RFC3339)限定创建时间，必须同时给出；round为平均分保留的小数位
// @Tags         评价
// @Produce      json
// @Param        id    path  int    true  "图书ID"
// @Param        from  query string false "开始时间(含)"
// @Param        to    query string false "结束时间(含)"
// @Param        round query int    false "平均分小数位(0-10)"
// @Success      200 {object} response.Response{data=dto.ReviewStatsResponse}
// @Failure      400 {object} response.Response "时间范围非法"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews/stats [get]
func (h *ReviewHandler) ReviewStats(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	from, err := parseTime(req.From)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: from必须是RFC3339时间")
		return
	}
	to, err := parseTime(req.To)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: to必须是RFC3339时间")
		return
	}

	result, err := h.statsUseCase.Execute(c.Request.Context(), appreview.ReviewStatsRequest{
		BookID: bookID,
		From:   from,
		To:     to,
		Round:  req.Round,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ReviewStatsResponse{
		HasReview:       result.HasReview,
		HasRating:       result.HasRating,
		NumberOfReviews: result.NumberOfReviews,
		NumberOfRatings: result.NumberOfRatings,
		AverageRating:   result.AverageRating,
	})
}

// HasReviewed 用户是否评价过
// @Summary      是否评价过
// @Tags         评价
// @Produce      json
// @Param        id      path int true "图书ID"
// @Param        user_id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.HasReviewedResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/reviews/authors/{user_id} [get]
func (h *ReviewHandler) HasReviewed(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	has, err := h.queryUseCase.HasReviewed(c.Request.Context(), bookID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.HasReviewedResponse{
		BookID:      bookID,
		UserID:      userID,
		HasReviewed: has,
	})
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toReviewResponse(item *appreview.ReviewItem) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		ID:             item.ID,
		Review:         item.Review,
		Rating:         item.Rating,
		Title:          item.Title,
		ReviewableType: item.ReviewableType,
		ReviewableID:   item.ReviewableID,
		AuthorType:     item.AuthorType,
		AuthorID:       item.AuthorID,
		CreatedAt:      item.CreatedAt,
	}
}
