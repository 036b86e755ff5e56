package review

import (
	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
)

// 评价领域错误定义
var (
	// ErrInvalidDateRange 统计时间范围非法（from晚于to，或只给了一端）
	ErrInvalidDateRange = apperrors.New(apperrors.ErrCodeInvalidDateRange, "开始时间不能晚于结束时间")

	// ErrInvalidReviewModel 配置的评价模型不满足评价实体约定（启动期配置错误）
	ErrInvalidReviewModel = apperrors.New(apperrors.ErrCodeInvalidReviewModel, "评价模型配置非法")

	// ErrInvalidReview 评价内容非法（缺少作者、正文为空、评分不是有限数）
	ErrInvalidReview = apperrors.New(apperrors.ErrCodeInvalidReview, "评价内容非法")
)
