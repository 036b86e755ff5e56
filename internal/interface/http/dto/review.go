package dto

// CreateReviewRequest HTTP发表评价请求
// rating、title可选；rating只要求是数字，范围由业务方约定
type CreateReviewRequest struct {
	Review   string   `json:"review" binding:"required,max=10000" example:"翻译流畅，例子很实用"`
	AuthorID uint     `json:"author_id" binding:"required" example:"1"`
	Rating   *float64 `json:"rating" example:"4.5"`
	Title    *string  `json:"title" binding:"omitempty,max=200" example:"值得一读"`
}

// ReviewResponse HTTP评价响应
type ReviewResponse struct {
	ID             uint     `json:"id" example:"1"`
	Review         string   `json:"review" example:"翻译流畅，例子很实用"`
	Rating         *float64 `json:"rating" example:"4.5"`
	Title          *string  `json:"title" example:"值得一读"`
	ReviewableType string   `json:"reviewable_type" example:"book"`
	ReviewableID   uint     `json:"reviewable_id" example:"1"`
	AuthorType     string   `json:"author_type" example:"user"`
	AuthorID       uint     `json:"author_id" example:"1"`
	CreatedAt      string   `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ReviewStatsRequest HTTP评价汇总请求
// from/to格式RFC3339，必须同时给出
type ReviewStatsRequest struct {
	From  string `form:"from" example:"2024-01-01T00:00:00Z"`
	To    string `form:"to" example:"2024-12-31T23:59:59Z"`
	Round *int   `form:"round" binding:"omitempty,min=0,max=10" example:"2"`
}

// ReviewStatsResponse HTTP评价汇总响应
type ReviewStatsResponse struct {
	HasReview       bool     `json:"has_review" example:"true"`
	HasRating       bool     `json:"has_rating" example:"true"`
	NumberOfReviews int64    `json:"number_of_reviews" example:"4"`
	NumberOfRatings int64    `json:"number_of_ratings" example:"3"`
	AverageRating   *float64 `json:"average_rating" example:"4.67"`
}

// HasReviewedResponse HTTP是否评价过响应
type HasReviewedResponse struct {
	BookID      uint `json:"book_id" example:"1"`
	UserID      uint `json:"user_id" example:"1"`
	HasReviewed bool `json:"has_reviewed" example:"true"`
}
