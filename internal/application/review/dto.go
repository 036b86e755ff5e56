package review

import (
	"github.com/xiebiao/reviewrating/internal/domain/review"
)

// ReviewItem 评价DTO
// rating/title为null表示没有评分/标题
type ReviewItem struct {
	ID             uint     `json:"id"`
	Review         string   `json:"review"`
	Rating         *float64 `json:"rating"`
	Title          *string  `json:"title"`
	ReviewableType string   `json:"reviewable_type"`
	ReviewableID   uint     `json:"reviewable_id"`
	AuthorType     string   `json:"author_type"`
	AuthorID       uint     `json:"author_id"`
	CreatedAt      string   `json:"created_at"`
}

func toReviewItem(r *review.Review) *ReviewItem {
	return &ReviewItem{
		ID:             r.ID,
		Review:         r.Review,
		Rating:         r.Rating,
		Title:          r.Title,
		ReviewableType: r.Reviewable.Type,
		ReviewableID:   r.Reviewable.ID,
		AuthorType:     r.Author.Type,
		AuthorID:       r.Author.ID,
		CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// StatsResponse 评价汇总DTO
type StatsResponse struct {
	HasReview       bool     `json:"has_review"`
	HasRating       bool     `json:"has_rating"`
	NumberOfReviews int64    `json:"number_of_reviews"`
	NumberOfRatings int64    `json:"number_of_ratings"`
	AverageRating   *float64 `json:"average_rating"`
}
