package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xiebiao/reviewrating/internal/domain/review"
)

// EventReviewCreated 事件名（同时作为RabbitMQ默认routing key、NATS默认subject）
const EventReviewCreated = "review.created"

// ReviewCreatedEvent 评价创建事件（跨进程传输的JSON载荷）
// 设计说明：
// 1. 只携带评价本身和两个多态引用，不内嵌被评价实体（消费方按需回查）
// 2. rating/title保持可空语义：null表示没有评分/标题
type ReviewCreatedEvent struct {
	Event          string    `json:"event"`
	ReviewID       uint      `json:"review_id"`
	ReviewableType string    `json:"reviewable_type"`
	ReviewableID   uint      `json:"reviewable_id"`
	AuthorType     string    `json:"author_type"`
	AuthorID       uint      `json:"author_id"`
	Rating         *float64  `json:"rating"`
	Title          *string   `json:"title"`
	Review         string    `json:"review"`
	CreatedAt      time.Time `json:"created_at"`
	TraceID        string    `json:"trace_id,omitempty"`
}

// NewReviewCreatedEvent 领域评价 → 事件
func NewReviewCreatedEvent(r *review.Review) ReviewCreatedEvent {
	return ReviewCreatedEvent{
		Event:          EventReviewCreated,
		ReviewID:       r.ID,
		ReviewableType: r.Reviewable.Type,
		ReviewableID:   r.Reviewable.ID,
		AuthorType:     r.Author.Type,
		AuthorID:       r.Author.ID,
		Rating:         r.Rating,
		Title:          r.Title,
		Review:         r.Review,
		CreatedAt:      r.CreatedAt,
	}
}

// Reviewable 被评价实体引用
func (e ReviewCreatedEvent) Reviewable() review.Ref {
	return review.Ref{Type: e.ReviewableType, ID: e.ReviewableID}
}

// Author 作者引用
func (e ReviewCreatedEvent) Author() review.Ref {
	return review.Ref{Type: e.AuthorType, ID: e.AuthorID}
}

// DecodeEvent 解析事件载荷
func DecodeEvent(body []byte) (ReviewCreatedEvent, error) {
	var ev ReviewCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("解析评价事件失败: %w", err)
	}
	if ev.Event != EventReviewCreated {
		return ev, fmt.Errorf("未知事件类型: %q", ev.Event)
	}
	return ev, nil
}
