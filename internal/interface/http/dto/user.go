package dto

// RegisterReviewerRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag
type RegisterReviewerRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"读者"`
}

// UserResponse 用户响应
type UserResponse struct {
	ID        uint   `json:"id" example:"1"`
	Email     string `json:"email" example:"reader@example.com"`
	Nickname  string `json:"nickname" example:"读者"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
}
