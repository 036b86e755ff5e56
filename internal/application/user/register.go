package user

import (
	"context"

	"github.com/xiebiao/reviewrating/internal/domain/user"
)

// RegisterReviewerUseCase 评价作者注册用例
// 设计说明：
// 1. Application层负责用例编排，协调领域服务
// 2. 作者只需要邮箱和昵称，没有密码、没有登录（认证由宿主系统负责）
type RegisterReviewerUseCase struct {
	userService user.Service
}

// NewRegisterReviewerUseCase 创建注册用例
func NewRegisterReviewerUseCase(userService user.Service) *RegisterReviewerUseCase {
	return &RegisterReviewerUseCase{
		userService: userService,
	}
}

// Execute 执行注册
// 返回：ReviewerResponse（应用层DTO，不是领域实体）
func (uc *RegisterReviewerUseCase) Execute(ctx context.Context, req RegisterReviewerRequest) (*ReviewerResponse, error) {
	u, err := uc.userService.RegisterReviewer(ctx, req.Email, req.Nickname)
	if err != nil {
		return nil, err
	}

	// 领域实体 → 应用层DTO
	return &ReviewerResponse{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// =========================================
// 应用层DTO（数据传输对象）
// =========================================

// RegisterReviewerRequest 注册请求
type RegisterReviewerRequest struct {
	Email    string
	Nickname string
}

// ReviewerResponse 注册响应
type ReviewerResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	CreatedAt string `json:"created_at"`
}
