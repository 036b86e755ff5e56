package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/reviewrating/internal/application/user"
	"github.com/xiebiao/reviewrating/internal/interface/http/dto"
	"github.com/xiebiao/reviewrating/pkg/response"
)

// UserHandler 用户HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
// 3. 使用依赖注入，便于测试
type UserHandler struct {
	registerUseCase *appuser.RegisterReviewerUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(registerUseCase *appuser.RegisterReviewerUseCase) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
	}
}

// Register 注册评价作者
// @Summary      注册评价作者
// @Description  使用邮箱和昵称创建评价作者
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterReviewerRequest true "注册信息"
// @Success      200 {object} response.Response{data=dto.UserResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/v1/users [post]
func (h *UserHandler) Register(c *gin.Context) {
	// 1. 绑定并验证参数
	// 学习要点：Gin的ShouldBindJSON会自动校验binding tag
	var req dto.RegisterReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterReviewerRequest{
		Email:    req.Email,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 应用层DTO → HTTP层DTO
	response.Success(c, &dto.UserResponse{
		ID:        result.ID,
		Email:     result.Email,
		Nickname:  result.Nickname,
		CreatedAt: result.CreatedAt,
	})
}
