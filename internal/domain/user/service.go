package user

import (
	"context"
	"regexp"
	"unicode/utf8"

	apperrors "github.com/xiebiao/reviewrating/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（格式校验）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// RegisterReviewer 注册评价作者
	RegisterReviewer(ctx context.Context, email, nickname string) (*User, error)

	// GetUser 根据ID获取用户
	GetUser(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterReviewer 注册评价作者
// 业务规则：
// 1. 邮箱格式校验
// 2. 昵称2-50个字符
// 3. 邮箱唯一性由数据库UNIQUE索引保证（Repository转换为ErrEmailDuplicate）
func (s *service) RegisterReviewer(ctx context.Context, email, nickname string) (*User, error) {
	if !emailPattern.MatchString(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}

	if n := utf8.RuneCountInString(nickname); n < 2 || n > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	}

	u := NewUser(email, nickname)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser 根据ID获取用户
func (s *service) GetUser(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
