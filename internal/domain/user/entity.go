package user

import (
	"time"
)

// User 用户实体（聚合根，评价作者）
// DDD设计说明：
// 1. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
// 2. 实现review.Entity接口，可以作为评价作者，也可以被评价
type User struct {
	ID        uint
	Email     string
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
func NewUser(email, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EntityID 实现review.Entity
func (u *User) EntityID() uint {
	return u.ID
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
