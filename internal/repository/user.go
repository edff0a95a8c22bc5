package repository

import (
	"context"

	"doodle-academy/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByUsername 根据用户名查找用户。
	// 如果用户不存在，返回 ErrNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID 根据用户 ID 查找用户。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Save 保存用户信息。ID 为 0 时创建，否则更新。
	Save(ctx context.Context, user *domain.User) error

	// UpdateProgress 只更新等级、当前经验和升级所需经验三列。
	UpdateProgress(ctx context.Context, userID uint, progress domain.UserProgress) error
}
