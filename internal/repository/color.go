package repository

import (
	"context"

	"doodle-academy/internal/domain"
)

// ColorRepository 存储用户已解锁的颜色
type ColorRepository interface {
	// ListByUser 按 Position 升序返回调色板
	ListByUser(ctx context.Context, userID uint) ([]domain.ColorItem, error)
	// Save 追加一个颜色，同一用户同一 hex 重复写入返回 ErrDuplicateEntry
	Save(ctx context.Context, item *domain.ColorItem) error
	// SaveAll 在一个事务里写入整组颜色，用于初始调色板
	SaveAll(ctx context.Context, items []domain.ColorItem) error
	// Delete 删除用户的一个颜色，不存在时不报错
	Delete(ctx context.Context, userID uint, id string) error
}
