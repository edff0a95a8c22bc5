package repository

import (
	"context"

	"doodle-academy/internal/domain"
)

// DraftRepository 定义了草稿在数据库中的操作。
type DraftRepository interface {
	// GetLatest 获取用户最新的草稿。没有草稿时返回 ErrNotFound。
	GetLatest(ctx context.Context, userID uint) (*domain.Draft, error)

	// Save 保存一份新草稿
	Save(ctx context.Context, draft *domain.Draft) error
}
