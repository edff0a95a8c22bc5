package repository

import (
	"context"

	"doodle-academy/internal/domain"
)

// ProjectRepository 管理用户保存的作品。所有查询都限定在 userID 之内，
// 不属于该用户的作品按不存在处理。
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, userID uint, id string) (*domain.Project, error)
	// ListByUser 按最后修改时间倒序返回作品，不加载画作内容。
	ListByUser(ctx context.Context, userID uint) ([]domain.Project, error)
	Delete(ctx context.Context, userID uint, id string) error
}
