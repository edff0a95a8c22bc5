package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
)

// GormXPEventRepository 是 XPEventRepository 接口的 GORM 实现
type GormXPEventRepository struct {
	db *gorm.DB
}

// NewGormXPEventRepository 创建 GormXPEventRepository 实例
func NewGormXPEventRepository(db *gorm.DB) *GormXPEventRepository {
	if db == nil {
		panic("database connection cannot be nil for GormXPEventRepository")
	}
	return &GormXPEventRepository{db: db}
}

var _ repository.XPEventRepository = (*GormXPEventRepository)(nil)

func (r *GormXPEventRepository) Save(ctx context.Context, event *domain.XPEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("gorm: save xp event (user %d, source %s): %w", event.UserID, event.Source, err)
	}
	return nil
}

// ListByUser 按时间倒序返回最近的流水
func (r *GormXPEventRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]domain.XPEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []domain.XPEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list xp events for user %d: %w", userID, err)
	}
	return events, nil
}
