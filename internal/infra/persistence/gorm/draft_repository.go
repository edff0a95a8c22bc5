package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
)

// GormDraftRepository 是 DraftRepository 接口的 GORM 实现
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository 创建 GormDraftRepository 实例
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	if db == nil {
		panic("database connection cannot be nil for GormDraftRepository")
	}
	return &GormDraftRepository{db: db}
}

var _ repository.DraftRepository = (*GormDraftRepository)(nil)

// GetLatest 按创建时间降序取第一条
func (r *GormDraftRepository) GetLatest(ctx context.Context, userID uint) (*domain.Draft, error) {
	var draft domain.Draft
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDraftNotFound
		}
		return nil, fmt.Errorf("gorm: failed to get latest draft for user %d: %w", userID, err)
	}
	return &draft, nil
}

// Save 草稿只追加，不更新旧记录
func (r *GormDraftRepository) Save(ctx context.Context, draft *domain.Draft) error {
	if err := r.db.WithContext(ctx).Create(draft).Error; err != nil {
		return fmt.Errorf("gorm: failed to save draft (user %d, version %d): %w", draft.UserID, draft.Version, err)
	}
	return nil
}
