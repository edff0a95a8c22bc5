package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
)

// GormColorRepository 是 ColorRepository 接口的 GORM 实现
type GormColorRepository struct {
	db *gorm.DB
}

// NewGormColorRepository 创建 GormColorRepository 实例
func NewGormColorRepository(db *gorm.DB) *GormColorRepository {
	if db == nil {
		panic("database connection cannot be nil for GormColorRepository")
	}
	return &GormColorRepository{db: db}
}

var _ repository.ColorRepository = (*GormColorRepository)(nil)

func (r *GormColorRepository) ListByUser(ctx context.Context, userID uint) ([]domain.ColorItem, error) {
	var items []domain.ColorItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list colors for user %d: %w", userID, err)
	}
	return items, nil
}

func (r *GormColorRepository) Save(ctx context.Context, item *domain.ColorItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save color %s for user %d: %w", item.Hex, item.UserID, err)
	}
	return nil
}

// SaveAll 在事务中批量插入
func (r *GormColorRepository) SaveAll(ctx context.Context, items []domain.ColorItem) error {
	if len(items) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(items, 50).Error
	})
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save %d colors: %w", len(items), err)
	}
	return nil
}

func (r *GormColorRepository) Delete(ctx context.Context, userID uint, id string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&domain.ColorItem{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete color %s for user %d: %w", id, userID, err)
	}
	return nil
}
