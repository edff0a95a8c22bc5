package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
)

// GormProjectRepository 是 ProjectRepository 接口的 GORM 实现
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository 创建 GormProjectRepository 实例
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	if db == nil {
		panic("database connection cannot be nil for GormProjectRepository")
	}
	return &GormProjectRepository{db: db}
}

var _ repository.ProjectRepository = (*GormProjectRepository)(nil)

func (r *GormProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create project %s: %w", project.ID, err)
	}
	return nil
}

// Update 写回画作和名称，updated_at 由 GORM 自动刷新。
func (r *GormProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	result := r.db.WithContext(ctx).
		Model(project).
		Where("user_id = ?", project.UserID).
		Select("name", "drawing", "stroke_count", "updated_at").
		Updates(project)
	if result.Error != nil {
		return fmt.Errorf("gorm: update project %s: %w", project.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrProjectNotFound
	}
	return nil
}

func (r *GormProjectRepository) FindByID(ctx context.Context, userID uint, id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProjectNotFound
		}
		return nil, fmt.Errorf("gorm: find project %s: %w", id, err)
	}
	return &project, nil
}

// ListByUser 不读取 drawing 列，列表只需要索引信息。
func (r *GormProjectRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "name", "stroke_count", "created_at", "updated_at").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list projects for user %d: %w", userID, err)
	}
	return projects, nil
}

func (r *GormProjectRepository) Delete(ctx context.Context, userID uint, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Project{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete project %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrProjectNotFound
	}
	return nil
}
