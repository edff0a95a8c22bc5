package repository

import (
	"context"

	"doodle-academy/internal/domain"
)

// XPEventRepository 是经验流水账
type XPEventRepository interface {
	Save(ctx context.Context, event *domain.XPEvent) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]domain.XPEvent, error)
}
