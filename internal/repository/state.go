package repository

import (
	"context"
	"time"

	"doodle-academy/internal/domain"
)

// StateRepository 定义了与实时会话相关的易失状态，由 Redis 实现。
type StateRepository interface {
	// === Op Counters ===

	// IncrementOpCount 原子地增加用户会话的操作计数器并返回新值。
	IncrementOpCount(ctx context.Context, userID uint) (int64, error)

	// GetOpCount 读取操作计数器，不存在时为 0。
	GetOpCount(ctx context.Context, userID uint) (int64, error)

	// ResetOpCount 重置操作计数器（通常在保存草稿后调用）。
	ResetOpCount(ctx context.Context, userID uint) error

	// === Draft Caching ===

	// GetDraftCache 尝试从缓存中获取草稿。未命中返回 ErrNotFound。
	GetDraftCache(ctx context.Context, userID uint) (*domain.Draft, error)

	// SetDraftCache 将草稿存入缓存，ttl 为 0 表示不过期。
	SetDraftCache(ctx context.Context, userID uint, draft *domain.Draft, ttl time.Duration) error

	// GetLastDraftTime 获取上次保存草稿的时间，没有记录时返回零值。
	GetLastDraftTime(ctx context.Context, userID uint) (time.Time, error)

	// SetLastDraftTime 记录上次保存草稿的时间。
	SetLastDraftTime(ctx context.Context, userID uint, timestamp time.Time, ttl time.Duration) error

	// === Thumbnail Caching ===

	GetThumbnail(ctx context.Context, projectID string) ([]byte, error)
	SetThumbnail(ctx context.Context, projectID string, png []byte, ttl time.Duration) error
	DeleteThumbnail(ctx context.Context, projectID string) error

	// === Rate Limiting ===

	// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
	// 返回 true 表示超限。
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
