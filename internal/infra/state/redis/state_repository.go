package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
)

// opCountTTL 让闲置会话的计数器自动过期
const opCountTTL = 1 * time.Hour

// RedisStateRepository 是 StateRepository 接口的 Redis 实现
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateRepository 创建 RedisStateRepository 实例
func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "da:"
	}
	return &RedisStateRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

var _ repository.StateRepository = (*RedisStateRepository)(nil)

// --- Key Generation Helpers ---
func (r *RedisStateRepository) opCountKey(userID uint) string {
	return fmt.Sprintf("%suser:%d:op_count", r.keyPrefix, userID)
}

func (r *RedisStateRepository) draftCacheKey(userID uint) string {
	return fmt.Sprintf("%suser:%d:draft", r.keyPrefix, userID)
}

func (r *RedisStateRepository) lastDraftTimeKey(userID uint) string {
	return fmt.Sprintf("%suser:%d:last_draft", r.keyPrefix, userID)
}

func (r *RedisStateRepository) thumbnailKey(projectID string) string {
	return fmt.Sprintf("%sproject:%s:thumb", r.keyPrefix, projectID)
}

func (r *RedisStateRepository) rateLimitKey(key string) string {
	return fmt.Sprintf("%srate:%s", r.keyPrefix, key)
}

// --- Op Counters ---

// IncrementOpCount 原子地增加计数并刷新过期时间
func (r *RedisStateRepository) IncrementOpCount(ctx context.Context, userID uint) (int64, error) {
	key := r.opCountKey(userID)
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, opCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis: failed to increment op count for user %d on key %s: %w", userID, key, err)
	}
	return incr.Val(), nil
}

func (r *RedisStateRepository) GetOpCount(ctx context.Context, userID uint) (int64, error) {
	key := r.opCountKey(userID)
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: failed to get op count for user %d from %s: %w", userID, key, err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: failed to parse op count '%s' for user %d: %w", val, userID, err)
	}
	return n, nil
}

// ResetOpCount 重置为 0 并保持过期
func (r *RedisStateRepository) ResetOpCount(ctx context.Context, userID uint) error {
	key := r.opCountKey(userID)
	if err := r.client.Set(ctx, key, "0", opCountTTL).Err(); err != nil {
		return fmt.Errorf("redis: failed to reset op count for user %d on key %s: %w", userID, key, err)
	}
	return nil
}

// --- Draft Caching ---

func (r *RedisStateRepository) GetDraftCache(ctx context.Context, userID uint) (*domain.Draft, error) {
	key := r.draftCacheKey(userID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis: failed to get draft cache for user %d from %s: %w", userID, key, err)
	}
	var draft domain.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal draft cache for user %d from %s: %w", userID, key, err)
	}
	return &draft, nil
}

// SetDraftCache ttl 为 0 表示永不过期
func (r *RedisStateRepository) SetDraftCache(ctx context.Context, userID uint, draft *domain.Draft, ttl time.Duration) error {
	key := r.draftCacheKey(userID)
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal draft for cache (user %d, version %d): %w", userID, draft.Version, err)
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set draft cache for user %d on key %s: %w", userID, key, err)
	}
	return nil
}

// GetLastDraftTime 存储的是 Unix 纳秒
func (r *RedisStateRepository) GetLastDraftTime(ctx context.Context, userID uint) (time.Time, error) {
	key := r.lastDraftTimeKey(userID)
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis: failed to get last draft time for user %d: %w", userID, err)
	}
	ns, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("redis: failed to parse last draft time '%s' for user %d: %w", val, userID, err)
	}
	return time.Unix(0, ns).UTC(), nil
}

func (r *RedisStateRepository) SetLastDraftTime(ctx context.Context, userID uint, timestamp time.Time, ttl time.Duration) error {
	key := r.lastDraftTimeKey(userID)
	if err := r.client.Set(ctx, key, strconv.FormatInt(timestamp.UnixNano(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set last draft time for user %d: %w", userID, err)
	}
	return nil
}

// --- Thumbnail Caching ---

func (r *RedisStateRepository) GetThumbnail(ctx context.Context, projectID string) ([]byte, error) {
	key := r.thumbnailKey(projectID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis: failed to get thumbnail for project %s: %w", projectID, err)
	}
	return raw, nil
}

func (r *RedisStateRepository) SetThumbnail(ctx context.Context, projectID string, png []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.thumbnailKey(projectID), png, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set thumbnail for project %s: %w", projectID, err)
	}
	return nil
}

func (r *RedisStateRepository) DeleteThumbnail(ctx context.Context, projectID string) error {
	if err := r.client.Del(ctx, r.thumbnailKey(projectID)).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete thumbnail for project %s: %w", projectID, err)
	}
	return nil
}

// --- Rate Limiting ---

// CheckRateLimit 固定窗口计数，首个请求时设置过期时间。
func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := r.rateLimitKey(key)
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to incr rate limit on key %s: %w", fullKey, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, fmt.Errorf("redis: failed to set rate limit window on key %s: %w", fullKey, err)
		}
	}
	return count > int64(limit), nil
}
