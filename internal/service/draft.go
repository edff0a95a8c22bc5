package service

import (
	"context"
	"errors"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	draftCacheTTL    = 6 * time.Hour
	lastDraftTimeTTL = 72 * time.Hour
)

// DraftService 负责在线会话的草稿：读取恢复副本，按操作频率周期性保存。
type DraftService struct {
	draftRepo repository.DraftRepository // DB 操作
	stateRepo repository.StateRepository // Redis 缓存和计数器
	now       func() time.Time
}

// NewDraftService 创建 DraftService 实例。
func NewDraftService(draftRepo repository.DraftRepository, stateRepo repository.StateRepository) *DraftService {
	if draftRepo == nil {
		panic("DraftRepository cannot be nil for DraftService")
	}
	if stateRepo == nil {
		panic("StateRepository cannot be nil for DraftService")
	}
	return &DraftService{draftRepo: draftRepo, stateRepo: stateRepo, now: time.Now}
}

// GetDraftForClient 获取用户最近的草稿。
// 缓存优先，数据库备用，回填缓存；都没有时返回空画作和版本 0。
func (s *DraftService) GetDraftForClient(ctx context.Context, userID uint) (*domain.Draft, domain.Drawing, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "operation": "GetDraftForClient"})

	cached, err := s.stateRepo.GetDraftCache(ctx, userID)
	switch {
	case err == nil && cached != nil:
		drawing, parseErr := cached.ParseDrawing()
		if parseErr == nil {
			logCtx.Debug("Draft cache hit")
			return cached, drawing, nil
		}
		logCtx.WithError(parseErr).Warn("Cached draft is corrupt, falling back to database")
	case errors.Is(err, repository.ErrNotFound):
		logCtx.Debug("Draft cache miss")
	case err != nil:
		logCtx.WithError(err).Warn("Failed to get draft from cache")
	}

	dbDraft, err := s.draftRepo.GetLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logCtx.Debug("No draft found in database, returning empty drawing")
			return &domain.Draft{UserID: userID, Version: 0}, domain.Drawing{}, nil
		}
		logCtx.WithError(err).Error("Failed to get latest draft from database")
		return nil, domain.Drawing{}, ErrInternalServer
	}

	drawing, err := dbDraft.ParseDrawing()
	if err != nil {
		logCtx.WithError(err).Error("Failed to parse draft from database")
		return nil, domain.Drawing{}, ErrInternalServer
	}

	// 异步回填缓存
	go func(d *domain.Draft) {
		if err := s.stateRepo.SetDraftCache(context.Background(), d.UserID, d, draftCacheTTL); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": d.UserID, "version": d.Version}).WithError(err).Warn("Failed to warm draft cache after DB load")
		}
	}(dbDraft)

	return dbDraft, drawing, nil
}

// RecordOp 记录一次会话变更，用于计算保存间隔。
func (s *DraftService) RecordOp(ctx context.Context, userID uint) {
	if _, err := s.stateRepo.IncrementOpCount(ctx, userID); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Failed to increment op count")
	}
}

// Checkpoint 读取上次保存时间，必要时保存草稿并记录新的时间。
func (s *DraftService) Checkpoint(ctx context.Context, userID uint, drawing domain.Drawing, version uint) (bool, error) {
	last, err := s.stateRepo.GetLastDraftTime(ctx, userID)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Failed to read last draft time, treating as never saved")
		last = time.Time{}
	}
	newLast, err := s.CheckAndSaveDraft(ctx, userID, drawing, version, last)
	if err != nil {
		return false, err
	}
	if newLast.Equal(last) {
		return false, nil
	}
	if err := s.stateRepo.SetLastDraftTime(ctx, userID, newLast, lastDraftTimeTTL); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Warn("Failed to store last draft time")
	}
	return true, nil
}

// Flush 在会话关闭时调用，立即保存草稿，不看操作计数和间隔。
// 缓存里已经是这个版本或更新的版本时跳过。
func (s *DraftService) Flush(ctx context.Context, userID uint, drawing domain.Drawing, version uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "version": version, "operation": "Flush"})

	cached, err := s.stateRepo.GetDraftCache(ctx, userID)
	if err == nil && cached != nil && cached.Version >= version {
		logCtx.Debug("Draft already saved at this version")
		return nil
	}

	now := s.now()
	if err := s.saveDraft(ctx, userID, drawing, version, now); err != nil {
		return err
	}
	if err := s.stateRepo.SetLastDraftTime(ctx, userID, now, lastDraftTimeTTL); err != nil {
		logCtx.WithError(err).Warn("Failed to store last draft time")
	}
	logCtx.Info("Draft flushed")
	return nil
}

// CheckAndSaveDraft 检查距上次保存是否已超过间隔，超过则保存。
// 返回新的保存时间，没有保存时原样返回 last。
func (s *DraftService) CheckAndSaveDraft(ctx context.Context, userID uint, drawing domain.Drawing, version uint, last time.Time) (time.Time, error) {
	logCtx := logrus.WithField("user_id", userID)

	opCount, err := s.stateRepo.GetOpCount(ctx, userID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to get op count since last draft")
		return last, ErrInternalServer
	}
	if opCount == 0 {
		// 上次保存后没有变更
		return last, nil
	}

	interval := calculateDraftInterval(int(opCount))
	now := s.now()
	if !shouldSaveDraft(now, last, interval) {
		logCtx.Debugf("Draft condition not met (last: %s, interval: %s, ops: %d)", last.Format(time.RFC3339), interval, opCount)
		return last, nil
	}

	if err := s.saveDraft(ctx, userID, drawing, version, now); err != nil {
		return last, err
	}

	logCtx.WithFields(logrus.Fields{"version": version, "ops": opCount}).Info("Draft saved")
	return now, nil
}

// saveDraft 写库、回填缓存并清零操作计数
func (s *DraftService) saveDraft(ctx context.Context, userID uint, drawing domain.Drawing, version uint, now time.Time) error {
	logCtx := logrus.WithField("user_id", userID)

	draft := &domain.Draft{UserID: userID, Version: version, CreatedAt: now.UTC()}
	if err := draft.SetDrawing(drawing); err != nil {
		logCtx.WithError(err).Error("Failed to encode draft")
		return ErrInternalServer
	}
	if err := s.draftRepo.Save(ctx, draft); err != nil {
		logCtx.WithError(err).Error("Failed to save draft to database")
		return ErrInternalServer
	}

	go func(d *domain.Draft) {
		if err := s.stateRepo.SetDraftCache(context.Background(), d.UserID, d, draftCacheTTL); err != nil {
			logrus.WithFields(logrus.Fields{"user_id": d.UserID, "version": d.Version}).WithError(err).Warn("Failed to update draft cache")
		}
	}(draft)

	if err := s.stateRepo.ResetOpCount(ctx, userID); err != nil {
		logCtx.WithError(err).Warn("Failed to reset op count")
	}
	return nil
}

func calculateDraftInterval(opCountSinceLast int) time.Duration {
	if opCountSinceLast > 100 {
		return 30 * time.Second
	} else if opCountSinceLast > 20 {
		return 2 * time.Minute
	}
	return 10 * time.Minute
}

func shouldSaveDraft(now, last time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= interval
}
