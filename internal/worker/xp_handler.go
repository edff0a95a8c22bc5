package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
	"doodle-academy/internal/tasks"
)

// XPRecordHandler 把经验流水写入数据库
type XPRecordHandler struct {
	xpEventRepo repository.XPEventRepository
}

func NewXPRecordHandler(xpEventRepo repository.XPEventRepository) *XPRecordHandler {
	if xpEventRepo == nil {
		panic("XPEventRepository cannot be nil for XPRecordHandler")
	}
	return &XPRecordHandler{xpEventRepo: xpEventRepo}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *XPRecordHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	var payload tasks.XPRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal xp record payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.UserID == 0 || payload.Amount <= 0 {
		logCtx.WithField("payload", payload).Error("Rejecting malformed xp record")
		return fmt.Errorf("malformed xp record for user %d: %w", payload.UserID, asynq.SkipRetry)
	}

	event := &domain.XPEvent{
		UserID:       payload.UserID,
		Source:       payload.Source,
		Amount:       payload.Amount,
		LevelAfter:   payload.LevelAfter,
		LevelsGained: payload.LevelsGained,
		CreatedAt:    payload.OccurredAt,
	}
	if err := h.xpEventRepo.Save(ctx, event); err != nil {
		logCtx.WithError(err).WithField("user_id", payload.UserID).Error("Failed to save xp event")
		return fmt.Errorf("failed to save xp event for user %d: %w", payload.UserID, err)
	}

	logCtx.WithFields(logrus.Fields{"user_id": payload.UserID, "source": payload.Source, "amount": payload.Amount}).Debug("XP event recorded")
	return nil
}

// taskLogger 带上任务 ID 和重试次数
func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID, _ := asynq.GetTaskID(ctx)
	retry, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     retry,
		"max_retry": maxRetry,
	})
}
