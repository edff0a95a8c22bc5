package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/hub"
)

const checkpointTimeout = 30 * time.Second

// SessionSource 提供在线草稿会话的快照
type SessionSource interface {
	Snapshots(ctx context.Context) ([]hub.SessionSnapshot, error)
}

// DraftCheckpointer 按操作频率决定是否保存草稿
type DraftCheckpointer interface {
	Checkpoint(ctx context.Context, userID uint, drawing domain.Drawing, version uint) (bool, error)
}

// DraftCheckpointHandler 处理周期性草稿检查任务
type DraftCheckpointHandler struct {
	sessions SessionSource
	drafts   DraftCheckpointer
}

func NewDraftCheckpointHandler(sessions SessionSource, drafts DraftCheckpointer) *DraftCheckpointHandler {
	if sessions == nil {
		panic("SessionSource cannot be nil for DraftCheckpointHandler")
	}
	if drafts == nil {
		panic("DraftCheckpointer cannot be nil for DraftCheckpointHandler")
	}
	return &DraftCheckpointHandler{sessions: sessions, drafts: drafts}
}

// ProcessTask 单个用户保存失败不影响其他用户，任务本身总是成功。
func (h *DraftCheckpointHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	snapshots, err := h.sessions.Snapshots(ctx)
	if err != nil {
		// hub 已停止，下一个周期再说
		logCtx.WithError(err).Warn("Could not collect live sessions")
		return nil
	}
	if len(snapshots) == 0 {
		logCtx.Debug("No live draft sessions, skipping checkpoint")
		return nil
	}

	saved, failed := 0, 0
	for _, snap := range snapshots {
		checkCtx, cancel := context.WithTimeout(ctx, checkpointTimeout)
		ok, err := h.drafts.Checkpoint(checkCtx, snap.UserID, snap.Drawing, snap.Version)
		cancel()
		if err != nil {
			failed++
			logCtx.WithError(err).WithField("user_id", snap.UserID).Error("Draft checkpoint failed")
			continue
		}
		if ok {
			saved++
		}
	}

	logCtx.WithFields(logrus.Fields{
		"sessions": len(snapshots),
		"saved":    saved,
		"failed":   failed,
	}).Info("Draft checkpoint completed")
	return nil
}
