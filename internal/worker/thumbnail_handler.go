package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"doodle-academy/internal/service"
	"doodle-academy/internal/tasks"
)

// ThumbnailRefresher 重新渲染并缓存作品缩略图
type ThumbnailRefresher interface {
	RefreshThumbnail(ctx context.Context, userID uint, id string) error
}

// ThumbnailHandler 处理作品保存后排队的缩略图任务
type ThumbnailHandler struct {
	projects ThumbnailRefresher
}

func NewThumbnailHandler(projects ThumbnailRefresher) *ThumbnailHandler {
	if projects == nil {
		panic("ThumbnailRefresher cannot be nil for ThumbnailHandler")
	}
	return &ThumbnailHandler{projects: projects}
}

func (h *ThumbnailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	var payload tasks.ProjectThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal thumbnail payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("project_id", payload.ProjectID)

	err := h.projects.RefreshThumbnail(ctx, payload.UserID, payload.ProjectID)
	switch {
	case err == nil:
		logCtx.Debug("Thumbnail refreshed")
		return nil
	case errors.Is(err, service.ErrProjectNotFound):
		// 作品在任务执行前已被删除
		logCtx.Info("Project gone, dropping thumbnail task")
		return fmt.Errorf("project %s not found: %w", payload.ProjectID, asynq.SkipRetry)
	default:
		logCtx.WithError(err).Warn("Thumbnail refresh failed")
		return fmt.Errorf("failed to refresh thumbnail for project %s: %w", payload.ProjectID, err)
	}
}
