package service

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// TaskEnqueuer 是 asynq.Client 的子集，方便在测试中替换。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// enqueue 投递任务，失败只记录日志。重复的唯一任务不算失败。
func enqueue(ctx context.Context, q TaskEnqueuer, task *asynq.Task, logCtx *logrus.Entry) {
	info, err := q.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			logCtx.WithField("task_type", task.Type()).Debug("Task already queued")
			return
		}
		logCtx.WithError(err).WithField("task_type", task.Type()).Warn("Failed to enqueue task")
		return
	}
	if info != nil {
		logCtx.WithFields(logrus.Fields{"task_id": info.ID, "task_type": task.Type()}).Debug("Task enqueued")
	}
}
