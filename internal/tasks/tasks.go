package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 定义任务类型常量
const (
	TypeXPRecord        = "xp:record"         // 经验流水落库
	TypeProjectThumb    = "project:thumbnail" // 作品缩略图渲染
	TypeDraftCheckpoint = "draft:checkpoint"  // 周期性草稿检查
)

// 队列名称
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// XPRecordPayload 是一条经验流水
type XPRecordPayload struct {
	UserID       uint      `json:"user_id"`
	Source       string    `json:"source"`
	Amount       int       `json:"amount"`
	LevelAfter   int       `json:"level_after"`
	LevelsGained int       `json:"levels_gained"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ProjectThumbnailPayload 指明要重新渲染缩略图的作品
type ProjectThumbnailPayload struct {
	UserID    uint   `json:"user_id"`
	ProjectID string `json:"project_id"`
}

// NewXPRecordTask 创建经验流水任务
func NewXPRecordTask(p XPRecordPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeXPRecord, payload, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewProjectThumbnailTask 创建缩略图任务。同一作品短时间内多次保存只保留一个任务。
func NewProjectThumbnailTask(p ProjectThumbnailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProjectThumb, payload,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(3),
		asynq.Unique(30*time.Second),
	), nil
}

// NewDraftCheckpointTask 创建周期性草稿检查任务，没有 payload
func NewDraftCheckpointTask() *asynq.Task {
	return asynq.NewTask(TypeDraftCheckpoint, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(0))
}
