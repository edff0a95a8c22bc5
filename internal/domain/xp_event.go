package domain

import "time"

// XP 来源
const (
	XPSourceColorMix    = "color_mix"
	XPSourceConnectDots = "connect_dots"
	XPSourceTrace       = "trace"
	XPSourceArtClass    = "art_class"
	XPSourceMemoryDraw  = "memory_draw"
)

// XPEvent 是一条经验值流水记录，由后台任务写入。
type XPEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Source       string    `gorm:"size:50;not null" json:"source"`
	Amount       int       `gorm:"not null" json:"amount"`
	LevelAfter   int       `gorm:"not null" json:"level_after"`
	LevelsGained int       `gorm:"not null;default:0" json:"levels_gained"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
