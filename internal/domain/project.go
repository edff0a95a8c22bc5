package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Project 是用户显式保存的作品。
type Project struct {
	ID          string         `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      uint           `gorm:"index;not null" json:"-"`
	Name        *string        `gorm:"size:191" json:"name,omitempty"`
	Drawing     datatypes.JSON `gorm:"not null" json:"-"`
	StrokeCount int            `gorm:"not null;default:0" json:"stroke_count"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"last_modified"`
}

// SetDrawing 序列化并替换作品内容
func (p *Project) SetDrawing(d Drawing) error {
	data, err := EncodeDrawing(d)
	if err != nil {
		return err
	}
	p.Drawing = datatypes.JSON(data)
	p.StrokeCount = d.Len()
	return nil
}

// ParseDrawing 反序列化作品内容
func (p *Project) ParseDrawing() (Drawing, error) {
	return DecodeDrawing([]byte(p.Drawing))
}

// ProjectSummary 是作品列表中的一行索引
type ProjectSummary struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name,omitempty"`
	StrokeCount  int       `json:"stroke_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:           p.ID,
		Name:         p.Name,
		StrokeCount:  p.StrokeCount,
		CreatedAt:    p.CreatedAt,
		LastModified: p.UpdatedAt,
	}
}
