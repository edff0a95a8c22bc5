package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Draft 是在线画布会话的恢复副本，不会出现在作品列表里。
type Draft struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Version   uint           `gorm:"not null" json:"version"` // 生成草稿时的会话版本号
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// ParseDrawing 将 Data 字段解析为 Drawing。
func (d *Draft) ParseDrawing() (Drawing, error) {
	return DecodeDrawing([]byte(d.Data))
}

// SetDrawing 将 Drawing 序列化到 Data 字段。
func (d *Draft) SetDrawing(drawing Drawing) error {
	data, err := EncodeDrawing(drawing)
	if err != nil {
		return err
	}
	d.Data = datatypes.JSON(data)
	return nil
}
