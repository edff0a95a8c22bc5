package domain

import "time"

// DefaultMaxXP 是新账号升级所需的经验值
const DefaultMaxXP = 100

// User 表示应用程序中的用户，进度三元组随用户记录一起保存。
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null"`
	Password  string    `gorm:"type:text;not null"` // bcrypt 哈希
	Email     string    `gorm:"type:varchar(191);index:idx_email"`
	Level     int       `gorm:"not null;default:0"`
	CurrentXP int       `gorm:"column:current_xp;not null;default:0"`
	MaxXP     int       `gorm:"column:max_xp;not null;default:100"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// UserProgress 是 (level, currentXP, maxXP) 三元组。
type UserProgress struct {
	Level     int `json:"level"`
	CurrentXP int `json:"current_xp"`
	MaxXP     int `json:"max_xp"`
}

// NewUserProgress 返回新账号的初始进度
func NewUserProgress() UserProgress {
	return UserProgress{Level: 0, CurrentXP: 0, MaxXP: DefaultMaxXP}
}

func (u *User) Progress() UserProgress {
	return UserProgress{Level: u.Level, CurrentXP: u.CurrentXP, MaxXP: u.MaxXP}
}

func (u *User) SetProgress(p UserProgress) {
	u.Level = p.Level
	u.CurrentXP = p.CurrentXP
	u.MaxXP = p.MaxXP
}
