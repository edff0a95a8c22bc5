package domain

import (
	"fmt"
	"strings"
	"time"
)

// ColorItem 是一个已解锁的调色板颜色。判重只看 Hex。
type ColorItem struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_hex;not null" json:"-"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Hex       string    `gorm:"size:16;uniqueIndex:idx_user_hex;not null" json:"hex"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PrimaryColor 是初始调色板条目
type PrimaryColor struct {
	Name string
	Hex  string
}

// PrimaryColors 是新用户的 8 个初始颜色，顺序即展示顺序。
var PrimaryColors = []PrimaryColor{
	{"White", "#FFFFFF"},
	{"Black", "#000000"},
	{"Red", "#FF0000"},
	{"Green", "#00FF00"},
	{"Blue", "#0000FF"},
	{"Yellow", "#FFFF00"},
	{"Magenta", "#FF00FF"},
	{"Cyan", "#00FFFF"},
}

// RGB 是 8 位通道颜色
type RGB struct {
	R, G, B uint8
}

// ParseHex 宽松解析 "#RRGGBB"：去掉空白和 '#' 后读取开头的十六进制数字，
// 读不到数字时按 0 处理。
func ParseHex(s string) RGB {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	var v uint64
	digits := 0
	for _, c := range s {
		d, ok := hexDigit(c)
		if !ok {
			break
		}
		digits++
		if digits > 16 {
			// 溢出 uint64
			return RGB{}
		}
		v = v<<4 | uint64(d)
	}
	return RGB{
		R: uint8((v >> 16) & 0xFF),
		G: uint8((v >> 8) & 0xFF),
		B: uint8(v & 0xFF),
	}
}

func hexDigit(c rune) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint8(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint8(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return uint8(c-'A') + 10, true
	}
	return 0, false
}

// Hex 输出大写 "#RRGGBB"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Float 返回 [0,1] 区间的通道值
func (c RGB) Float() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// MixColors 逐通道取平均并四舍五入，结果与参数顺序无关。
func MixColors(hexA, hexB string) string {
	a, b := ParseHex(hexA), ParseHex(hexB)
	return RGB{
		R: avgRound(a.R, b.R),
		G: avgRound(a.G, b.G),
		B: avgRound(a.B, b.B),
	}.Hex()
}

func avgRound(a, b uint8) uint8 {
	return uint8((uint16(a) + uint16(b) + 1) / 2)
}

// SameHex 不区分大小写比较，'#' 可有可无。
func SameHex(a, b string) bool {
	return strings.EqualFold(trimHex(a), trimHex(b))
}

func trimHex(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "#")
}
