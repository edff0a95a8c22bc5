package domain

import "math"

// Rect 是轴对齐矩形，零值表示空矩形。
type Rect struct {
	MinX  float64 `json:"min_x"`
	MinY  float64 `json:"min_y"`
	MaxX  float64 `json:"max_x"`
	MaxY  float64 `json:"max_y"`
	valid bool
}

// NewRect 由两个角点构造矩形
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		MinX:  math.Min(x0, x1),
		MinY:  math.Min(y0, y1),
		MaxX:  math.Max(x0, x1),
		MaxY:  math.Max(y0, y1),
		valid: true,
	}
}

// IsEmpty 报告矩形是否未包含任何点
func (r Rect) IsEmpty() bool { return !r.valid }

func (r Rect) Width() float64 { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Union 返回同时包含 r 和 o 的最小矩形。
func (r Rect) Union(o Rect) Rect {
	if !o.valid {
		return r
	}
	if !r.valid {
		return o
	}
	return NewRect(
		math.Min(r.MinX, o.MinX), math.Min(r.MinY, o.MinY),
		math.Max(r.MaxX, o.MaxX), math.Max(r.MaxY, o.MaxY),
	)
}

// Distance 计算两点间的欧氏距离
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
