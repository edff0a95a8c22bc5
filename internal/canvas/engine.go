// Package canvas 把指针输入记录为笔画，并维护当前会话的 Drawing。
package canvas

import (
	"time"

	"doodle-academy/internal/domain"
)

// VectorEraseThreshold 是矢量擦除的命中距离
const VectorEraseThreshold = 15.0

// Engine 拥有一个编辑会话的画作、当前工具和进行中的笔画缓冲。
// Engine 不是并发安全的，调用方需保证单一所有者。
type Engine struct {
	drawing     domain.Drawing
	strokeColor string
	strokeWidth float64
	tool        domain.Tool

	live      []domain.Point
	liveStart time.Time

	now func() time.Time
}

// NewEngine 创建默认黑色画笔的空画布
func NewEngine() *Engine {
	e := &Engine{
		drawing:     domain.Drawing{Strokes: []domain.Stroke{}},
		strokeColor: domain.DefaultStrokeColor,
		strokeWidth: domain.DefaultStrokeWidth,
		now:         time.Now,
	}
	e.tool = domain.NewTool(domain.ToolPen, e.strokeColor, e.strokeWidth)
	return e
}

// SetClock 替换时间源，测试使用
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// BeginStroke 开始新的笔画缓冲，已有缓冲会被丢弃。矢量橡皮激活时不做任何事。
func (e *Engine) BeginStroke(p domain.Point) {
	if e.tool.Kind == domain.ToolStrokeEraser {
		return
	}
	e.liveStart = e.now()
	e.live = e.live[:0]
	e.live = append(e.live, e.stamp(p))
}

// ExtendStroke 向缓冲追加采样点，没有打开的缓冲时忽略。
func (e *Engine) ExtendStroke(p domain.Point) {
	if e.tool.Kind == domain.ToolStrokeEraser || len(e.live) == 0 {
		return
	}
	e.live = append(e.live, e.stamp(p))
}

// stamp 按当前工具设置印章尺寸和不透明度，压力不影响宽度。
func (e *Engine) stamp(p domain.Point) domain.Point {
	p.Size = e.tool.Width
	p.Opacity = e.tool.Opacity
	return p
}

// CommitStroke 把缓冲转为一条笔画追加到画作末尾。缓冲为空时返回 false。
func (e *Engine) CommitStroke() (domain.Stroke, bool) {
	if len(e.live) == 0 {
		return domain.Stroke{}, false
	}
	defer func() { e.live = nil }()

	ink, ok := e.tool.Ink()
	if !ok {
		return domain.Stroke{}, false
	}
	points := make([]domain.Point, len(e.live))
	copy(points, e.live)
	stroke := domain.Stroke{
		Path: domain.StrokePath{Points: points, CreatedAt: e.liveStart.UTC()},
		Ink:  ink,
	}
	e.drawing.Strokes = append(e.drawing.Strokes, stroke)
	return stroke, true
}

// VectorErase 删除距离 p 最近且小于阈值的一条笔画。
// 从最新的笔画开始遍历，只接受严格更近的结果，距离相同时保留较新的笔画。
func (e *Engine) VectorErase(p domain.Point) (domain.Stroke, int, bool) {
	best := -1
	bestDist := VectorEraseThreshold
	for i := len(e.drawing.Strokes) - 1; i >= 0; i-- {
		if d := e.drawing.Strokes[i].MinDistance(p); d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return domain.Stroke{}, -1, false
	}
	removed := e.drawing.Strokes[best]
	strokes := make([]domain.Stroke, 0, len(e.drawing.Strokes)-1)
	strokes = append(strokes, e.drawing.Strokes[:best]...)
	strokes = append(strokes, e.drawing.Strokes[best+1:]...)
	e.drawing.Strokes = strokes
	return removed, best, true
}

// SetTool 切换工具，并按当前笔画颜色和宽度重建描述。
func (e *Engine) SetTool(kind domain.ToolKind) {
	e.tool = domain.NewTool(kind, e.strokeColor, e.strokeWidth)
}

// UpdateActiveToolColorOrWidth 更新笔画颜色或宽度并重建当前工具。
// 空颜色或非正宽度表示不修改该项。橡皮保持原有类型。
func (e *Engine) UpdateActiveToolColorOrWidth(color string, width float64) {
	if color != "" {
		e.strokeColor = color
	}
	if width > 0 {
		e.strokeWidth = width
	}
	e.tool = domain.NewTool(e.tool.Kind, e.strokeColor, e.strokeWidth)
}

// Clear 换成空画作，进行中的缓冲一并丢弃。没有撤销。
func (e *Engine) Clear() {
	e.drawing = domain.Drawing{Strokes: []domain.Stroke{}}
	e.live = nil
}

// Load 用 d 的副本替换当前画作
func (e *Engine) Load(d domain.Drawing) {
	e.drawing = d.Clone()
	e.live = nil
}

// Drawing 返回当前画作的副本
func (e *Engine) Drawing() domain.Drawing { return e.drawing.Clone() }

func (e *Engine) Tool() domain.Tool { return e.tool }
func (e *Engine) StrokeColor() string { return e.strokeColor }
func (e *Engine) StrokeWidth() float64 { return e.strokeWidth }
func (e *Engine) StrokeCount() int { return e.drawing.Len() }
func (e *Engine) HasLiveStroke() bool { return len(e.live) > 0 }

// LivePoints 返回进行中缓冲的副本
func (e *Engine) LivePoints() []domain.Point {
	out := make([]domain.Point, len(e.live))
	copy(out, e.live)
	return out
}

// Render 按顺序绘制已提交笔画，再用当前工具样式绘制进行中的缓冲。
func (e *Engine) Render(s Surface) error {
	if err := RenderDrawing(e.drawing, s); err != nil {
		return err
	}
	if len(e.live) == 0 {
		return nil
	}
	ink, ok := e.tool.Ink()
	if !ok {
		return nil
	}
	return s.StrokePolyline(e.live, StrokeStyle{
		Color:   ink.Color,
		Width:   e.tool.Width,
		Opacity: e.tool.Opacity,
	})
}
