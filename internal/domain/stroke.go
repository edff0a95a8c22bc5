package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrEmptyStroke 表示笔画路径没有任何采样点
var ErrEmptyStroke = errors.New("domain: stroke path has no points")

// InkType 是墨水类别
type InkType string

const (
	InkPen    InkType = "pen"
	InkPencil InkType = "pencil"
	InkMarker InkType = "marker"
	InkCrayon InkType = "crayon"
)

// Point 是一次输入采样，记录之后不再修改。
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	TimeOffset float64 `json:"t"`    // 相对笔画开始的秒数
	Size       float64 `json:"size"` // 印章尺寸，由当前工具宽度决定
	Opacity    float64 `json:"opacity"`
	Force      float64 `json:"force"`
	Azimuth    float64 `json:"azimuth"`
	Altitude   float64 `json:"altitude"`
}

// Extent 返回采样点印章覆盖的矩形
func (p Point) Extent() Rect {
	r := p.Size / 2
	return NewRect(p.X-r, p.Y-r, p.X+r, p.Y+r)
}

// Ink 描述笔画的颜色和墨水类别。
type Ink struct {
	Type  InkType `json:"type"`
	Color string  `json:"color"`
}

// StrokePath 按绘制顺序保存采样点。
type StrokePath struct {
	Points    []Point   `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// Stroke 是一次完整的落笔到抬笔，创建后不可变。
type Stroke struct {
	Path StrokePath `json:"path"`
	Ink  Ink        `json:"ink"`
}

// Width 返回首个采样点的印章尺寸，渲染线宽以此为准。
func (s Stroke) Width() float64 {
	if len(s.Path.Points) == 0 {
		return 0
	}
	return s.Path.Points[0].Size
}

// Opacity 返回首个采样点的不透明度，缺省为 1
func (s Stroke) Opacity() float64 {
	if len(s.Path.Points) == 0 || s.Path.Points[0].Opacity <= 0 {
		return 1
	}
	return s.Path.Points[0].Opacity
}

func (s Stroke) Bounds() Rect {
	var r Rect
	for _, p := range s.Path.Points {
		r = r.Union(p.Extent())
	}
	return r
}

// MinDistance 返回 p 到笔画任一采样点的最小距离，空笔画返回 +Inf。
func (s Stroke) MinDistance(p Point) float64 {
	best := math.Inf(1)
	for _, q := range s.Path.Points {
		if d := Distance(p, q); d < best {
			best = d
		}
	}
	return best
}

// Drawing 是按插入顺序排列的笔画集合，顺序即绘制层级。
type Drawing struct {
	Strokes []Stroke `json:"strokes"`
}

// Bounds 返回所有笔画覆盖范围的并集
func (d Drawing) Bounds() Rect {
	var r Rect
	for _, s := range d.Strokes {
		r = r.Union(s.Bounds())
	}
	return r
}

func (d Drawing) Len() int { return len(d.Strokes) }

// Clone 复制笔画切片。笔画本身不可变，可以共享。
func (d Drawing) Clone() Drawing {
	out := Drawing{Strokes: make([]Stroke, len(d.Strokes))}
	copy(out.Strokes, d.Strokes)
	return out
}

// Validate 检查每条笔画至少包含一个采样点
func (d Drawing) Validate() error {
	for i, s := range d.Strokes {
		if len(s.Path.Points) == 0 {
			return fmt.Errorf("stroke %d: %w", i, ErrEmptyStroke)
		}
	}
	return nil
}

// EncodeDrawing 把 Drawing 序列化为 JSON。
func EncodeDrawing(d Drawing) ([]byte, error) {
	if d.Strokes == nil {
		d.Strokes = []Stroke{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal drawing: %w", err)
	}
	return b, nil
}

// DecodeDrawing 解析 EncodeDrawing 的输出，空输入视为空画布。
func DecodeDrawing(data []byte) (Drawing, error) {
	var d Drawing
	if len(data) == 0 || string(data) == "null" {
		return Drawing{Strokes: []Stroke{}}, nil
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return Drawing{}, fmt.Errorf("failed to unmarshal drawing: %w", err)
	}
	if d.Strokes == nil {
		d.Strokes = []Stroke{}
	}
	if err := d.Validate(); err != nil {
		return Drawing{}, err
	}
	return d, nil
}
