package domain

import "fmt"

// ToolKind 是六种画布工具的标签
type ToolKind int

const (
	ToolPen ToolKind = iota
	ToolPencil
	ToolMarker
	ToolCrayon
	ToolSoftEraser   // 位图擦除：叠加白色笔画
	ToolStrokeEraser // 矢量擦除：整条删除
)

const (
	DefaultStrokeColor = "#000000"
	DefaultStrokeWidth = 10.0

	EraserWidthFactor = 5.0
	CrayonWidthFactor = 2.5
	CrayonOpacity     = 0.6
	SoftEraserColor   = "#FFFFFF"
)

var toolNames = map[ToolKind]string{
	ToolPen:          "pen",
	ToolPencil:       "pencil",
	ToolMarker:       "marker",
	ToolCrayon:       "crayon",
	ToolSoftEraser:   "soft_eraser",
	ToolStrokeEraser: "stroke_eraser",
}

func (k ToolKind) String() string {
	if name, ok := toolNames[k]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(k))
}

// ParseToolKind 把线上名称转换为 ToolKind
func ParseToolKind(name string) (ToolKind, error) {
	for k, n := range toolNames {
		if n == name {
			return k, nil
		}
	}
	return ToolPen, fmt.Errorf("unknown tool %q", name)
}

func (k ToolKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ToolKind) UnmarshalText(b []byte) error {
	parsed, err := ParseToolKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsEraser 报告是否为两种橡皮之一
func (k ToolKind) IsEraser() bool {
	return k == ToolSoftEraser || k == ToolStrokeEraser
}

// Tool 是当前激活工具的值描述。Color 仅对上墨工具有意义。
type Tool struct {
	Kind    ToolKind `json:"kind"`
	Color   string   `json:"color,omitempty"`
	Width   float64  `json:"width"`
	Opacity float64  `json:"opacity"`
}

// NewTool 根据笔画颜色和宽度推导工具描述。
func NewTool(kind ToolKind, color string, strokeWidth float64) Tool {
	switch kind {
	case ToolPen, ToolPencil, ToolMarker:
		return Tool{Kind: kind, Color: color, Width: strokeWidth, Opacity: 1}
	case ToolCrayon:
		return Tool{Kind: kind, Color: color, Width: strokeWidth * CrayonWidthFactor, Opacity: CrayonOpacity}
	case ToolSoftEraser:
		return Tool{Kind: kind, Width: strokeWidth * EraserWidthFactor, Opacity: 1}
	case ToolStrokeEraser:
		return Tool{Kind: kind, Width: strokeWidth * EraserWidthFactor}
	default:
		return Tool{Kind: ToolPen, Color: color, Width: strokeWidth, Opacity: 1}
	}
}

// Ink 返回提交笔画时使用的墨水。矢量橡皮不产生笔画。
func (t Tool) Ink() (Ink, bool) {
	switch t.Kind {
	case ToolPen:
		return Ink{Type: InkPen, Color: t.Color}, true
	case ToolPencil:
		return Ink{Type: InkPencil, Color: t.Color}, true
	case ToolMarker:
		return Ink{Type: InkMarker, Color: t.Color}, true
	case ToolCrayon:
		return Ink{Type: InkCrayon, Color: t.Color}, true
	case ToolSoftEraser:
		return Ink{Type: InkPen, Color: SoftEraserColor}, true
	case ToolStrokeEraser:
		return Ink{}, false
	default:
		return Ink{}, false
	}
}
