package canvas

import "doodle-academy/internal/domain"

// StrokeStyle 描述一条折线的绘制样式。端点和拐角总是圆形。
type StrokeStyle struct {
	Color   string
	Width   float64
	Opacity float64
}

// Surface 是渲染目标，例如 PNG 光栅或 PDF 页面。
type Surface interface {
	StrokePolyline(points []domain.Point, style StrokeStyle) error
}

// RenderDrawing 按插入顺序把每条笔画画成折线，线宽取首个采样点的印章尺寸。
func RenderDrawing(d domain.Drawing, s Surface) error {
	for _, stroke := range d.Strokes {
		if len(stroke.Path.Points) == 0 {
			continue
		}
		style := StrokeStyle{
			Color:   stroke.Ink.Color,
			Width:   stroke.Width(),
			Opacity: stroke.Opacity(),
		}
		if err := s.StrokePolyline(stroke.Path.Points, style); err != nil {
			return err
		}
	}
	return nil
}
