package render

import (
	"fmt"
	"io"
	"math"

	"doodle-academy/internal/canvas"
	"doodle-academy/internal/domain"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 297.0 // A4 横向，毫米
	pdfPageHeight = 210.0
	pdfMargin     = 10.0
)

// PDF 是一页 A4 横向文档，画布坐标等比缩放进页边距内。
type PDF struct {
	doc     *gofpdf.Fpdf
	scale   float64
	offsetX float64
	offsetY float64
}

var _ canvas.Surface = (*PDF)(nil)

// NewPDF 按 bounds 计算缩放，bounds 为空时 1 像素对应 1 毫米。
func NewPDF(bounds domain.Rect) *PDF {
	doc := gofpdf.New("L", "mm", "A4", "")
	doc.AddPage()
	doc.SetLineCapStyle("round")
	doc.SetLineJoinStyle("round")

	p := &PDF{doc: doc, scale: 1, offsetX: pdfMargin, offsetY: pdfMargin}
	if !bounds.IsEmpty() && bounds.Width() > 0 && bounds.Height() > 0 {
		availW, availH := pdfPageWidth-2*pdfMargin, pdfPageHeight-2*pdfMargin
		p.scale = math.Min(availW/bounds.Width(), availH/bounds.Height())
		p.offsetX = pdfMargin + (availW-bounds.Width()*p.scale)/2 - bounds.MinX*p.scale
		p.offsetY = pdfMargin + (availH-bounds.Height()*p.scale)/2 - bounds.MinY*p.scale
	}
	return p
}

func (p *PDF) project(pt domain.Point) (float64, float64) {
	return pt.X*p.scale + p.offsetX, pt.Y*p.scale + p.offsetY
}

// StrokePolyline 逐段画线，单点画成实心圆
func (p *PDF) StrokePolyline(points []domain.Point, style canvas.StrokeStyle) error {
	if len(points) == 0 {
		return nil
	}
	c := domain.ParseHex(style.Color)
	p.doc.SetAlpha(style.Opacity, "Normal")
	width := style.Width * p.scale

	if len(points) == 1 {
		x, y := p.project(points[0])
		p.doc.SetFillColor(int(c.R), int(c.G), int(c.B))
		p.doc.Circle(x, y, width/2, "F")
		return p.doc.Error()
	}

	p.doc.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.doc.SetLineWidth(width)
	x0, y0 := p.project(points[0])
	for _, pt := range points[1:] {
		x1, y1 := p.project(pt)
		p.doc.Line(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
	return p.doc.Error()
}

// Output 写出 PDF 字节流
func (p *PDF) Output(w io.Writer) error {
	return p.doc.Output(w)
}

// WritePDF 把整幅画导出为单页 PDF
func WritePDF(w io.Writer, d domain.Drawing) error {
	p := NewPDF(d.Bounds())
	if err := canvas.RenderDrawing(d, p); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
