// Package render 把笔画画到具体介质上：PNG 光栅（gg）和 PDF 页面（gofpdf）。
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"doodle-academy/internal/canvas"
	"doodle-academy/internal/domain"

	"github.com/gogpu/gg"
)

// thumbnailPadding 是缩略图四周留白占边长的比例
const thumbnailPadding = 0.05

// Raster 是基于 gg 的光栅画布，白色底。
// scale/offset 把画布坐标映射到像素坐标。
type Raster struct {
	dc      *gg.Context
	scale   float64
	offsetX float64
	offsetY float64
}

var _ canvas.Surface = (*Raster)(nil)

// NewRaster 创建 width x height 像素的白底画布
func NewRaster(width, height int) *Raster {
	dc := gg.NewContext(width, height)
	dc.ClearWithColor(gg.White)
	return &Raster{dc: dc, scale: 1}
}

// Fit 让 bounds 区域等比缩放后居中放进画布
func (r *Raster) Fit(bounds domain.Rect) {
	if bounds.IsEmpty() || bounds.Width() <= 0 || bounds.Height() <= 0 {
		return
	}
	w, h := float64(r.dc.Width()), float64(r.dc.Height())
	availW, availH := w*(1-2*thumbnailPadding), h*(1-2*thumbnailPadding)
	r.scale = math.Min(availW/bounds.Width(), availH/bounds.Height())
	r.offsetX = (w-bounds.Width()*r.scale)/2 - bounds.MinX*r.scale
	r.offsetY = (h-bounds.Height()*r.scale)/2 - bounds.MinY*r.scale
}

func (r *Raster) project(p domain.Point) (float64, float64) {
	return p.X*r.scale + r.offsetX, p.Y*r.scale + r.offsetY
}

// StrokePolyline 以圆头圆角画一条折线，单点笔画画成圆点。
func (r *Raster) StrokePolyline(points []domain.Point, style canvas.StrokeStyle) error {
	if len(points) == 0 {
		return nil
	}
	red, green, blue := domain.ParseHex(style.Color).Float()
	r.dc.SetRGBA(red, green, blue, style.Opacity)
	width := style.Width * r.scale

	if len(points) == 1 {
		x, y := r.project(points[0])
		r.dc.DrawCircle(x, y, width/2)
		if err := r.dc.Fill(); err != nil {
			return fmt.Errorf("fill dot: %w", err)
		}
		return nil
	}

	r.dc.SetLineWidth(width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	x, y := r.project(points[0])
	r.dc.MoveTo(x, y)
	for _, p := range points[1:] {
		x, y = r.project(p)
		r.dc.LineTo(x, y)
	}
	if err := r.dc.Stroke(); err != nil {
		return fmt.Errorf("stroke polyline: %w", err)
	}
	return nil
}

// EncodePNG 把当前画面写成 PNG
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Close 释放渲染器资源
func (r *Raster) Close() error {
	return r.dc.Close()
}

// PNG 按原始坐标把整幅画渲染成 PNG
func PNG(d domain.Drawing, width, height int) ([]byte, error) {
	r := NewRaster(width, height)
	defer r.Close()
	return encode(r, d)
}

// Thumbnail 把画作按内容范围等比缩放进 size x size 的 PNG。空画作得到纯白图。
func Thumbnail(d domain.Drawing, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid thumbnail size %d", size)
	}
	r := NewRaster(size, size)
	defer r.Close()
	r.Fit(d.Bounds())
	return encode(r, d)
}

func encode(r *Raster, d domain.Drawing) ([]byte, error) {
	if err := canvas.RenderDrawing(d, r); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
