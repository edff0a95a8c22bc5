package render_test

import (
	"bytes"
	"image/png"
	"testing"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(color string, width float64, pts ...domain.Point) domain.Stroke {
	for i := range pts {
		pts[i].Size = width
		pts[i].Opacity = 1
	}
	return domain.Stroke{
		Path: domain.StrokePath{Points: pts},
		Ink:  domain.Ink{Type: domain.InkPen, Color: color},
	}
}

func TestPNG_DrawsStrokeOnWhite(t *testing.T) {
	d := domain.Drawing{Strokes: []domain.Stroke{
		line("#000000", 10, domain.Point{X: 10, Y: 50}, domain.Point{X: 90, Y: 50}),
	}}
	data, err := render.PNG(d, 100, 100)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())

	r, g, b, _ := img.At(50, 50).RGBA()
	assert.Less(t, r+g+b, uint32(3*0x2000), "笔画中心应为深色")

	r, g, b, _ = img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestThumbnail_EmptyDrawingIsWhite(t *testing.T) {
	data, err := render.Thumbnail(domain.Drawing{}, 32)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	r, _, _, _ := img.At(16, 16).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestThumbnail_FitsContent(t *testing.T) {
	// 远离原点的笔画，缩放后应出现在缩略图中央
	d := domain.Drawing{Strokes: []domain.Stroke{
		line("#FF0000", 40, domain.Point{X: 1000, Y: 1000}, domain.Point{X: 1400, Y: 1000}),
	}}
	data, err := render.Thumbnail(d, 64)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, _, _ := img.At(32, 32).RGBA()
	assert.Greater(t, r, uint32(0xc000))
	assert.Less(t, g, uint32(0x4000))
}

func TestThumbnail_RejectsBadSize(t *testing.T) {
	_, err := render.Thumbnail(domain.Drawing{}, 0)
	assert.Error(t, err)
}

func TestWritePDF(t *testing.T) {
	d := domain.Drawing{Strokes: []domain.Stroke{
		line("#336699", 10, domain.Point{X: 0, Y: 0}, domain.Point{X: 200, Y: 100}, domain.Point{X: 300, Y: 50}),
		line("#000000", 8, domain.Point{X: 150, Y: 150}),
	}}
	var buf bytes.Buffer
	require.NoError(t, render.WritePDF(&buf, d))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
