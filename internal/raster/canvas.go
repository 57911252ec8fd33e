// Package raster draws marquee frames into an in-memory RGBA image using
// golang.org/x/image/font. It backs the fyne widget and the headless renderer.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/edward-ap/runningtext/internal/marquee"
)

// Canvas measures and draws text on an RGBA frame. Faces are cached per
// pixel size. A Canvas is not safe for concurrent use.
type Canvas struct {
	font  *opentype.Font
	faces map[float32]font.Face
	img   *image.RGBA
}

// NewCanvas uses f for every style size. A nil f selects the fixed 7x13
// bitmap face regardless of size.
func NewCanvas(f *opentype.Font) *Canvas {
	return &Canvas{font: f, faces: map[float32]font.Face{}}
}

// NewGoCanvas returns a canvas using the Go Regular font.
func NewGoCanvas() (*Canvas, error) {
	f, err := ParseFont(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return NewCanvas(f), nil
}

// NewBitmapCanvas returns a canvas drawing with basicfont.Face7x13.
func NewBitmapCanvas() *Canvas { return NewCanvas(nil) }

// ParseFont parses TrueType/OpenType data.
func ParseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

func (c *Canvas) face(size float32) font.Face {
	if c.font == nil {
		return basicfont.Face7x13
	}
	if size <= 0 {
		size = 14
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	c.faces[size] = f
	return f
}

// MeasureText returns the advance width of text in pixels.
func (c *Canvas) MeasureText(style marquee.Style, text string) float32 {
	return fromFixed(font.MeasureString(c.face(style.Size), text))
}

// FontMetrics returns the face ascent and descent in pixels.
func (c *Canvas) FontMetrics(style marquee.Style) marquee.Metrics {
	m := c.face(style.Size).Metrics()
	return marquee.Metrics{Ascent: fromFixed(m.Ascent), Descent: fromFixed(m.Descent)}
}

// DrawText draws text with its baseline origin at (x, y). Glyphs outside the
// frame are clipped.
func (c *Canvas) DrawText(style marquee.Style, text string, x, y float32) {
	if c.img == nil {
		return
	}
	col := style.Color
	if col == nil {
		col = color.White
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face(style.Size),
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(text)
}

// ViewportSize reports the frame size; it is unresolved until Reset was
// called with a positive size.
func (c *Canvas) ViewportSize() (float32, float32, bool) {
	if c.img == nil {
		return 0, 0, false
	}
	b := c.img.Bounds()
	return float32(b.Dx()), float32(b.Dy()), true
}

// Reset prepares a cleared frame of w x h pixels, reusing the previous
// buffer when the size is unchanged.
func (c *Canvas) Reset(w, h int) {
	if w <= 0 || h <= 0 {
		c.img = nil
		return
	}
	if c.img != nil && c.img.Bounds().Dx() == w && c.img.Bounds().Dy() == h {
		c.Clear()
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Clear makes the frame fully transparent.
func (c *Canvas) Clear() {
	if c.img == nil {
		return
	}
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Image returns the current frame, nil before Reset.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a copy of the current frame.
func (c *Canvas) Snapshot() *image.RGBA {
	if c.img == nil {
		return nil
	}
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// FadeEdges ramps alpha down to zero over px columns on both sides.
func (c *Canvas) FadeEdges(px int) {
	if c.img == nil || px <= 0 {
		return
	}
	b := c.img.Bounds()
	if px > b.Dx()/2 {
		px = b.Dx() / 2
	}
	for i := 0; i < px; i++ {
		f := (float32(i) + 0.5) / float32(px)
		scaleColumn(c.img, b.Min.X+i, f)
		scaleColumn(c.img, b.Max.X-1-i, f)
	}
}

// Close releases cached faces.
func (c *Canvas) Close() error {
	for size, f := range c.faces {
		_ = f.Close()
		delete(c.faces, size)
	}
	return nil
}

// scaleColumn multiplies the premultiplied pixels of column x by f.
func scaleColumn(img *image.RGBA, x int, f float32) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(x, y)
		p := img.Pix[i : i+4 : i+4]
		for k := range p {
			p[k] = uint8(float32(p[k])*f + 0.5)
		}
	}
}

func toFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float32 { return float32(v) / 64 }
