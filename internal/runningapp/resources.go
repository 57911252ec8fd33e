package runningapp

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"

	"fyne.io/fyne/v2"

	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/edward-ap/runningtext/internal/raster"
)

// AppIcon is the icon used for the app and window. It is rendered at start
// up so the binary needs no image assets.
var AppIcon fyne.Resource

func init() {
	b, err := renderIcon(64)
	if err != nil {
		log.Println("icon render error:", err)
		return
	}
	AppIcon = fyne.NewStaticResource("runningtext64.png", b)
}

// renderIcon draws a square tile with "RT" in the middle.
func renderIcon(px int) ([]byte, error) {
	c, err := raster.NewGoCanvas()
	if err != nil {
		c = raster.NewBitmapCanvas()
	}
	defer c.Close()

	c.Reset(px, px)
	img := c.Image()
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{0x00, 0x99, 0xFF, 0xFF}), image.Point{}, draw.Src)

	style := marquee.Style{Size: float32(px) / 2, Color: color.White}
	w := c.MeasureText(style, "RT")
	m := c.FontMetrics(style)
	c.DrawText(style, "RT", (float32(px)-w)/2, (float32(px)+m.Ascent-m.Descent)/2)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
