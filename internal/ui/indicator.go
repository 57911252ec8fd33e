package ui

import (
	"image/color"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
)

var indicatorIdle = color.NRGBA{0x80, 0x80, 0x80, 0xFF}

// PlayIndicator is a small dot that cycles through hues while the running
// text scrolls and turns gray when it is paused.
type PlayIndicator struct {
	wrap   *fyne.Container
	circle *canvas.Circle
	anim   *fyne.Animation
}

// NewPlayIndicator constructs an idle indicator with the given diameter.
func NewPlayIndicator(diameter float32) *PlayIndicator {
	c := canvas.NewCircle(indicatorIdle)
	c.StrokeColor = color.NRGBA{0, 0, 0, 0}
	inner := container.New(layout.NewGridWrapLayout(fyne.NewSize(diameter, diameter)), c)
	p := &PlayIndicator{wrap: container.NewCenter(inner), circle: c}
	p.anim = fyne.NewAnimation(4*time.Second, func(f float32) {
		c.FillColor = hsvToNRGBA(float64(f)*360, 0.65, 0.95)
		c.Refresh()
	})
	p.anim.Curve = fyne.AnimationLinear
	p.anim.RepeatCount = fyne.AnimationRepeatForever
	return p
}

// CanvasObject returns the fyne object suitable for embedding in layouts.
func (p *PlayIndicator) CanvasObject() fyne.CanvasObject { return p.wrap }

// SetActive starts or stops the hue cycle.
func (p *PlayIndicator) SetActive(on bool) {
	if on {
		p.anim.Start()
		return
	}
	p.anim.Stop()
	CallOnMain(func() {
		p.circle.FillColor = indicatorIdle
		p.circle.Refresh()
	})
}

// hsvToNRGBA converts HSV (0..360, 0..1, 0..1) to color.NRGBA.
func hsvToNRGBA(h, s, v float64) color.NRGBA {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60.0, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{
		R: uint8((r+m)*255 + 0.5),
		G: uint8((g+m)*255 + 0.5),
		B: uint8((b+m)*255 + 0.5),
		A: 0xFF,
	}
}
