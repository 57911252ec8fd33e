// Package marquee implements a seamless running-text marquee: a layout engine
// that repeats the text enough times to always cover the viewport, and an
// animation driver that scrolls it leftward and wraps after one full cycle.
//
// The package owns no window, timer or font. Everything host specific is
// injected through Surface.
package marquee

import "image/color"

// Style is the immutable text styling used for both measuring and drawing.
// Measuring with one Style and drawing with another breaks the no-gap layout.
type Style struct {
	Size  float32 // pixel size
	Color color.Color
}

// WithColor returns a copy of s using c.
func (s Style) WithColor(c color.Color) Style {
	s.Color = c
	return s
}

// Metrics are font extents around the baseline, both positive.
type Metrics struct {
	Ascent  float32
	Descent float32
}

// Height is the line height the marquee asks its host for.
func (m Metrics) Height() float32 { return m.Ascent + m.Descent }

// Measurer measures text. Calls are synchronous and must not have side effects.
type Measurer interface {
	MeasureText(style Style, text string) float32
	FontMetrics(style Style) Metrics
}

// Surface is the rendering host a Marquee draws on.
type Surface interface {
	Measurer
	// DrawText draws text with its baseline origin at (x, y).
	DrawText(style Style, text string, x, y float32)
	// RequestNextFrame runs callback on the host's next draw pass.
	RequestNextFrame(callback func())
	// ViewportSize reports the current viewport; ok is false while the host
	// has not resolved a width yet.
	ViewportSize() (w, h float32, ok bool)
}

// ColorFunc resolves the themed text colour.
type ColorFunc func() color.Color
