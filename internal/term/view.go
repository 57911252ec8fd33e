// Package term hosts a marquee in a terminal. One cell is one unit of width,
// so offsets and spacing are measured in columns.
package term

import (
	"math"

	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// CellWriter is the part of tcell.Screen a View draws through.
type CellWriter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// View is a marquee.Surface over a rectangle of terminal cells.
type View struct {
	out        CellWriter
	x, y, w, h int
	fade       int
	base       tcell.Style
	next       func()
}

// NewView returns a view drawing through out. It stays unresolved until
// SetRegion gives it a width.
func NewView(out CellWriter) *View {
	return &View{out: out, base: tcell.StyleDefault}
}

// SetRegion places the view at column x, row y with the given size.
func (v *View) SetRegion(x, y, w, h int) {
	v.x, v.y, v.w, v.h = x, y, w, h
}

// SetFade dims n columns at each edge.
func (v *View) SetFade(n int) {
	if n < 0 {
		n = 0
	}
	v.fade = n
}

// SetBaseStyle sets the style used for cleared cells and text without a colour.
func (v *View) SetBaseStyle(s tcell.Style) { v.base = s }

func (v *View) MeasureText(_ marquee.Style, text string) float32 {
	return float32(runewidth.StringWidth(text))
}

// FontMetrics reports a one-row font: the baseline sits at the bottom of the cell.
func (v *View) FontMetrics(marquee.Style) marquee.Metrics {
	return marquee.Metrics{Ascent: 1}
}

func (v *View) ViewportSize() (float32, float32, bool) {
	if v.w <= 0 {
		return 0, 0, false
	}
	return float32(v.w), float32(v.h), true
}

func (v *View) RequestNextFrame(callback func()) { v.next = callback }

// Pending reports whether a frame was requested since the last RunFrame.
func (v *View) Pending() bool { return v.next != nil }

// RunFrame runs the requested frame callback, if any.
func (v *View) RunFrame() bool {
	cb := v.next
	if cb == nil {
		return false
	}
	v.next = nil
	cb()
	return true
}

// Clear blanks the view's cells.
func (v *View) Clear() {
	for row := 0; row < v.h; row++ {
		for col := 0; col < v.w; col++ {
			v.out.SetContent(v.x+col, v.y+row, ' ', nil, v.base)
		}
	}
}

// DrawText writes text with its baseline at y starting at column x. Columns
// outside the view are clipped; a wide rune that would straddle an edge is
// dropped.
func (v *View) DrawText(style marquee.Style, text string, x, y float32) {
	if v.w <= 0 || v.h <= 0 {
		return
	}
	row := int(math.Ceil(float64(y))) - 1
	if row < 0 {
		row = 0
	}
	if row >= v.h {
		row = v.h - 1
	}
	st := v.base
	if style.Color != nil {
		st = st.Foreground(tcell.FromImageColor(style.Color))
	}

	col := int(math.Floor(float64(x)))
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col >= v.w {
			return
		}
		if col >= 0 && col+rw <= v.w {
			v.out.SetContent(v.x+col, v.y+row, r, nil, v.cellStyle(st, col))
		}
		col += rw
	}
}

func (v *View) cellStyle(st tcell.Style, col int) tcell.Style {
	if col < v.fade || col >= v.w-v.fade {
		return st.Dim(true)
	}
	return st
}
