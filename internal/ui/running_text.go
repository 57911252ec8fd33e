package ui

import (
	"image"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/edward-ap/runningtext/internal/raster"
)

// FadingEdgeLength is the width of the fading edge on both sides, in
// device-independent pixels. Text starts right after the left one.
const FadingEdgeLength = 30

// RunningText is a single line of text that scrolls left forever without the
// pause a regular marquee makes between loops. Its methods are safe to call
// from any goroutine.
type RunningText struct {
	widget.BaseWidget

	mu       sync.Mutex
	canvas   *raster.Canvas
	mq       *marquee.Marquee
	next     func()
	size     float32 // theme text size
	scale    float32
	fade     float32
	playing  bool // what the user asked for
	overflow bool

	img  *canvas.Raster
	anim *fyne.Animation

	// OnError receives layout configuration errors. Defaults to log. It is
	// called during the draw pass and must not call back into the widget.
	OnError func(error)
}

// frameSurface is the marquee host: drawing goes to the shared raster
// canvas, frame requests are picked up by the animation clock.
type frameSurface struct {
	*raster.Canvas
	rt *RunningText
}

func (s frameSurface) RequestNextFrame(cb func()) { s.rt.next = cb }

// NewRunningText creates a paused widget showing text.
func NewRunningText(text string) *RunningText {
	rt := &RunningText{
		canvas: themeCanvas(),
		size:   theme.TextSize(),
		scale:  currentScale(),
		fade:   FadingEdgeLength,
	}
	rt.mq = marquee.New(frameSurface{Canvas: rt.canvas, rt: rt},
		marquee.WithStyle(marquee.Style{Size: rt.size * rt.scale}),
		marquee.WithInset(rt.fade*rt.scale),
		marquee.WithSpeed(marquee.DefaultSpeed*rt.scale),
		marquee.WithSpacing(marquee.DefaultSpacing*rt.scale),
		marquee.WithColor(theme.ForegroundColor),
		marquee.WithErrorHandler(rt.reportError),
	)
	rt.mq.SetText(text)
	rt.ExtendBaseWidget(rt)
	return rt
}

// themeCanvas loads the current theme font, falling back to a bitmap face.
func themeCanvas() *raster.Canvas {
	if res := theme.TextFont(); res != nil {
		if data := res.Content(); len(data) > 0 {
			if f, err := raster.ParseFont(data); err == nil {
				return raster.NewCanvas(f)
			} else if isTraceLogEnabled() {
				log.Println("running text: theme font:", err)
			}
		}
	}
	return raster.NewBitmapCanvas()
}

func (rt *RunningText) CreateRenderer() fyne.WidgetRenderer {
	rt.img = canvas.NewRaster(rt.generate)
	rt.anim = fyne.NewAnimation(time.Second, func(float32) { rt.frameTick() })
	rt.anim.Curve = fyne.AnimationLinear
	rt.anim.RepeatCount = fyne.AnimationRepeatForever
	rt.mu.Lock()
	playing := rt.playing
	rt.mu.Unlock()
	if playing {
		rt.anim.Start()
	}
	return widget.NewSimpleRenderer(rt.img)
}

// MinSize follows the font: the widget is exactly one line tall.
func (rt *RunningText) MinSize() fyne.Size {
	rt.mu.Lock()
	h := rt.mq.MinHeight() / rt.scale
	w := 2 * rt.fade
	rt.mu.Unlock()
	return fyne.NewSize(w, h)
}

// SetText replaces the scrolling text. Empty or unchanged text is ignored.
func (rt *RunningText) SetText(text string) {
	rt.mu.Lock()
	rt.mq.SetText(text)
	rt.mu.Unlock()
	rt.refresh()
}

// Text returns the text being shown.
func (rt *RunningText) Text() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.mq.Text()
}

// SetSpeed sets the scroll speed in device-independent pixels per frame.
func (rt *RunningText) SetSpeed(px float32) {
	rt.mu.Lock()
	rt.mq.SetSpeed(px * rt.scale)
	rt.mu.Unlock()
}

// Speed returns the scroll speed in device-independent pixels per frame.
func (rt *RunningText) Speed() float32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.mq.Speed() / rt.scale
}

// SetSpacing sets the requested gap between repetitions.
func (rt *RunningText) SetSpacing(px float32) {
	rt.mu.Lock()
	rt.mq.SetSpacing(px * rt.scale)
	rt.mu.Unlock()
	rt.refresh()
}

// Spacing returns the effective gap between repetitions.
func (rt *RunningText) Spacing() float32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.mq.Spacing() / rt.scale
}

// SetTextSize overrides the theme text size. Zero restores the theme size.
func (rt *RunningText) SetTextSize(size float32) {
	if size <= 0 {
		size = theme.TextSize()
	}
	rt.mu.Lock()
	rt.size = size
	rt.mq.SetStyle(marquee.Style{Size: size * rt.scale})
	rt.mu.Unlock()
	rt.Refresh()
}

// SetOverflowOnly keeps the text still while it fits the viewport.
func (rt *RunningText) SetOverflowOnly(on bool) {
	rt.mu.Lock()
	rt.overflow = on
	if !on && rt.playing {
		rt.mq.Resume()
	}
	rt.mu.Unlock()
	rt.refresh()
}

// Resume starts scrolling.
func (rt *RunningText) Resume() {
	rt.mu.Lock()
	rt.playing = true
	rt.mq.Resume()
	anim := rt.anim
	rt.mu.Unlock()
	if anim != nil {
		anim.Start()
	}
}

// Pause stops scrolling and the frame clock.
func (rt *RunningText) Pause() {
	rt.mu.Lock()
	rt.playing = false
	rt.mq.Pause()
	anim := rt.anim
	rt.mu.Unlock()
	if anim != nil {
		anim.Stop()
	}
}

// Playing reports whether the text is currently scrolling.
func (rt *RunningText) Playing() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.mq.State() == marquee.Playing
}

// PlayRequested reports whether scrolling was asked for, even while
// overflow-only mode or a layout error holds the text still.
func (rt *RunningText) PlayRequested() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.playing
}

// Close stops the frame clock and releases fonts.
func (rt *RunningText) Close() {
	rt.Pause()
	rt.mu.Lock()
	_ = rt.canvas.Close()
	rt.mu.Unlock()
}

// frameTick runs on every animation tick and redraws only when the marquee
// asked for a frame.
func (rt *RunningText) frameTick() {
	rt.mu.Lock()
	armed := rt.next != nil
	rt.mu.Unlock()
	if armed {
		rt.refresh()
	}
}

func (rt *RunningText) refresh() {
	if rt.img != nil {
		rt.img.Refresh()
	}
}

// generate is the raster draw pass, w and h are device pixels.
func (rt *RunningText) generate(w, h int) image.Image {
	width := rt.Size().Width

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if width > 0 && w > 0 {
		if s := float32(w) / width; s != rt.scale {
			rt.rescale(s)
		}
	}
	rt.canvas.Reset(w, h)
	rt.applyOverflow(float32(w))

	if cb := rt.next; cb != nil {
		rt.next = nil
		cb()
	} else if err := rt.mq.OnFrame(); err != nil {
		rt.reportError(err)
	}
	rt.canvas.FadeEdges(int(rt.fade * rt.scale))

	if snap := rt.canvas.Snapshot(); snap != nil {
		return snap
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

// rescale keeps sizes in device-independent pixels when the canvas scale
// changes.
func (rt *RunningText) rescale(s float32) {
	ratio := s / rt.scale
	rt.scale = s
	rt.mq.SetSpeed(rt.mq.Speed() * ratio)
	rt.mq.SetSpacing(rt.mq.Spacing() * ratio)
	rt.mq.SetStyle(marquee.Style{Size: rt.size * s})
}

// applyOverflow holds the text still at the inset while it fits between the
// fading edges. It runs before the frame is drawn so the offset never moves.
func (rt *RunningText) applyOverflow(viewportW float32) {
	if !rt.overflow {
		return
	}
	if rt.mq.Dirty() {
		// errors surface from OnFrame
		_ = rt.mq.Recompute()
	}
	l, ok := rt.mq.Layout()
	if !ok {
		return
	}
	if !textOverflows(l.TextWidth, viewportW-2*rt.fade*rt.scale) {
		rt.mq.Pause()
		rt.mq.Rewind()
	} else if rt.playing {
		rt.mq.Resume()
	}
}

// reportError is called with rt.mu held.
func (rt *RunningText) reportError(err error) {
	if marquee.IsConfigError(err) {
		rt.playing = false
	}
	if rt.OnError != nil {
		rt.OnError(err)
		return
	}
	log.Println("running text:", err)
}
