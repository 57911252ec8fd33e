package marquee

import "errors"

const (
	// DefaultSpeed is the scroll distance per frame in pixels.
	DefaultSpeed = 2
	// DefaultSpacing is the requested gap between repetitions in pixels.
	DefaultSpacing = 48
)

// Option configures a Marquee.
type Option func(*Marquee)

// WithStyle sets the initial text style.
func WithStyle(s Style) Option { return func(m *Marquee) { m.style = s } }

// WithSpeed sets the initial speed in pixels per frame.
func WithSpeed(px float32) Option { return func(m *Marquee) { m.anim.SetSpeed(px) } }

// WithSpacing sets the requested gap between repetitions.
func WithSpacing(px float32) Option { return func(m *Marquee) { m.spacing = px } }

// WithInset sets the left inset the text starts from (the host's fading edge).
func WithInset(px float32) Option {
	return func(m *Marquee) {
		m.anim.inset = px
		m.anim.offset = px
	}
}

// WithColor injects the themed colour resolver used at draw time.
func WithColor(f ColorFunc) Option { return func(m *Marquee) { m.color = f } }

// WithErrorHandler receives layout errors raised inside scheduled frames.
func WithErrorHandler(f func(error)) Option { return func(m *Marquee) { m.onError = f } }

// Marquee ties the layout engine and the animation driver to a Surface.
//
// A Marquee is driven from a single goroutine: the host's draw pass. None of
// its methods may be called concurrently.
type Marquee struct {
	surface Surface
	style   Style
	color   ColorFunc
	onError func(error)

	text    string
	spacing float32

	layout    Layout
	hasLayout bool
	dirty     bool
	lastWidth float32

	anim       *Animator
	pending    bool
	recomputes int
}

// New returns a paused marquee drawing on s.
func New(s Surface, opts ...Option) *Marquee {
	m := &Marquee{
		surface: s,
		spacing: DefaultSpacing,
		anim:    NewAnimator(0, DefaultSpeed),
		style:   Style{Size: 14},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetText replaces the text. Empty or unchanged text is ignored; otherwise
// the layout is marked for recompute and the scroll starts over.
func (m *Marquee) SetText(text string) {
	if text == "" || text == m.text {
		return
	}
	m.text = text
	m.dirty = true
	m.anim.Reset(m.anim.CycleWidth())
	m.requestFrame()
}

// Text returns the current source text.
func (m *Marquee) Text() string { return m.text }

// SetSpeed sets the pixels scrolled per frame.
func (m *Marquee) SetSpeed(px float32) { m.anim.SetSpeed(px) }

// Speed returns the pixels scrolled per frame.
func (m *Marquee) Speed() float32 { return m.anim.Speed() }

// SetSpacing sets the requested gap between repetitions. The effective gap is
// rounded up to whole spaces on the next recompute.
func (m *Marquee) SetSpacing(px float32) {
	if px == m.spacing {
		return
	}
	m.spacing = px
	m.dirty = true
	m.requestFrame()
}

// Spacing returns the requested gap. After a recompute it holds the
// normalized width.
func (m *Marquee) Spacing() float32 { return m.spacing }

// SetStyle swaps the measurement context and marks the layout dirty.
func (m *Marquee) SetStyle(s Style) {
	m.style = s
	m.dirty = true
	m.requestFrame()
}

// Style returns the current style.
func (m *Marquee) Style() Style { return m.style }

// Pause stops scheduling frames.
func (m *Marquee) Pause() { m.anim.Pause() }

// Resume starts scrolling and asks the host for a frame right away.
func (m *Marquee) Resume() {
	if m.anim.Resume() {
		m.requestFrame()
	}
}

// Rewind moves the text back to the inset without touching the layout.
func (m *Marquee) Rewind() { m.anim.Reset(m.anim.CycleWidth()) }

// Tick advances one frame without drawing. It does nothing while paused.
func (m *Marquee) Tick() bool { return m.anim.Tick() }

// State returns the current play state.
func (m *Marquee) State() PlayState { return m.anim.State() }

// Offset returns the current horizontal draw position.
func (m *Marquee) Offset() float32 { return m.anim.Offset() }

// Dirty reports whether a recompute is pending.
func (m *Marquee) Dirty() bool { return m.dirty }

// Recomputes counts successful layout recomputations.
func (m *Marquee) Recomputes() int { return m.recomputes }

// Layout returns the last computed layout.
func (m *Marquee) Layout() (Layout, bool) { return m.layout, m.hasLayout }

// MinHeight is the viewport height the marquee needs for the active font.
func (m *Marquee) MinHeight() float32 {
	return m.surface.FontMetrics(m.style).Height()
}

// Recompute lays the text out now. It returns ErrUnresolvedViewport while the
// host has no width and leaves the marquee dirty in that case.
func (m *Marquee) Recompute() error {
	w, _, ok := m.surface.ViewportSize()
	if !ok {
		return ErrUnresolvedViewport
	}
	return m.recompute(w)
}

func (m *Marquee) recompute(width float32) error {
	m.lastWidth = width
	if m.text == "" {
		m.dirty = false
		return nil
	}
	l, err := ComputeLayout(m.surface, m.style, m.text, width, m.spacing)
	if err != nil {
		return err
	}
	m.layout = l
	m.hasLayout = true
	m.spacing = l.SpacingWidth
	m.dirty = false
	m.recomputes++
	m.anim.Reset(l.CycleWidth)
	return nil
}

// OnFrame is one draw pass: recompute when needed, draw the buffer at the
// current offset and, while playing, advance and request the next frame.
func (m *Marquee) OnFrame() error {
	w, h, ok := m.surface.ViewportSize()
	if !ok {
		return nil
	}
	if m.dirty || w != m.lastWidth {
		if err := m.recompute(w); err != nil {
			m.anim.Pause()
			return err
		}
	}
	if !m.hasLayout {
		return nil
	}

	metrics := m.surface.FontMetrics(m.style)
	if !(h > 0) {
		h = metrics.Height()
	}
	y := (h + metrics.Ascent - metrics.Descent) / 2
	style := m.style
	if m.color != nil {
		style = style.WithColor(m.color())
	}
	m.surface.DrawText(style, m.layout.Buffer, m.anim.Offset(), y)

	if m.anim.Tick() {
		m.requestFrame()
	}
	return nil
}

func (m *Marquee) requestFrame() {
	if m.pending {
		return
	}
	m.pending = true
	m.surface.RequestNextFrame(m.scheduledFrame)
}

func (m *Marquee) scheduledFrame() {
	m.pending = false
	if err := m.OnFrame(); err != nil && m.onError != nil {
		m.onError(err)
	}
}

// IsConfigError reports whether err is a layout configuration error as
// opposed to a deferred viewport.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrDegenerateSpacing) || errors.Is(err, ErrDegenerateLayout)
}
