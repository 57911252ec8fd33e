package marquee

// PlayState is the animation state of a marquee.
type PlayState int

const (
	// Paused is the initial state; offsets do not change.
	Paused PlayState = iota
	// Playing advances the offset on every frame.
	Playing
)

func (s PlayState) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	}
	return "unknown"
}

// Animator holds the scroll offset and play state. It is not safe for
// concurrent use.
type Animator struct {
	offset float32
	inset  float32
	speed  float32
	cycle  float32
	state  PlayState
}

// NewAnimator returns a paused animator sitting at inset.
func NewAnimator(inset, speed float32) *Animator {
	a := &Animator{inset: inset, offset: inset}
	a.SetSpeed(speed)
	return a
}

// Reset moves the offset back to the inset and adopts a new wrap distance.
func (a *Animator) Reset(cycleWidth float32) {
	a.cycle = cycleWidth
	a.offset = a.inset
}

// Tick moves one frame to the left while playing. Once a whole cycle has
// scrolled past the offset is moved forward by one cycle, which lands on
// content identical to what is on screen. The remainder past the wrap point
// is kept, so speeds that do not divide the cycle still scroll evenly.
func (a *Animator) Tick() bool {
	if a.state != Playing {
		return false
	}
	a.offset -= a.speed
	for a.cycle > 0 && a.offset <= -a.cycle {
		a.offset += a.cycle
	}
	return true
}

// Pause stops the animation. It reports whether the state changed.
func (a *Animator) Pause() bool {
	if a.state == Paused {
		return false
	}
	a.state = Paused
	return true
}

// Resume starts the animation. It reports whether the state changed.
func (a *Animator) Resume() bool {
	if a.state == Playing {
		return false
	}
	a.state = Playing
	return true
}

// SetSpeed sets the pixels scrolled per frame; negative values become 0.
func (a *Animator) SetSpeed(px float32) {
	if !(px > 0) {
		px = 0
	}
	a.speed = px
}

func (a *Animator) Speed() float32      { return a.speed }
func (a *Animator) Offset() float32     { return a.offset }
func (a *Animator) Inset() float32      { return a.inset }
func (a *Animator) CycleWidth() float32 { return a.cycle }
func (a *Animator) State() PlayState    { return a.state }
func (a *Animator) Playing() bool       { return a.state == Playing }
