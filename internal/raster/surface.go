package raster

// FrameQueue collects frame requests until the next draw pass.
type FrameQueue struct {
	q []func()
}

// RequestNextFrame queues callback for the next Step.
func (f *FrameQueue) RequestNextFrame(callback func()) {
	f.q = append(f.q, callback)
}

// Pending is the number of queued callbacks.
func (f *FrameQueue) Pending() int { return len(f.q) }

// run executes the callbacks queued so far; requests made while running land
// in the following pass.
func (f *FrameQueue) run() int {
	q := f.q
	f.q = nil
	for _, cb := range q {
		cb()
	}
	return len(q)
}

// Surface is a headless marquee host: a Canvas plus a frame queue.
type Surface struct {
	*Canvas
	FrameQueue
}

// NewSurface returns a surface with a w x h frame.
func NewSurface(c *Canvas, w, h int) *Surface {
	c.Reset(w, h)
	return &Surface{Canvas: c}
}

// Step performs one draw pass. It reports false when nothing was requested,
// leaving the previous frame in place.
func (s *Surface) Step() bool {
	if s.Pending() == 0 {
		return false
	}
	s.Clear()
	s.run()
	return true
}
