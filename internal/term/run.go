package term

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/edward-ap/runningtext/internal/feed"
	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// DefaultInterval is the frame period of the terminal loop.
const DefaultInterval = 100 * time.Millisecond

// Options configures a terminal session.
type Options struct {
	Text     string
	Speed    float32 // columns per frame
	Spacing  float32 // columns between repetitions
	Fade     int     // dimmed columns at each edge
	Interval time.Duration
	Source   feed.Source
}

// Player drives one marquee on a tcell screen.
type Player struct {
	screen tcell.Screen
	view   *View
	mq     *marquee.Marquee
	status string
	failed error
}

// NewPlayer lays out the screen and returns a player that has not started
// scrolling yet.
func NewPlayer(screen tcell.Screen, opts Options) *Player {
	p := &Player{screen: screen, view: NewView(screen)}
	p.view.SetFade(opts.Fade)
	p.mq = marquee.New(p.view,
		marquee.WithSpeed(opts.Speed),
		marquee.WithSpacing(opts.Spacing),
		marquee.WithInset(float32(opts.Fade)),
		marquee.WithErrorHandler(p.reportError),
	)
	p.resize()
	p.mq.SetText(opts.Text)
	return p
}

// Marquee exposes the underlying marquee.
func (p *Player) Marquee() *marquee.Marquee { return p.mq }

// Run scrolls until ctx is done or the user quits.
func Run(ctx context.Context, screen tcell.Screen, opts Options) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := NewPlayer(screen, opts)
	p.mq.Resume()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Source != nil {
		go func() {
			err := opts.Source.Watch(ctx, func(text string) {
				_ = screen.PostEvent(tcell.NewEventInterrupt(text))
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("feed stopped: %v", err)
			}
		}()
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.Render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !p.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			p.Render()
		}
	}
}

// HandleEvent applies one input event. It returns false when the user asked
// to quit.
func (p *Player) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			p.mq.SetSpeed(p.mq.Speed() + 1)
		case tcell.KeyDown:
			p.mq.SetSpeed(p.mq.Speed() - 1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				p.Toggle()
			case '+', '=':
				p.mq.SetSpacing(p.mq.Spacing() + 1)
			case '-':
				if s := p.mq.Spacing() - 1; s >= 0 {
					p.mq.SetSpacing(s)
				}
			}
		}
	case *tcell.EventResize:
		p.screen.Sync()
		p.resize()
	case *tcell.EventInterrupt:
		if text, ok := ev.Data().(string); ok {
			p.failed = nil
			p.mq.SetText(text)
		}
	}
	return true
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() {
	if p.mq.State() == marquee.Playing {
		p.mq.Pause()
		return
	}
	p.failed = nil
	p.mq.Resume()
}

// Render draws one frame: the scheduled marquee frame when one is pending,
// otherwise the frozen buffer.
func (p *Player) Render() {
	p.view.Clear()
	if !p.view.RunFrame() {
		if err := p.mq.OnFrame(); err != nil {
			p.reportError(err)
		}
	}
	p.drawStatus()
	p.screen.Show()
}

func (p *Player) resize() {
	w, h := p.screen.Size()
	row := (h - 1) / 2
	if row < 0 {
		row = 0
	}
	p.view.SetRegion(0, row, w, 1)
}

func (p *Player) reportError(err error) {
	if marquee.IsConfigError(err) {
		p.failed = err
	}
}

func (p *Player) drawStatus() {
	w, h := p.screen.Size()
	if h < 3 {
		return
	}
	status := fmt.Sprintf(" %s  speed %g  spacing %g  [space] pause  [up/down] speed  [+/-] spacing  [q] quit",
		p.mq.State(), p.mq.Speed(), p.mq.Spacing())
	if p.failed != nil {
		status = " error: " + p.failed.Error()
	}
	status = runewidth.Truncate(status, w, "…")
	st := tcell.StyleDefault.Reverse(true)
	col := 0
	for _, r := range status {
		p.screen.SetContent(col, h-1, r, nil, st)
		col += runewidth.RuneWidth(r)
	}
	for ; col < w; col++ {
		p.screen.SetContent(col, h-1, ' ', nil, st)
	}
}
