package term

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/edward-ap/runningtext/internal/feed"
	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/gdamore/tcell/v2"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return b.String()
}

func key(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func TestPlayerScrollsAndPauses(t *testing.T) {
	s := newSimScreen(t, 8, 3)
	p := NewPlayer(s, Options{Text: "ab", Speed: 1, Spacing: 1})
	p.Marquee().Resume()

	p.Render()
	if got := screenRow(s, 1); got != "ab ab ab" {
		t.Fatalf("frame 0 = %q", got)
	}
	p.Render()
	if got := screenRow(s, 1); got != "b ab ab " {
		t.Fatalf("frame 1 = %q", got)
	}

	if !p.HandleEvent(key(' ')) {
		t.Fatal("space quit the player")
	}
	if p.Marquee().State() != marquee.Paused {
		t.Fatal("space did not pause")
	}
	p.Render()
	frozen := screenRow(s, 1)
	p.Render()
	if got := screenRow(s, 1); got != frozen {
		t.Fatalf("paused frame moved: %q -> %q", frozen, got)
	}
	if status := screenRow(s, 2); !strings.Contains(status, "paused") {
		t.Fatalf("status row = %q", status)
	}
}

func TestPlayerKeys(t *testing.T) {
	s := newSimScreen(t, 20, 3)
	p := NewPlayer(s, Options{Text: "abc", Speed: 1, Spacing: 2})

	p.HandleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if got := p.Marquee().Speed(); got != 2 {
		t.Fatalf("speed after up = %v", got)
	}
	p.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	p.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if got := p.Marquee().Speed(); got != 0 {
		t.Fatalf("speed after down = %v", got)
	}
	p.HandleEvent(key('+'))
	if got := p.Marquee().Spacing(); got != 3 {
		t.Fatalf("spacing after + = %v", got)
	}
	for i := 0; i < 5; i++ {
		p.HandleEvent(key('-'))
	}
	if got := p.Marquee().Spacing(); got != 0 {
		t.Fatalf("spacing after - = %v", got)
	}
	if p.HandleEvent(key('q')) {
		t.Fatal("q did not quit")
	}
	if p.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatal("Esc did not quit")
	}
}

func TestPlayerFeedText(t *testing.T) {
	s := newSimScreen(t, 6, 1)
	p := NewPlayer(s, Options{Text: "old", Spacing: 1})
	p.HandleEvent(tcell.NewEventInterrupt("new"))
	if got := p.Marquee().Text(); got != "new" {
		t.Fatalf("text = %q", got)
	}
	p.Render()
	if got := screenRow(s, 0); got != "new ne" {
		t.Fatalf("row = %q", got)
	}
}

func TestPlayerResize(t *testing.T) {
	s := newSimScreen(t, 6, 3)
	p := NewPlayer(s, Options{Text: "ab", Spacing: 1})
	p.Render()
	before := p.Marquee().Recomputes()

	s.SetSize(12, 5)
	p.HandleEvent(tcell.NewEventResize(12, 5))
	p.Render()
	if p.Marquee().Recomputes() != before+1 {
		t.Fatalf("recomputes = %d, want %d", p.Marquee().Recomputes(), before+1)
	}
	if got := screenRow(s, 2); got != "ab ab ab ab " {
		t.Fatalf("row = %q", got)
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	s := newSimScreen(t, 10, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, s, Options{Text: "hi", Speed: 1, Interval: 5 * time.Millisecond, Source: feed.Static("fed")})
	}()
	time.Sleep(50 * time.Millisecond)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run error: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("Run did not stop on q")
	}
}
