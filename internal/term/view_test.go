package term

import (
	"image/color"
	"strings"
	"testing"

	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/gdamore/tcell/v2"
)

type grid struct {
	w, h  int
	cells [][]rune
	dim   [][]bool
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h}
	for y := 0; y < h; y++ {
		g.cells = append(g.cells, []rune(strings.Repeat(".", w)))
		g.dim = append(g.dim, make([]bool, w))
	}
	return g
}

func (g *grid) SetContent(x, y int, r rune, _ []rune, st tcell.Style) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		panic("write outside grid")
	}
	_, _, attr := st.Decompose()
	g.cells[y][x] = r
	g.dim[y][x] = attr&tcell.AttrDim != 0
}

func (g *grid) row(y int) string { return string(g.cells[y]) }

func TestViewMetrics(t *testing.T) {
	v := NewView(newGrid(4, 1))
	if _, _, ok := v.ViewportSize(); ok {
		t.Fatal("view resolved before SetRegion")
	}
	v.SetRegion(0, 0, 4, 1)
	if w, h, ok := v.ViewportSize(); !ok || w != 4 || h != 1 {
		t.Fatalf("ViewportSize = %v %v %v", w, h, ok)
	}
	tests := []struct {
		text string
		want float32
	}{
		{text: "AB", want: 2},
		{text: "  ", want: 2},
		{text: "日本", want: 4},
		{text: "", want: 0},
	}
	for _, tt := range tests {
		if got := v.MeasureText(marquee.Style{}, tt.text); got != tt.want {
			t.Errorf("MeasureText(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestViewDrawClips(t *testing.T) {
	tests := []struct {
		name string
		x    float32
		text string
		want string
	}{
		{name: "inside", x: 1, text: "AB", want: " AB  "},
		{name: "left clip", x: -1, text: "ABC", want: "BC   "},
		{name: "right clip", x: 3, text: "ABC", want: "   AB"},
		{name: "fractional floors", x: 0.6, text: "A", want: "A    "},
		{name: "wide rune straddling edge is dropped", x: 4, text: "日", want: "     "},
		// the trailing half of a wide rune keeps the cleared cell
		{name: "wide rune", x: 1, text: "日x", want: " 日 x "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(7, 3)
			v := NewView(g)
			v.SetRegion(1, 1, 5, 1)
			v.Clear()
			v.DrawText(marquee.Style{}, tt.text, tt.x, 1)
			if got := string(g.cells[1][1:6]); got != tt.want {
				t.Fatalf("row = %q, want %q", got, tt.want)
			}
			if g.row(0) != "......." || g.row(2) != "......." {
				t.Fatal("drew outside the region rows")
			}
			if g.cells[1][0] != '.' || g.cells[1][6] != '.' {
				t.Fatal("drew outside the region columns")
			}
		})
	}
}

func TestViewFadeDims(t *testing.T) {
	g := newGrid(6, 1)
	v := NewView(g)
	v.SetRegion(0, 0, 6, 1)
	v.SetFade(2)
	v.DrawText(marquee.Style{Color: color.White}, "abcdef", 0, 1)
	want := []bool{true, true, false, false, true, true}
	for i, d := range want {
		if g.dim[0][i] != d {
			t.Fatalf("dim[%d] = %v, want %v", i, g.dim[0][i], d)
		}
	}
}

func TestViewFrameRequests(t *testing.T) {
	v := NewView(newGrid(1, 1))
	if v.RunFrame() {
		t.Fatal("RunFrame ran without a request")
	}
	calls := 0
	v.RequestNextFrame(func() { calls++ })
	if !v.Pending() {
		t.Fatal("request not pending")
	}
	if !v.RunFrame() || calls != 1 || v.Pending() {
		t.Fatalf("calls=%d pending=%v", calls, v.Pending())
	}
}

func TestMarqueeOnView(t *testing.T) {
	g := newGrid(10, 1)
	v := NewView(g)
	v.SetRegion(0, 0, 10, 1)
	m := marquee.New(v, marquee.WithSpeed(1), marquee.WithSpacing(2))
	m.SetText("abc")
	m.Resume()

	frames := []string{
		"abc  abc  ",
		"bc  abc  a",
		"c  abc  ab",
		"  abc  abc",
		" abc  abc ",
		"abc  abc  ",
	}
	for i, want := range frames {
		v.Clear()
		if !v.RunFrame() {
			t.Fatalf("frame %d: nothing scheduled", i)
		}
		if got := g.row(0); got != want {
			t.Fatalf("frame %d = %q, want %q", i, got, want)
		}
	}
}
