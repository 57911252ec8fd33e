package marquee

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// MaxSpacingRuns bounds the whitespace run between repetitions.
	MaxSpacingRuns = 4096
	// MaxRepeats bounds how many repetitions a buffer may hold.
	MaxRepeats = 1 << 16
)

var (
	// ErrUnresolvedViewport means layout was attempted without a concrete width.
	ErrUnresolvedViewport = errors.New("marquee: viewport width unresolved")
	// ErrEmptyText means there is nothing to lay out.
	ErrEmptyText = errors.New("marquee: empty text")
	// ErrDegenerateSpacing means the requested spacing can not be reached
	// with the active font (zero-width space or an absurd request).
	ErrDegenerateSpacing = errors.New("marquee: degenerate spacing")
	// ErrDegenerateLayout means one cycle has no width, so no number of
	// repetitions can cover the viewport.
	ErrDegenerateLayout = errors.New("marquee: degenerate layout")
)

// Layout is the result of one recompute.
type Layout struct {
	Buffer       string
	Spacing      string
	TextWidth    float32
	SpacingWidth float32
	// CycleWidth is the scroll distance after which the content repeats.
	CycleWidth  float32
	BufferWidth float32
	// Repeats is how many spacing+text runs were appended after the first text.
	Repeats int
}

// ComputeLayout builds the expanded buffer for text in a viewport of the
// given width. desiredSpacing is rounded up to a whole number of spaces.
func ComputeLayout(m Measurer, style Style, text string, viewportWidth, desiredSpacing float32) (Layout, error) {
	if !(viewportWidth > 0) || math.IsInf(float64(viewportWidth), 0) {
		return Layout{}, ErrUnresolvedViewport
	}
	if text == "" {
		return Layout{}, ErrEmptyText
	}

	spacing, spacingW, err := normalizeSpacing(m, style, desiredSpacing)
	if err != nil {
		return Layout{}, err
	}

	textW := m.MeasureText(style, text)
	cycle := textW + spacingW
	if !(cycle > 0) {
		return Layout{}, fmt.Errorf("%w: cycle width %v for %q", ErrDegenerateLayout, cycle, text)
	}

	var b strings.Builder
	b.WriteString(text)
	var added float32
	k := 0
	for added < viewportWidth {
		if k >= MaxRepeats {
			return Layout{}, fmt.Errorf("%w: more than %d repetitions for viewport %v", ErrDegenerateLayout, MaxRepeats, viewportWidth)
		}
		b.WriteString(spacing)
		b.WriteString(text)
		added += cycle
		k++
	}

	return Layout{
		Buffer:       b.String(),
		Spacing:      spacing,
		TextWidth:    textW,
		SpacingWidth: spacingW,
		CycleWidth:   cycle,
		BufferWidth:  textW + added,
		Repeats:      k,
	}, nil
}

// normalizeSpacing returns the shortest run of spaces at least desired wide,
// together with its accumulated width.
func normalizeSpacing(m Measurer, style Style, desired float32) (string, float32, error) {
	if !(desired > 0) {
		return "", 0, nil
	}
	spaceW := m.MeasureText(style, " ")
	if !(spaceW > 0) {
		return "", 0, fmt.Errorf("%w: space width %v, want >= %v", ErrDegenerateSpacing, spaceW, desired)
	}
	var total float32
	n := 0
	for total < desired {
		if n >= MaxSpacingRuns {
			return "", 0, fmt.Errorf("%w: %v px needs more than %d spaces", ErrDegenerateSpacing, desired, MaxSpacingRuns)
		}
		n++
		total += spaceW
	}
	return strings.Repeat(" ", n), total, nil
}

// Covers reports whether the buffer drawn at offset shows the repeating
// pattern on every column of [0, viewportWidth). Columns past the end of the
// buffer count as covered while they fall in the spacing gap that would
// follow the last repetition anyway.
func (l Layout) Covers(offset, viewportWidth float32) bool {
	if l.CycleWidth <= 0 {
		return false
	}
	if offset > 0 {
		// inset: the left margin stays blank.
		viewportWidth -= offset
		offset = 0
	}
	end := offset + l.BufferWidth
	return end+l.SpacingWidth >= viewportWidth
}
