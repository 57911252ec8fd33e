// Command marqueegif renders one full loop of a running text into an animated
// GIF and checks that every frame matches the same frame one cycle later, so
// the loop has no visible gap or jump.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"log"
	"math"
	"os"
	"strings"

	"github.com/edward-ap/runningtext/internal/marquee"
	"github.com/edward-ap/runningtext/internal/raster"
)

var errSeam = errors.New("seam mismatch")

type options struct {
	text      string
	width     int
	size      float32
	speed     float32
	spacing   float32
	bitmap    bool
	maxFrames int
	delay     int // hundredths of a second
}

type result struct {
	anim   *gif.GIF
	frames int
	cycle  float32
}

func main() {
	var o options
	flag.StringVar(&o.text, "text", "This is a demo running text :)", "text to scroll")
	flag.IntVar(&o.width, "width", 320, "frame width in pixels")
	size := flag.Float64("size", 18, "font size in pixels")
	speed := flag.Float64("speed", 2, "pixels per frame")
	spacing := flag.Float64("spacing", 48, "requested gap between repetitions")
	flag.BoolVar(&o.bitmap, "bitmap", false, "use the 7x13 bitmap font")
	flag.IntVar(&o.maxFrames, "maxFrames", 2000, "stop after this many frames")
	flag.IntVar(&o.delay, "delay", 3, "frame delay in hundredths of a second")
	out := flag.String("out", "marquee.gif", "output file")
	flag.Parse()
	o.size, o.speed, o.spacing = float32(*size), float32(*speed), float32(*spacing)

	res, err := render(o)
	if err != nil {
		log.Fatal(err)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, res.anim); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %d frames, cycle %.1fpx, seam ok\n", *out, res.frames, res.cycle)
}

// render scrolls the text through one cycle on a headless surface.
func render(o options) (*result, error) {
	if o.speed <= 0 {
		return nil, fmt.Errorf("speed must be positive, got %v", o.speed)
	}
	c, ref, err := canvases(o.bitmap)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	defer ref.Close()

	style := marquee.Style{Size: o.size, Color: color.White}
	h := int(math.Ceil(float64(c.FontMetrics(style).Height()))) + 4
	s := raster.NewSurface(c, o.width, h)

	var frameErr error
	m := marquee.New(s,
		marquee.WithStyle(style),
		marquee.WithSpeed(o.speed),
		marquee.WithSpacing(o.spacing),
		marquee.WithErrorHandler(func(err error) { frameErr = err }),
	)
	m.SetText(o.text)
	m.Resume()

	res := &result{anim: &gif.GIF{}}
	ref.Reset(o.width, h)
	for i := 0; i < o.maxFrames; i++ {
		at := m.Offset()
		if !s.Step() {
			break
		}
		if frameErr != nil {
			return nil, frameErr
		}
		l, _ := m.Layout()
		res.cycle = l.CycleWidth
		if err := checkSeam(c.Image(), ref, style, l, o.text, at, h); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		res.anim.Image = append(res.anim.Image, toPaletted(c.Image()))
		res.anim.Delay = append(res.anim.Delay, o.delay)
		res.frames++
		if float32(res.frames)*o.speed >= res.cycle {
			break
		}
	}
	return res, nil
}

func canvases(bitmap bool) (*raster.Canvas, *raster.Canvas, error) {
	if bitmap {
		return raster.NewBitmapCanvas(), raster.NewBitmapCanvas(), nil
	}
	c, err := raster.NewGoCanvas()
	if err != nil {
		return nil, nil, err
	}
	ref, err := raster.NewGoCanvas()
	if err != nil {
		return nil, nil, err
	}
	return c, ref, nil
}

// checkSeam redraws the frame one cycle further along a buffer long enough
// to cover the viewport at any offset, and compares pixels.
func checkSeam(frame *image.RGBA, ref *raster.Canvas, style marquee.Style, l marquee.Layout, text string, at float32, h int) error {
	ref.Clear()
	m := ref.FontMetrics(style)
	y := (float32(h) + m.Ascent - m.Descent) / 2
	long := l.Buffer + strings.Repeat(l.Spacing+text, 2)
	ref.DrawText(style, long, at-l.CycleWidth, y)
	if n := diffPixels(frame, ref.Image()); n > 0 {
		return fmt.Errorf("%w: %d pixels differ at offset %.1f", errSeam, n, at)
	}
	return nil
}

func diffPixels(a, b *image.RGBA) int {
	if a.Bounds() != b.Bounds() {
		return a.Bounds().Dx() * a.Bounds().Dy()
	}
	n := 0
	for i := 0; i+3 < len(a.Pix); i += 4 {
		if !bytes.Equal(a.Pix[i:i+4], b.Pix[i:i+4]) {
			n++
		}
	}
	return n
}

// toPaletted flattens the transparent frame onto black for GIF output.
func toPaletted(src *image.RGBA) *image.Paletted {
	b := src.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.Black, image.Point{}, draw.Src)
	draw.Draw(flat, b, src, b.Min, draw.Over)
	dst := image.NewPaletted(b, palette.Plan9)
	draw.Draw(dst, b, flat, b.Min, draw.Src)
	return dst
}
