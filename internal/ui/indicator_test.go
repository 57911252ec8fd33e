package ui

import (
	"image/color"
	"testing"
)

func TestHSVToNRGBA(t *testing.T) {
	tests := []struct {
		name    string
		h, s, v float64
		want    color.NRGBA
	}{
		{name: "red", h: 0, s: 1, v: 1, want: color.NRGBA{0xff, 0, 0, 0xff}},
		{name: "green", h: 120, s: 1, v: 1, want: color.NRGBA{0, 0xff, 0, 0xff}},
		{name: "blue", h: 240, s: 1, v: 1, want: color.NRGBA{0, 0, 0xff, 0xff}},
		{name: "full turn wraps", h: 360, s: 1, v: 1, want: color.NRGBA{0xff, 0, 0, 0xff}},
		{name: "gray without saturation", h: 200, s: 0, v: 0.5, want: color.NRGBA{0x80, 0x80, 0x80, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hsvToNRGBA(tt.h, tt.s, tt.v); got != tt.want {
				t.Fatalf("hsvToNRGBA(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.v, got, tt.want)
			}
		})
	}
}
