package colorutil

import (
	"image/color"
	"testing"
)

func TestPaletteColor(t *testing.T) {
	if PaletteColor(1) != Green {
		t.Errorf("index 1 = %v, want green", PaletteColor(1))
	}
	if PaletteColor(-1) != Red || PaletteColor(PaletteSize) != Red {
		t.Error("out-of-range index should fall back to red")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		c    color.Color
		want int
	}{
		{Red, 0},
		{Green, 1},
		{Blue, 2},
		{Yellow, 3},
		{Pink, 4},
		{Transparent, -1},
		{color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1},
		{color.RGBA{R: 200, G: 30, B: 10, A: 255}, 0},
		// A half-transparent red is premultiplied below the threshold.
		{color.RGBA{R: 100, A: 100}, -1},
	}
	for _, tt := range tests {
		if got := Classify(tt.c); got != tt.want {
			t.Errorf("Classify(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestClampIndex(t *testing.T) {
	for in, want := range map[int]int{-3: 0, 0: 0, 4: 4, 9: 4} {
		if got := ClampIndex(in); got != want {
			t.Errorf("ClampIndex(%d) = %d, want %d", in, got, want)
		}
	}
}
