package regions

import (
	"image"
	"image/color"
	"math"
	"testing"

	"rgbyp-maskeditor/pkg/colorutil"
)

func TestSplitClassifiesColors(t *testing.T) {
	mask := image.NewRGBA(image.Rect(0, 0, 5, 2))
	for i, c := range colorutil.Palette() {
		mask.SetRGBA(i, 0, c)
	}
	// Row 1 stays transparent; one pixel is an off-palette gray.
	mask.SetRGBA(0, 1, color.RGBA{128, 128, 128, 255})

	regions := Split(mask, Options{})
	if len(regions) != colorutil.PaletteSize {
		t.Fatalf("regions = %d", len(regions))
	}
	for i, r := range regions {
		if r.Pixels != 1 {
			t.Errorf("%s: pixels = %d, want 1", r.Name, r.Pixels)
		}
		if got := r.Mask.GrayAt(i, 0).Y; got != 255 {
			t.Errorf("%s: own pixel = %d", r.Name, got)
		}
		if got := r.Mask.GrayAt((i+1)%5, 0).Y; got != 0 {
			t.Errorf("%s: other pixel = %d", r.Name, got)
		}
		if got := r.Mask.GrayAt(0, 1).Y; got != 0 {
			t.Errorf("%s: gray pixel classified", r.Name)
		}
	}
}

func TestSplitPlaceholder(t *testing.T) {
	mask := image.NewRGBA(image.Rect(0, 0, 10, 10))
	mask.SetRGBA(3, 3, colorutil.Green)

	regions := Split(mask, Options{Placeholder: true})
	for i, r := range regions {
		size := r.Mask.Bounds().Size()
		if i == 1 {
			if size != (image.Point{10, 10}) {
				t.Errorf("green mask size = %v", size)
			}
			continue
		}
		if size != (image.Point{PlaceholderSize, PlaceholderSize}) {
			t.Errorf("%s placeholder size = %v", r.Name, size)
		}
	}
}

func TestCoverage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		g.SetGray(x, 0, color.Gray{Y: 255})
	}
	if got := Coverage(g); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("Coverage = %v, want 0.25", got)
	}

	sub := g.SubImage(image.Rect(0, 0, 2, 2)).(*image.Gray)
	if got := Coverage(sub); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sub-image Coverage = %v, want 0.5", got)
	}
}

func TestSummarize(t *testing.T) {
	mask := image.NewRGBA(image.Rect(0, 0, 2, 2))
	mask.SetRGBA(0, 0, colorutil.Red)
	mask.SetRGBA(1, 0, colorutil.Red)

	stats := Summarize(Split(mask, Options{Placeholder: true}))
	if stats[0].Name != "R" || stats[0].Pixels != 2 || stats[0].Coverage != 0.5 {
		t.Errorf("red stats = %+v", stats[0])
	}
	if stats[4].Coverage != 0 {
		t.Errorf("placeholder coverage = %v", stats[4].Coverage)
	}
}
