package morph

import (
	"image"
	"image/color"
	"testing"
)

func dot(size, x, y int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, size, size))
	m.SetGray(x, y, color.Gray{Y: 255})
	return m
}

func TestGrowIsSquareOfTwoGPlusOne(t *testing.T) {
	out, err := GrowBlur(dot(21, 10, 10), 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			inside := x >= 8 && x <= 12 && y >= 8 && y <= 12
			got := out.GrayAt(x, y).Y
			if inside && got != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 255", x, y, got)
			}
			if !inside && got != 0 {
				t.Fatalf("pixel (%d,%d) = %d, want 0", x, y, got)
			}
		}
	}
}

func TestZeroGrowBlurCopies(t *testing.T) {
	src := dot(12, 3, 4)
	// A sub-image comes back rebased to the origin.
	sub := src.SubImage(image.Rect(2, 2, 10, 10)).(*image.Gray)

	out, err := GrowBlur(sub, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rect != image.Rect(0, 0, 8, 8) {
		t.Fatalf("rect = %v", out.Rect)
	}
	if got := out.GrayAt(1, 2).Y; got != 255 {
		t.Errorf("dot = %d, want 255", got)
	}
	out.SetGray(1, 2, color.Gray{})
	if src.GrayAt(3, 4).Y != 255 {
		t.Error("output aliases the input")
	}
}

func TestBlurSpreadsEdges(t *testing.T) {
	out, err := GrowBlur(dot(21, 10, 10), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	center, near := out.GrayAt(10, 10).Y, out.GrayAt(13, 10).Y
	if center == 0 || center == 255 {
		t.Errorf("center = %d, want softened", center)
	}
	if near == 0 || near >= center {
		t.Errorf("pixel beside the grown square = %d, center %d", near, center)
	}
}
