package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func solidBase(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestNewModelIsTransparent(t *testing.T) {
	m := NewModel(4, 3)
	if m.Width() != 4 || m.Height() != 3 {
		t.Fatalf("size = %dx%d", m.Width(), m.Height())
	}
	for _, v := range m.Mask().Pix {
		if v != 0 {
			t.Fatal("new mask is not transparent")
		}
	}
}

func TestDrawBaseResizes(t *testing.T) {
	m := NewModel(2, 2)
	m.DrawBase(solidBase(5, 7, color.RGBA{10, 20, 30, 255}))
	if m.Width() != 5 || m.Height() != 7 {
		t.Fatalf("size = %dx%d, want 5x7", m.Width(), m.Height())
	}
	if got := m.Base().RGBAAt(4, 6); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("base pixel = %v", got)
	}
}

func TestResizeClearsMask(t *testing.T) {
	m := NewModel(4, 4)
	m.FillMask(m.Bounds(), color.RGBA{255, 0, 0, 255})
	m.Resize(8, 8)
	if m.MaskAlphaAt(1, 1) != 0 {
		t.Error("mask not cleared by Resize")
	}
}

func TestClearMaskKeepsBase(t *testing.T) {
	m := NewModel(3, 3)
	m.DrawBase(solidBase(3, 3, color.RGBA{1, 2, 3, 255}))
	m.FillMask(m.Bounds(), color.RGBA{0, 255, 0, 255})
	m.ClearMask()
	if m.MaskAlphaAt(0, 0) != 0 {
		t.Error("mask not cleared")
	}
	if m.Base().RGBAAt(0, 0) != (color.RGBA{1, 2, 3, 255}) {
		t.Error("base modified by ClearMask")
	}
}

func TestCompositeOpacity(t *testing.T) {
	tests := []struct {
		name    string
		opacity float64
		want    color.RGBA
	}{
		{"hidden mask", 0, color.RGBA{0, 0, 0, 255}},
		{"full mask", 1, color.RGBA{255, 0, 0, 255}},
		{"half mask", 0.5, color.RGBA{128, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(2, 2)
			m.DrawBase(solidBase(2, 2, color.RGBA{0, 0, 0, 255}))
			m.FillMask(m.Bounds(), color.RGBA{255, 0, 0, 255})
			m.SetOpacity(tt.opacity)

			got := m.Composite().RGBAAt(1, 1)
			if diff(got.R, tt.want.R) > 1 || got.G != tt.want.G || got.B != tt.want.B || got.A != tt.want.A {
				t.Errorf("composite = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeUnpaintedShowsBase(t *testing.T) {
	m := NewModel(2, 1)
	m.DrawBase(solidBase(2, 1, color.RGBA{40, 50, 60, 255}))
	m.FillMask(image.Rect(0, 0, 1, 1), color.RGBA{0, 0, 255, 255})
	m.SetOpacity(1)

	c := m.Composite()
	if c.RGBAAt(0, 0) != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("painted pixel = %v", c.RGBAAt(0, 0))
	}
	if c.RGBAAt(1, 0) != (color.RGBA{40, 50, 60, 255}) {
		t.Errorf("unpainted pixel = %v", c.RGBAAt(1, 0))
	}
}

func TestCompositeIsIdempotent(t *testing.T) {
	m := NewModel(6, 6)
	m.DrawBase(solidBase(6, 6, color.RGBA{90, 90, 90, 255}))
	m.FillMask(image.Rect(1, 1, 4, 4), color.RGBA{255, 255, 0, 255})
	m.SetOpacity(0.75)

	dst := image.NewRGBA(m.Bounds())
	m.CompositeTo(dst)
	first := append([]byte(nil), dst.Pix...)
	m.CompositeTo(dst)
	if !bytes.Equal(first, dst.Pix) {
		t.Error("re-compositing into the same buffer changed the result")
	}
	if !bytes.Equal(first, m.Composite().Pix) {
		t.Error("fresh composite differs")
	}
}

func TestSetOpacityClamps(t *testing.T) {
	m := NewModel(1, 1)
	for in, want := range map[float64]float64{-2: 0, 0.3: 0.3, 7: 1} {
		m.SetOpacity(in)
		if m.Opacity() != want {
			t.Errorf("SetOpacity(%v) -> %v, want %v", in, m.Opacity(), want)
		}
	}
}

func TestPNGRoundTrip(t *testing.T) {
	m := NewModel(3, 2)
	m.FillMask(image.Rect(0, 0, 2, 2), color.RGBA{255, 0, 255, 255})

	data, err := EncodePNG(m.Mask())
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	other := NewModel(3, 2)
	other.DrawMask(img)
	if !bytes.Equal(other.Mask().Pix, m.Mask().Pix) {
		t.Error("decoded mask differs from original")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for path, want := range map[string]bool{
		"photo.png": true, "scan.TIF": true, "a.jpeg": true, "notes.txt": false, "noext": false,
	} {
		if got := IsSupportedFormat(path); got != want {
			t.Errorf("IsSupportedFormat(%q) = %v", path, got)
		}
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
