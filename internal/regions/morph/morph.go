// Package morph applies OpenCV morphology to region masks.
package morph

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GrowBlur dilates mask with a square (2*grow+1) kernel and then applies a
// gaussian blur with sigma blur. Zero values skip the step.
func GrowBlur(mask *image.Gray, grow, blur int) (*image.Gray, error) {
	if grow < 0 {
		grow = 0
	}
	if blur < 0 {
		blur = 0
	}

	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	if w == 0 || h == 0 || (grow == 0 && blur == 0) {
		out := image.NewGray(image.Rect(0, 0, w, h))
		copyGray(out, mask)
		return out, nil
	}

	packed := image.NewGray(image.Rect(0, 0, w, h))
	copyGray(packed, mask)

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, packed.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create mat: %w", err)
	}
	defer mat.Close()

	if grow > 0 {
		k := 2*grow + 1
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k, Y: k})
		defer kernel.Close()
		gocv.Dilate(mat, &mat, kernel)
	}
	if blur > 0 {
		gocv.GaussianBlur(mat, &mat, image.Point{}, float64(blur), float64(blur), gocv.BorderReplicate)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, mat.ToBytes())
	return out, nil
}

func copyGray(dst, src *image.Gray) {
	w := src.Rect.Dx()
	for y := 0; y < src.Rect.Dy(); y++ {
		s := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[s:s+w])
	}
}
