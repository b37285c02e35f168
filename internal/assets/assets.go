// Package assets defines the named blob store shared by the editor and the
// compute pipeline.
//
// Blobs are addressed by a Ref: an area, an optional subfolder and a
// filename. The temp area holds the editor's working files (manifest, mask,
// composite); the input area holds finalized images the pipeline picks up.
package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Area names a top-level storage area.
type Area string

const (
	AreaTemp  Area = "temp"
	AreaInput Area = "input"
)

// ErrNotFound is returned by Fetch when no blob exists for a ref.
var ErrNotFound = errors.New("asset not found")

// ErrInvalidRef is returned for refs that would escape their area.
var ErrInvalidRef = errors.New("invalid asset reference")

// Ref addresses one blob.
type Ref struct {
	Filename  string `json:"name"`
	Subfolder string `json:"subfolder"`
	Area      Area   `json:"type"`
}

// Temp returns a ref in the working area.
func Temp(filename string) Ref {
	return Ref{Filename: filename, Area: AreaTemp}
}

// Input returns a ref in the finalized area.
func Input(subfolder, filename string) Ref {
	return Ref{Filename: filename, Subfolder: subfolder, Area: AreaInput}
}

// ParseArea maps a wire area name to an Area. Empty means temp.
func ParseArea(s string) (Area, error) {
	switch Area(s) {
	case "", AreaTemp:
		return AreaTemp, nil
	case AreaInput:
		return AreaInput, nil
	default:
		return "", fmt.Errorf("%w: unknown area %q", ErrInvalidRef, s)
	}
}

// Validate checks that the ref names a file inside its area.
func (r Ref) Validate() error {
	if _, err := ParseArea(string(r.Area)); err != nil {
		return err
	}
	if r.Filename == "" || strings.ContainsAny(r.Filename, `/\`) || r.Filename == "." || r.Filename == ".." {
		return fmt.Errorf("%w: filename %q", ErrInvalidRef, r.Filename)
	}
	if r.Subfolder != "" {
		clean := path.Clean(r.Subfolder)
		if strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(r.Subfolder, `\`) {
			return fmt.Errorf("%w: subfolder %q", ErrInvalidRef, r.Subfolder)
		}
	}
	return nil
}

// Key returns the slash-separated path of the blob within the store,
// e.g. "input/rgbyp/photo_rgbyp_composite.png".
func (r Ref) Key() string {
	area := r.Area
	if area == "" {
		area = AreaTemp
	}
	if r.Subfolder == "" {
		return path.Join(string(area), r.Filename)
	}
	return path.Join(string(area), path.Clean(r.Subfolder), r.Filename)
}

func (r Ref) String() string {
	return r.Key()
}

// Store uploads and fetches blobs.
type Store interface {
	// Upload stores data under ref. Without overwrite, an existing blob is
	// kept and the name is made unique; the returned ref names the blob
	// actually written.
	Upload(ctx context.Context, ref Ref, data []byte, overwrite bool) (Ref, error)

	// Fetch returns the blob for ref, or an error wrapping ErrNotFound.
	Fetch(ctx context.Context, ref Ref) ([]byte, error)
}

// UniqueName returns filename, or filename with " (n)" inserted before the
// extension, choosing the first candidate for which exists reports false.
func UniqueName(filename string, exists func(string) bool) string {
	if !exists(filename) {
		return filename
	}
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}
