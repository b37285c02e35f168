// Package persist maps editor state to stored assets: the original image,
// the painted mask, the baked composite and a small per-node manifest that
// ties them together.
package persist

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/raster"
)

// Errors reported by Open and Save.
var (
	ErrAssetNotFound    = fmt.Errorf("persist: %w", assets.ErrNotFound)
	ErrManifestMismatch = errors.New("persist: manifest belongs to another image")
	ErrDecode           = errors.New("persist: decode failed")
	ErrUpload           = errors.New("persist: upload failed")
)

// CompositeSubfolder is the input-area subfolder that receives composites.
const CompositeSubfolder = "rgbyp"

// Node identifies the host node being edited and the image it shows.
type Node struct {
	ID     string
	Source assets.Ref
}

// LoadResult is what Open resolved for a node.
type LoadResult struct {
	Base image.Image
	// Mask is nil when the editor starts with a blank mask.
	Mask image.Image
	// Manifest is the manifest the buffers came from, nil on fallback.
	Manifest *Manifest
	// Fallback records why the manifest could not be used, nil otherwise.
	Fallback error
}

// SaveResult reports what Save wrote.
type SaveResult struct {
	Names           Names
	Reused          bool
	ManifestWritten bool
	// Composite is the working-area ref of the composite, set only when
	// that upload succeeded.
	Composite assets.Ref
	// Err joins every failed step.
	Err error
}

// Saved reports whether the composite reached the working area.
func (r *SaveResult) Saved() bool {
	return r.Composite.Filename != ""
}

// Protocol loads and saves editor state through a Store.
type Protocol struct {
	store assets.Store
}

// New creates a protocol over store.
func New(store assets.Store) *Protocol {
	return &Protocol{store: store}
}

// Store returns the underlying store.
func (p *Protocol) Store() assets.Store {
	return p.store
}

// ReadManifest fetches and decodes the manifest of nodeID.
func (p *Protocol) ReadManifest(ctx context.Context, nodeID string) (*Manifest, error) {
	data, err := p.store.Fetch(ctx, assets.Temp(ManifestName(nodeID)))
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, ManifestName(nodeID))
		}
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	return DecodeManifest(data)
}

// Open resolves the buffers the editor starts from. A manifest written for
// the node's current image supplies the original and mask; any problem with
// it falls back to the host source image and a blank mask. Open fails only
// when no base image can be loaded at all.
func (p *Protocol) Open(ctx context.Context, node Node) (*LoadResult, error) {
	res := &LoadResult{}

	m, err := p.ReadManifest(ctx, node.ID)
	switch {
	case err != nil:
		res.Fallback = err
	case !m.Matches(node.Source.Filename):
		res.Fallback = fmt.Errorf("%w: %q is not %q", ErrManifestMismatch, m.Original, node.Source.Filename)
	default:
		res.Manifest = m
	}
	if res.Fallback != nil {
		log.Printf("Persist: node %s: using source image: %v", node.ID, res.Fallback)
	}

	if m := res.Manifest; m != nil {
		base, err := p.fetchImage(ctx, assets.Temp(m.Original))
		if err != nil {
			log.Printf("Persist: node %s: failed to load original %s, using source image: %v", node.ID, m.Original, err)
			res.Fallback = err
		} else {
			res.Base = base
		}

		if name := strings.TrimSpace(m.Mask); name != "" {
			mask, err := p.fetchImage(ctx, assets.Temp(name))
			if err != nil {
				log.Printf("Persist: node %s: failed to load mask %s, starting blank: %v", node.ID, name, err)
			} else {
				res.Mask = mask
			}
		}
	}

	if res.Base == nil {
		base, err := p.fetchImage(ctx, node.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to load source image %s: %w", node.Source, err)
		}
		res.Base = base
	}
	return res, nil
}

func (p *Protocol) fetchImage(ctx context.Context, ref assets.Ref) (image.Image, error) {
	data, err := p.store.Fetch(ctx, ref)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, ref)
		}
		return nil, err
	}
	img, err := raster.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, ref, err)
	}
	return img, nil
}

// Save writes the model's buffers for node. The original is uploaded and
// the manifest written only when a new name triple is minted; mask and
// composite are always written. A failed step is logged and the remaining
// steps still run.
func (p *Protocol) Save(ctx context.Context, node Node, model *raster.Model) *SaveResult {
	desired := DesiredNames(CanonicalFilename(node.Source.Filename))

	existing, err := p.ReadManifest(ctx, node.ID)
	if err != nil && !errors.Is(err, ErrAssetNotFound) {
		log.Printf("Persist: node %s: ignoring unreadable manifest: %v", node.ID, err)
	}

	names, reuse := ResolveNames(existing, desired)
	res := &SaveResult{Names: names, Reused: reuse}
	var errs []error

	upload := func(ref assets.Ref, img image.Image) bool {
		data, err := raster.EncodePNG(img)
		if err == nil {
			_, err = p.store.Upload(ctx, ref, data, true)
		}
		if err != nil {
			log.Printf("Persist: node %s: failed to upload %s: %v", node.ID, ref, err)
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrUpload, ref, err))
			return false
		}
		return true
	}

	if !reuse {
		upload(assets.Temp(names.Original), model.Base())
	}
	upload(assets.Temp(names.Mask), model.Mask())

	composite := model.Composite()
	if upload(assets.Temp(names.Composite), composite) {
		res.Composite = assets.Temp(names.Composite)
	}
	upload(assets.Input(CompositeSubfolder, names.Composite), composite)

	if !reuse {
		m := &Manifest{
			Original:  names.Original,
			Mask:      names.Mask,
			Composite: names.Composite,
			Width:     model.Width(),
			Height:    model.Height(),
		}
		if err := p.writeManifest(ctx, node.ID, m); err != nil {
			log.Printf("Persist: node %s: %v", node.ID, err)
			errs = append(errs, err)
		} else {
			res.ManifestWritten = true
		}
	} else {
		log.Printf("Persist: node %s: manifest %s left unchanged", node.ID, ManifestName(node.ID))
	}

	res.Err = errors.Join(errs...)
	log.Printf("Persist: node %s: saved %s (reused=%v, opacity=%.2f)", node.ID, names.Composite, reuse, model.Opacity())
	return res
}

func (p *Protocol) writeManifest(ctx context.Context, nodeID string, m *Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if _, err := p.store.Upload(ctx, assets.Temp(ManifestName(nodeID)), data, true); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpload, ManifestName(nodeID), err)
	}
	return nil
}
