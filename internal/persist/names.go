package persist

import (
	"path"
	"strings"
)

// Filename postfixes of the three saved assets.
const (
	PostfixOriginal  = "_rgbyp_original"
	PostfixMask      = "_rgbyp_mask"
	PostfixComposite = "_rgbyp_composite"
)

// Names is the triple of asset filenames saved for one image.
type Names struct {
	Original  string
	Mask      string
	Composite string
}

// CanonicalFilename reduces a host image name to the name of the source
// image it was derived from. Any "subfolder/" prefix is dropped, and each
// editor postfix is removed together with whatever follows it up to the
// next dot, so "photo_rgbyp_composite (1).png" becomes "photo.png".
func CanonicalFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	for _, postfix := range []string{PostfixComposite, PostfixOriginal, PostfixMask} {
		name = stripPostfix(name, postfix)
	}
	return name
}

// stripPostfix removes the first occurrence of postfix and the text after
// it up to (not including) the next dot. Names without a dot after the
// postfix are left unchanged.
func stripPostfix(name, postfix string) string {
	i := strings.Index(name, postfix)
	if i < 0 {
		return name
	}
	rest := name[i+len(postfix):]
	dot := strings.Index(rest, ".")
	if dot < 0 {
		return name
	}
	return name[:i] + rest[dot:]
}

// DesiredNames returns the asset names for a canonical filename. The
// extension of the source is replaced by .png.
func DesiredNames(filename string) Names {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	return Names{
		Original:  stem + PostfixOriginal + ".png",
		Mask:      stem + PostfixMask + ".png",
		Composite: stem + PostfixComposite + ".png",
	}
}

// ManifestName returns the manifest filename for a host node.
func ManifestName(nodeID string) string {
	return "rgbyp_" + nodeID + ".json"
}

// ResolveNames decides which names a save writes. An existing manifest
// whose mask name equals the desired mask name is reused, keeping its
// original and composite names; otherwise the desired triple is minted.
func ResolveNames(existing *Manifest, desired Names) (Names, bool) {
	if existing == nil || existing.Mask == "" || existing.Mask != desired.Mask {
		return desired, false
	}
	names := Names{
		Original:  existing.Original,
		Mask:      existing.Mask,
		Composite: existing.Composite,
	}
	if names.Original == "" {
		names.Original = desired.Original
	}
	if names.Composite == "" {
		names.Composite = desired.Composite
	}
	return names, true
}
