// Command masksplit splits a painted RGBYP mask into one black-and-white
// mask per color, the way the compute pipeline consumes it.
//
// The mask is read from a local PNG (-mask) or from the asset store through
// a node's manifest (-node).
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/config"
	"rgbyp-maskeditor/internal/persist"
	"rgbyp-maskeditor/internal/raster"
	"rgbyp-maskeditor/internal/regions"
	"rgbyp-maskeditor/internal/regions/morph"
)

func main() {
	maskPath := flag.String("mask", "", "path to a mask PNG")
	nodeID := flag.String("node", "", "read the mask saved for this node from the asset store")
	configPath := flag.String("config", "", "path to YAML config file (with -node)")
	outDir := flag.String("out", ".", "output directory")
	grow := flag.Int("grow", 0, "dilate each region by this many pixels")
	blur := flag.Int("blur", 0, "gaussian blur sigma applied after growing")
	placeholder := flag.Bool("placeholder", true, "write a 64x64 black mask for absent colors")
	flag.Parse()

	if (*maskPath == "") == (*nodeID == "") {
		fmt.Println("Usage: masksplit (-mask <path> | -node <id> [-config <file>]) [-out dir] [-grow n] [-blur n]")
		os.Exit(1)
	}

	mask, stem, err := loadMask(context.Background(), *maskPath, *nodeID, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load mask: %v\n", err)
		os.Exit(1)
	}

	b := mask.Bounds()
	fmt.Printf("Loaded mask %s: %dx%d pixels\n", stem, b.Dx(), b.Dy())

	regs := regions.Split(mask, regions.Options{Placeholder: *placeholder})

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%-6s %10s %10s  %s\n", "Color", "Pixels", "Coverage", "File")
	for i, st := range regions.Summarize(regs) {
		out := regs[i].Mask
		if (*grow > 0 || *blur > 0) && !regs[i].Empty() {
			out, err = morph.GrowBlur(out, *grow, *blur)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to grow/blur %s: %v\n", st.Name, err)
				os.Exit(1)
			}
		}

		path := filepath.Join(*outDir, fmt.Sprintf("%s_%s.png", stem, strings.ToLower(st.Name)))
		if err := writePNG(path, out); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("%-6s %10d %9.2f%%  %s\n", st.Name, st.Pixels, st.Coverage*100, path)
	}
}

// loadMask returns the mask image and a file stem for the outputs.
func loadMask(ctx context.Context, path, nodeID, configPath string) (image.Image, string, error) {
	if path != "" {
		img, err := raster.Load(path)
		if err != nil {
			return nil, "", err
		}
		return img, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", err
	}
	store, closeStore, err := cfg.Store.OpenStore()
	if err != nil {
		return nil, "", err
	}
	defer closeStore()

	proto := persist.New(store)
	m, err := proto.ReadManifest(ctx, nodeID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read manifest for node %s: %w", nodeID, err)
	}
	if m.Mask == "" {
		return nil, "", fmt.Errorf("node %s has no saved mask", nodeID)
	}
	data, err := store.Fetch(ctx, assets.Temp(m.Mask))
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch mask %s: %w", m.Mask, err)
	}
	img, err := raster.Decode(data)
	if err != nil {
		return nil, "", err
	}
	return img, strings.TrimSuffix(m.Mask, filepath.Ext(m.Mask)), nil
}

func writePNG(path string, img image.Image) error {
	data, err := raster.EncodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
