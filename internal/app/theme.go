// Package app holds application-wide presentation settings.
package app

import (
	"image/color"

	"rgbyp-maskeditor/internal/display"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ToolbarPadding is the padding between toolbar widgets.
const ToolbarPadding = 3

// MaskEditorTheme is the dark default theme with neutral accents, so the
// only saturated colors on screen are the mask colors. Fonts and icons come
// from the embedded default.
type MaskEditorTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*MaskEditorTheme)(nil)

// NewMaskEditorTheme wraps the fyne default theme.
func NewMaskEditorTheme() *MaskEditorTheme {
	return &MaskEditorTheme{Theme: theme.DefaultTheme()}
}

// Color ignores the requested variant; the editor is always dark.
func (t *MaskEditorTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		// Matches the canvas around the image.
		return display.Background
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return color.NRGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x40}
	}
	return t.Theme.Color(name, theme.VariantDark)
}

func (t *MaskEditorTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNamePadding {
		return ToolbarPadding
	}
	return t.Theme.Size(name)
}
