package vtcore

import (
	"image/color"
	"testing"
)

func TestDefaultPaletteLayout(t *testing.T) {
	// Base colors.
	if DefaultPalette[1] != (color.RGBA{205, 49, 49, 255}) {
		t.Errorf("palette[1] = %v", DefaultPalette[1])
	}
	if DefaultPalette[15] != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("palette[15] = %v", DefaultPalette[15])
	}

	// Color cube corners: 16 is black, 231 is white, 196 is pure red
	// (16 + 5*36).
	if DefaultPalette[16] != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("palette[16] = %v", DefaultPalette[16])
	}
	if DefaultPalette[196] != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("palette[196] = %v", DefaultPalette[196])
	}
	if DefaultPalette[231] != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("palette[231] = %v", DefaultPalette[231])
	}

	// Grayscale ramp endpoints.
	if DefaultPalette[232] != (color.RGBA{8, 8, 8, 255}) {
		t.Errorf("palette[232] = %v", DefaultPalette[232])
	}
	if DefaultPalette[255] != (color.RGBA{238, 238, 238, 255}) {
		t.Errorf("palette[255] = %v", DefaultPalette[255])
	}
}

func TestResolveDefaultColor(t *testing.T) {
	if got := resolveDefaultColor(nil, true); got != DefaultForeground {
		t.Errorf("nil fg = %v", got)
	}
	if got := resolveDefaultColor(nil, false); got != DefaultBackground {
		t.Errorf("nil bg = %v", got)
	}
	if got := resolveDefaultColor(&IndexedColor{Index: 196}, true); got != DefaultPalette[196] {
		t.Errorf("indexed = %v", got)
	}
	if got := resolveDefaultColor(&IndexedColor{Index: 999}, false); got != DefaultBackground {
		t.Errorf("out-of-range index = %v, want bg default", got)
	}
	if got := resolveDefaultColor(&NamedColor{Name: NamedColorCursor}, true); got != DefaultCursorColor {
		t.Errorf("named cursor = %v", got)
	}
	rgb := color.RGBA{1, 2, 3, 255}
	if got := resolveDefaultColor(rgb, true); got != rgb {
		t.Errorf("rgba passthrough = %v", got)
	}
}
