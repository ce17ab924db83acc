package vtcore

import "image/color"

// DefaultPalette holds the 256-color xterm palette a renderer resolves
// IndexedColor cells against when the host has not overridden a slot via
// OSC 4: 16 base colors, a 6x6x6 color cube (16-231), and a 24-step
// grayscale ramp (232-255).
var DefaultPalette [256]color.RGBA

// base16 is the standard-and-bright half of the palette.
var base16 = [16]color.RGBA{
	{0, 0, 0, 255},       // black
	{205, 49, 49, 255},   // red
	{13, 188, 121, 255},  // green
	{229, 229, 16, 255},  // yellow
	{36, 114, 200, 255},  // blue
	{188, 63, 188, 255},  // magenta
	{17, 168, 205, 255},  // cyan
	{229, 229, 229, 255}, // white
	{102, 102, 102, 255}, // bright black
	{241, 76, 76, 255},   // bright red
	{35, 209, 139, 255},  // bright green
	{245, 245, 67, 255},  // bright yellow
	{59, 142, 234, 255},  // bright blue
	{214, 112, 214, 255}, // bright magenta
	{41, 184, 219, 255},  // bright cyan
	{255, 255, 255, 255}, // bright white
}

func init() {
	copy(DefaultPalette[:16], base16[:])

	// 6x6x6 color cube (16-231).
	for i := 16; i < 232; i++ {
		n := i - 16
		DefaultPalette[i] = color.RGBA{
			R: uint8(n / 36 % 6 * 51),
			G: uint8(n / 6 % 6 * 51),
			B: uint8(n % 6 * 51),
			A: 255,
		}
	}

	// Grayscale ramp (232-255).
	for i := 232; i < 256; i++ {
		gray := uint8(8 + (i-232)*10)
		DefaultPalette[i] = color.RGBA{gray, gray, gray, 255}
	}
}

// Default colors a renderer falls back to when a cell carries nil (terminal
// default) and the host supplied no theme.
var (
	DefaultForeground  = color.RGBA{229, 229, 229, 255}
	DefaultBackground  = color.RGBA{0, 0, 0, 255}
	DefaultCursorColor = color.RGBA{229, 229, 229, 255}
)

// Named slots for the three OSC 10/11/12 dynamic colors, addressed with
// NamedColor. They sit just past the 256 palette indices so a single
// host-override map can cover both.
const (
	NamedColorForeground = 256
	NamedColorBackground = 257
	NamedColorCursor     = 258
)

// resolveDefaultColor converts a cell color to concrete RGBA against the
// default palette. nil means the terminal default; fg selects which default
// applies.
func resolveDefaultColor(c color.Color, fg bool) color.RGBA {
	switch v := c.(type) {
	case nil:
	case color.RGBA:
		return v
	case *IndexedColor:
		if v.Index >= 0 && v.Index < 256 {
			return DefaultPalette[v.Index]
		}
	case *NamedColor:
		switch v.Name {
		case NamedColorForeground:
			return DefaultForeground
		case NamedColorBackground:
			return DefaultBackground
		case NamedColorCursor:
			return DefaultCursorColor
		default:
			if v.Name >= 0 && v.Name < 256 {
				return DefaultPalette[v.Name]
			}
		}
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
			A: uint8(a >> 8),
		}
	}

	if fg {
		return DefaultForeground
	}
	return DefaultBackground
}
