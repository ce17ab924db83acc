package vtcore

import "image/color"

// IndexedColor references a slot in the active 256-color palette.
type IndexedColor struct {
	Index int
}

func (c *IndexedColor) RGBA() (r, g, b, a uint32) {
	rgba := resolveDefaultColor(c, true)
	return uint32(rgba.R) * 0x101, uint32(rgba.G) * 0x101, uint32(rgba.B) * 0x101, uint32(rgba.A) * 0x101
}

// NamedColor references one of the semantic colors in colors.go (default
// foreground, default background, cursor color) by index.
type NamedColor struct {
	Name int
}

func (c *NamedColor) RGBA() (r, g, b, a uint32) {
	rgba := resolveDefaultColor(c, true)
	return uint32(rgba.R) * 0x101, uint32(rgba.G) * 0x101, uint32(rgba.B) * 0x101, uint32(rgba.A) * 0x101
}

// applySGR folds a CSI `m` parameter list left to right into attrs: plain
// 256-color and truecolor (`38;5;n`, `38;2;r;g;b`) and
// colon sub-param forms (`38:2::r:g:b`, `4:0..5` underline styles) are all
// recognized. An empty parameter list (bare `CSI m`) resets, same as `0`.
func applySGR(params [][]int, t *CellTemplate) {
	if len(params) == 0 {
		resetAttrs(t)
		return
	}

	for i := 0; i < len(params); i++ {
		p := params[i]
		code := firstOf(p)

		switch {
		case code == 0:
			resetAttrs(t)
		case code == 1:
			t.SetFlag(CellFlagBold)
		case code == 2:
			t.SetFlag(CellFlagDim)
		case code == 3:
			t.SetFlag(CellFlagItalic)
		case code == 4:
			if len(p) > 1 {
				applyUnderlineStyle(t, p[1])
			} else {
				clearUnderlineFlags(t)
				t.SetFlag(CellFlagUnderline)
			}
		case code == 5:
			t.SetFlag(CellFlagBlinkSlow)
		case code == 6:
			t.SetFlag(CellFlagBlinkFast)
		case code == 7:
			t.SetFlag(CellFlagReverse)
		case code == 8:
			t.SetFlag(CellFlagHidden)
		case code == 9:
			t.SetFlag(CellFlagStrike)
		case code == 21:
			clearUnderlineFlags(t)
			t.SetFlag(CellFlagDoubleUnderline)
		case code == 22:
			t.ClearFlag(CellFlagBold)
			t.ClearFlag(CellFlagDim)
		case code == 23:
			t.ClearFlag(CellFlagItalic)
		case code == 24:
			clearUnderlineFlags(t)
		case code == 25:
			t.ClearFlag(CellFlagBlinkSlow)
			t.ClearFlag(CellFlagBlinkFast)
		case code == 27:
			t.ClearFlag(CellFlagReverse)
		case code == 28:
			t.ClearFlag(CellFlagHidden)
		case code == 29:
			t.ClearFlag(CellFlagStrike)
		case code >= 30 && code <= 37:
			t.Fg = &IndexedColor{Index: code - 30}
		case code == 38:
			c, consumed := parseExtendedColor(params, i)
			if c != nil {
				t.Fg = c
			}
			i += consumed
		case code == 39:
			t.Fg = nil
		case code >= 40 && code <= 47:
			t.Bg = &IndexedColor{Index: code - 40}
		case code == 48:
			c, consumed := parseExtendedColor(params, i)
			if c != nil {
				t.Bg = c
			}
			i += consumed
		case code == 49:
			t.Bg = nil
		case code == 58:
			c, consumed := parseExtendedColor(params, i)
			if c != nil {
				t.UnderlineColor = c
			}
			i += consumed
		case code == 59:
			t.UnderlineColor = nil
		case code >= 90 && code <= 97:
			t.Fg = &IndexedColor{Index: 8 + code - 90}
		case code >= 100 && code <= 107:
			t.Bg = &IndexedColor{Index: 8 + code - 100}
		}
	}
}

func resetAttrs(t *CellTemplate) {
	t.Fg = nil
	t.Bg = nil
	t.UnderlineColor = nil
	t.Flags = 0
}

func clearUnderlineFlags(t *CellTemplate) {
	t.ClearFlag(CellFlagUnderline)
	t.ClearFlag(CellFlagDoubleUnderline)
	t.ClearFlag(CellFlagCurlyUnderline)
	t.ClearFlag(CellFlagDottedUnderline)
	t.ClearFlag(CellFlagDashedUnderline)
}

// applyUnderlineStyle maps the `4:n` colon sub-param underline style (the
// kitty/iTerm2 extension): 0 none, 1 single, 2 double, 3 curly, 4 dotted, 5 dashed.
func applyUnderlineStyle(t *CellTemplate, style int) {
	clearUnderlineFlags(t)
	switch style {
	case 1:
		t.SetFlag(CellFlagUnderline)
	case 2:
		t.SetFlag(CellFlagDoubleUnderline)
	case 3:
		t.SetFlag(CellFlagCurlyUnderline)
	case 4:
		t.SetFlag(CellFlagDottedUnderline)
	case 5:
		t.SetFlag(CellFlagDashedUnderline)
	}
}

// parseExtendedColor parses a 38/48/58 extended color spec starting at
// params[i], in either form:
//   - colon sub-params on one entry: 38:5:n  or  38:2:cs:r:g:b
//   - classic semicolon-separated entries: 38;5;n  or  38;2;r;g;b
//
// Returns the resolved color (nil if malformed) and how many additional
// top-level params[] entries the semicolon form consumed (0 for the
// colon form, since it's already a single entry).
func parseExtendedColor(params [][]int, i int) (color.Color, int) {
	p := params[i]
	if len(p) > 1 {
		mode := p[1]
		switch mode {
		case 5:
			if len(p) > 2 {
				return &IndexedColor{Index: p[2]}, 0
			}
		case 2:
			vals := p[2:]
			if len(vals) >= 4 {
				// colorspace id, r, g, b
				return color.RGBA{R: uint8(vals[1]), G: uint8(vals[2]), B: uint8(vals[3]), A: 255}, 0
			}
			if len(vals) >= 3 {
				return color.RGBA{R: uint8(vals[0]), G: uint8(vals[1]), B: uint8(vals[2]), A: 255}, 0
			}
		}
		return nil, 0
	}

	if i+1 >= len(params) {
		return nil, 0
	}
	mode := firstOf(params[i+1])
	switch mode {
	case 5:
		if i+2 < len(params) {
			return &IndexedColor{Index: firstOf(params[i+2])}, 2
		}
	case 2:
		if i+4 < len(params) {
			r := firstOf(params[i+2])
			g := firstOf(params[i+3])
			b := firstOf(params[i+4])
			return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, 4
		}
	}
	return nil, 1
}

func firstOf(p []int) int {
	if len(p) == 0 {
		return 0
	}
	return p[0]
}
