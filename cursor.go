package vtcore

// CursorStyle determines how the cursor is rendered.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks the current position and rendering style (0-based coordinates).
// Col may equal the buffer width to represent the "pending wrap" state: the
// next print wraps to the next line before writing.
type Cursor struct {
	Row     int
	Col     int
	Style   CursorStyle
	Visible bool
	Blinking bool
}

// NewCursor creates a cursor at (0, 0) with blinking block style, visible.
func NewCursor() *Cursor {
	return &Cursor{
		Row:      0,
		Col:      0,
		Style:    CursorStyleBlinkingBlock,
		Visible:  true,
		Blinking: true,
	}
}

// SavedCursor stores cursor position, cell attributes, and charset state for
// restoration by DECSC/DECRC (ESC 7/8) or the 1049 alt-screen save slot.
type SavedCursor struct {
	Row          int
	Col          int
	Attrs        CellTemplate
	OriginMode   bool
	CharsetState CharsetState
}

// CellTemplate defines default attributes applied to newly written characters.
// Modified by SGR (Select Graphic Rendition) escape sequences.
type CellTemplate struct {
	Cell
}

// NewCellTemplate creates a template with default attributes (no colors, no flags).
func NewCellTemplate() CellTemplate {
	return CellTemplate{Cell: NewCell()}
}
