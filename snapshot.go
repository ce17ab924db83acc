package vtcore

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// FrameView is a read-only copy of the active buffer plus cursor and title,
// taken atomically. Its JSON form
// ({width, height, cursor:{x,y,visible,style}, cells, title, scrollback_rows})
// is stable for tests and debuggers; only the cell values are normative.
type FrameView struct {
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Cursor         FrameCursor   `json:"cursor"`
	Cells          [][]FrameCell `json:"cells"`
	Title          string        `json:"title"`
	ScrollbackRows int           `json:"scrollback_rows"`
}

// FrameCursor reports the cursor in 0-based buffer coordinates. X may equal
// Width when the cursor sits in the pending-wrap position.
type FrameCursor struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Visible bool   `json:"visible"`
	Style   string `json:"style"`
}

// FrameCell is one cell of the view. W is 2 for the lead cell of a wide
// glyph and 0 for its continuation cell; continuation cells carry an empty G.
type FrameCell struct {
	G     string      `json:"g"`
	W     int         `json:"w,omitempty"`
	Fg    string      `json:"fg,omitempty"`
	Bg    string      `json:"bg,omitempty"`
	Attrs *FrameAttrs `json:"attrs,omitempty"`
	Link  string      `json:"link,omitempty"`
}

// FrameAttrs is the cell's SGR attribute set; zero-valued fields are omitted
// from the JSON form.
type FrameAttrs struct {
	Bold            bool `json:"bold,omitempty"`
	Dim             bool `json:"dim,omitempty"`
	Italic          bool `json:"italic,omitempty"`
	Underline       bool `json:"underline,omitempty"`
	DoubleUnderline bool `json:"double_underline,omitempty"`
	Blink           bool `json:"blink,omitempty"`
	Reverse         bool `json:"reverse,omitempty"`
	Hidden          bool `json:"hidden,omitempty"`
	Strikethrough   bool `json:"strikethrough,omitempty"`
}

// Snapshot returns a point-in-time FrameView of the active buffer. The copy
// shares nothing with the live buffer; callers may hold it across later
// feeds.
func (e *Emulator) Snapshot() *FrameView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	view := &FrameView{
		Width:          e.cols,
		Height:         e.rows,
		Title:          e.title,
		ScrollbackRows: e.primaryBuffer.ScrollbackLen(),
		Cursor: FrameCursor{
			X:       e.cursor.Col,
			Y:       e.cursor.Row,
			Visible: e.cursor.Visible,
			Style:   cursorStyleToString(e.cursor.Style),
		},
		Cells: make([][]FrameCell, e.rows),
	}

	for row := 0; row < e.rows; row++ {
		line := make([]FrameCell, e.cols)
		for col := 0; col < e.cols; col++ {
			cell := e.activeBuffer.Cell(row, col)
			if cell == nil {
				line[col] = FrameCell{G: " "}
				continue
			}
			line[col] = cellToFrameCell(e.activeBuffer, cell)
		}
		view.Cells[row] = line
	}
	return view
}

func cellToFrameCell(buf *Buffer, cell *Cell) FrameCell {
	fc := FrameCell{
		Fg: colorToHex(cell.Fg),
		Bg: colorToHex(cell.Bg),
	}

	switch {
	case cell.IsWideSpacer():
		fc.G = ""
	case cell.IsWide():
		fc.G = string(cell.Char)
		fc.W = 2
	default:
		fc.G = string(cell.Char)
		if cell.Char == 0 {
			fc.G = " "
		}
	}

	if attrs := cellAttrs(cell); attrs != (FrameAttrs{}) {
		a := attrs
		fc.Attrs = &a
	}
	if link, ok := buf.Hyperlink(cell.HyperlinkID); ok {
		fc.Link = link.URI
	}
	return fc
}

func cellAttrs(cell *Cell) FrameAttrs {
	return FrameAttrs{
		Bold:            cell.HasFlag(CellFlagBold),
		Dim:             cell.HasFlag(CellFlagDim),
		Italic:          cell.HasFlag(CellFlagItalic),
		Underline:       cell.HasFlag(CellFlagUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline),
		DoubleUnderline: cell.HasFlag(CellFlagDoubleUnderline),
		Blink:           cell.HasFlag(CellFlagBlinkSlow | CellFlagBlinkFast),
		Reverse:         cell.HasFlag(CellFlagReverse),
		Hidden:          cell.HasFlag(CellFlagHidden),
		Strikethrough:   cell.HasFlag(CellFlagStrike),
	}
}

// colorToHex renders a cell color as "#rrggbb", or "" for the terminal
// default (nil).
func colorToHex(c color.Color) string {
	if c == nil {
		return ""
	}
	rgba := resolveDefaultColor(c, true)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingBlock, CursorStyleSteadyBlock:
		return "block"
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		return "underline"
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		return "bar"
	default:
		return "block"
	}
}

// JSON renders the view in its stable serialized form.
func (f *FrameView) JSON() ([]byte, error) {
	return json.Marshal(f)
}
