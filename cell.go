package vtcore

import "image/color"

// CellFlags is a bitmask of cell rendering attributes.
type CellFlags uint16

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagDoubleUnderline
	CellFlagCurlyUnderline
	CellFlagDottedUnderline
	CellFlagDashedUnderline
	CellFlagBlinkSlow
	CellFlagBlinkFast
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagWideChar
	CellFlagWideCharSpacer
	CellFlagDirty
)

// Cell stores the grapheme, colors, and formatting attributes for one grid
// position. Wide characters (2 columns) use a spacer cell in the second
// position; the spacer shares the lead cell's Char but is not directly
// writable, and wrapping never splits the pair.
type Cell struct {
	Char           rune
	Width          int // 1 for normal cells, 2 for the lead cell of a wide character
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	// HyperlinkID is a handle into the owning Buffer's hyperlink table
	// (see Buffer.Hyperlink), or "" if the cell has no associated link.
	HyperlinkID string
}

// Hyperlink associates a handle with a clickable link (OSC 8) and any
// optional id=/params the host supplied.
type Hyperlink struct {
	ID     string
	URI    string
	Params map[string]string
}

// NewCell creates a cell initialized with a space character and default
// (nil) colors; nil means "use the terminal's default foreground/background".
func NewCell() Cell {
	return Cell{Char: ' ', Width: 1}
}

// Reset clears all attributes and sets the cell to default state (space
// character, default colors).
func (c *Cell) Reset() {
	c.Char = ' '
	c.Width = 1
	c.Fg = nil
	c.Bg = nil
	c.UnderlineColor = nil
	c.Flags = 0
	c.HyperlinkID = ""
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsDirty returns true if the cell was modified since the last ClearDirty call.
func (c *Cell) IsDirty() bool {
	return c.HasFlag(CellFlagDirty)
}

// MarkDirty marks the cell as modified for dirty tracking.
func (c *Cell) MarkDirty() {
	c.SetFlag(CellFlagDirty)
}

// ClearDirty resets the dirty tracking flag.
func (c *Cell) ClearDirty() {
	c.ClearFlag(CellFlagDirty)
}

// IsWide returns true if this cell contains a wide character (CJK, emoji, etc.) that occupies 2 columns.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the second cell of a wide character (should be skipped during rendering).
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}

// Copy returns a copy of the cell. Color values are never mutated once set
// (pointer colors are shared, not cloned) and the hyperlink handle is a
// string, so a field copy is already independent of the source.
func (c *Cell) Copy() Cell {
	return *c
}
