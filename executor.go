package vtcore

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/termkit/vtcore/vtinput"
	"github.com/termkit/vtcore/vtparser"
)

// The Emulator is the parser's Handler: Feed holds the write lock for the
// duration of a Parse call, so every method below runs with exclusive access
// to the buffers and state. None of them lock.
var _ vtparser.Handler = (*Emulator)(nil)

// Print writes a printable rune at the cursor.
func (e *Emulator) Print(r rune) {
	if e.middleware.Print != nil {
		e.middleware.Print(r, e.printInternal)
		return
	}
	e.printInternal(r)
}

func (e *Emulator) printInternal(r rune) {
	if r == utf8.RuneError {
		e.metrics.InvalidUTF8.Add(1)
	}
	r = translateCharset(r, e.charsetState.Active())

	width := runeWidth(r)
	if width == 0 {
		// Combining marks are folded onto their base rune by the parser;
		// anything that still arrives with zero width is dropped.
		return
	}

	if e.cursor.Col+width > e.cols {
		switch {
		case e.autoResize:
			e.activeBuffer.GrowCols(e.cursor.Row, e.cursor.Col+width)
			e.cols = e.activeBuffer.Cols()
		case e.modes.AutoWrap:
			e.activeBuffer.SetWrapped(e.cursor.Row, true)
			e.cursor.Col = 0
			e.linefeedInternal()
		default:
			if width == 2 {
				// A wide glyph cannot fit in the last column without
				// wrapping; it is clipped (consistently, never split).
				return
			}
			e.cursor.Col = e.cols - 1
		}
	}

	if e.modes.InsertReplace {
		e.activeBuffer.InsertBlanks(e.cursor.Row, e.cursor.Col, width)
	}

	cell := e.activeBuffer.Cell(e.cursor.Row, e.cursor.Col)
	if cell != nil {
		cell.Char = r
		cell.Width = width
		cell.Fg = e.template.Fg
		cell.Bg = e.template.Bg
		cell.UnderlineColor = e.template.UnderlineColor
		cell.Flags = e.template.Flags
		cell.HyperlinkID = e.currentHyperlinkID

		if width == 2 {
			cell.SetFlag(CellFlagWideChar)
		} else {
			cell.ClearFlag(CellFlagWideChar | CellFlagWideCharSpacer)
		}
		e.activeBuffer.MarkDirty(e.cursor.Row, e.cursor.Col)
	}

	e.cursor.Col++

	if width == 2 {
		if spacer := e.activeBuffer.Cell(e.cursor.Row, e.cursor.Col); spacer != nil {
			spacer.Reset()
			spacer.Char = r
			spacer.Fg = e.template.Fg
			spacer.Bg = e.template.Bg
			spacer.SetFlag(CellFlagWideCharSpacer)
			e.activeBuffer.MarkDirty(e.cursor.Row, e.cursor.Col)
		}
		e.cursor.Col++
	}

	// Col == cols is the pending-wrap state: the cursor sits past the last
	// column until the next print wraps or a cursor move clears it.
	e.lastPrinted = r
}

// Execute handles a C0 control byte.
func (e *Emulator) Execute(b byte) {
	if e.middleware.Execute != nil {
		e.middleware.Execute(b, e.executeInternal)
		return
	}
	e.executeInternal(b)
}

func (e *Emulator) executeInternal(b byte) {
	switch b {
	case 0x07: // BEL
		e.bellProvider.Ring()
		e.pushEvent(OutboundEvent{Kind: EventBellRung})
	case 0x08: // BS
		e.cursor.Col = clamp(e.cursor.Col-1, 0, e.cols-1)
	case 0x09: // HT
		e.clearPendingWrap()
		e.cursor.Col = e.activeBuffer.NextTabStop(e.cursor.Col)
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		e.activeBuffer.SetWrapped(e.cursor.Row, false)
		if e.modes.LineFeedNewLine {
			e.cursor.Col = 0
		}
		e.linefeedInternal()
	case 0x0d: // CR
		e.cursor.Col = 0
	case 0x0e: // SO: invoke G1 into GL
		e.charsetState.GL = CharsetIndexG1
	case 0x0f: // SI: invoke G0 into GL
		e.charsetState.GL = CharsetIndexG0
	}
}

// linefeedInternal moves the cursor down one row, scrolling when it sits on
// the scroll region's bottom line. Below the region it only moves until the
// last screen row.
func (e *Emulator) linefeedInternal() {
	switch {
	case e.cursor.Row+1 == e.scrollBottom:
		if e.autoResize && e.activeBuffer == e.primaryBuffer &&
			e.scrollTop == 0 && e.scrollBottom == e.rows {
			e.activeBuffer.GrowRows(1)
			e.rows = e.activeBuffer.Rows()
			e.scrollBottom = e.rows
			e.cursor.Row++
			return
		}
		e.activeBuffer.ScrollUp(e.scrollTop, e.scrollBottom, 1)
	case e.cursor.Row+1 < e.rows:
		e.cursor.Row++
	}
}

// reverseIndexInternal moves the cursor up one row, scrolling down when it
// sits on the scroll region's top line.
func (e *Emulator) reverseIndexInternal() {
	if e.cursor.Row == e.scrollTop {
		e.activeBuffer.ScrollDown(e.scrollTop, e.scrollBottom, 1)
	} else if e.cursor.Row > 0 {
		e.cursor.Row--
	}
}

// clearPendingWrap pulls the cursor back onto the grid if it sits in the
// pending-wrap position past the last column.
func (e *Emulator) clearPendingWrap() {
	if e.cursor.Col >= e.cols {
		e.cursor.Col = e.cols - 1
	}
}

// EscDispatch handles a completed simple escape sequence.
func (e *Emulator) EscDispatch(intermediates []byte, ignore bool, final byte) {
	if e.middleware.EscDispatch != nil {
		e.middleware.EscDispatch(intermediates, ignore, final, e.escDispatchInternal)
		return
	}
	e.escDispatchInternal(intermediates, ignore, final)
}

func (e *Emulator) escDispatchInternal(intermediates []byte, ignore bool, final byte) {
	if ignore {
		e.metrics.UnknownEsc.Add(1)
		return
	}

	if len(intermediates) == 1 {
		switch intermediates[0] {
		case '(', ')', '*', '+':
			e.designateCharset(intermediates[0], final)
			return
		case '#':
			if final == '8' { // DECALN
				e.activeBuffer.FillWithE()
			}
			return
		}
	}
	if len(intermediates) > 0 {
		e.metrics.UnknownEsc.Add(1)
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownFinal: final, UnknownKind: "esc"})
		return
	}

	switch final {
	case '7': // DECSC
		e.saveCursorInternal()
	case '8': // DECRC
		e.restoreCursorInternal()
	case 'D': // IND
		e.linefeedInternal()
	case 'E': // NEL
		e.cursor.Col = 0
		e.linefeedInternal()
	case 'H': // HTS
		e.clearPendingWrap()
		e.activeBuffer.SetTabStop(e.cursor.Col)
	case 'M': // RI
		e.reverseIndexInternal()
	case 'N': // SS2
		e.charsetState.SingleShift = CharsetIndexG2
	case 'O': // SS3
		e.charsetState.SingleShift = CharsetIndexG3
	case 'Z': // DECID
		e.writeResponseString("\x1b[?62;c")
	case 'c': // RIS
		e.resetLocked()
	case '=': // DECKPAM
		e.modes.KeypadApp = true
	case '>': // DECKPNM
		e.modes.KeypadApp = false
	case 'n': // LS2
		e.charsetState.GL = CharsetIndexG2
	case 'o': // LS3
		e.charsetState.GL = CharsetIndexG3
	case '~': // LS1R
		e.charsetState.GR = CharsetIndexG1
	case '}': // LS2R
		e.charsetState.GR = CharsetIndexG2
	case '|': // LS3R
		e.charsetState.GR = CharsetIndexG3
	case '\\': // ST with nothing pending
	default:
		e.metrics.UnknownEsc.Add(1)
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownFinal: final, UnknownKind: "esc"})
	}
}

func (e *Emulator) designateCharset(slot, final byte) {
	var idx CharsetIndex
	switch slot {
	case '(':
		idx = CharsetIndexG0
	case ')':
		idx = CharsetIndexG1
	case '*':
		idx = CharsetIndexG2
	case '+':
		idx = CharsetIndexG3
	}

	var cs Charset
	switch final {
	case '0':
		cs = CharsetDECSpecial
	case 'A':
		cs = CharsetUK
	default: // 'B' and anything unrecognized
		cs = CharsetASCII
	}
	e.charsetState.Sets[idx] = cs
}

func (e *Emulator) saveCursorInternal() {
	saved := &SavedCursor{
		Row:          e.cursor.Row,
		Col:          e.cursor.Col,
		Attrs:        e.template,
		OriginMode:   e.modes.OriginMode,
		CharsetState: e.charsetState,
	}
	if e.activeBuffer == e.alternateBuffer {
		e.savedCursorAlt = saved
	} else {
		e.savedCursorPrimary = saved
	}
}

func (e *Emulator) restoreCursorInternal() {
	saved := e.savedCursorPrimary
	if e.activeBuffer == e.alternateBuffer {
		saved = e.savedCursorAlt
	}
	if saved == nil {
		// DECRC with no prior DECSC homes the cursor and resets attributes.
		e.cursor.Row = 0
		e.cursor.Col = 0
		e.template = NewCellTemplate()
		return
	}
	e.cursor.Row = clamp(saved.Row, 0, e.rows-1)
	e.cursor.Col = clamp(saved.Col, 0, e.cols)
	e.template = saved.Attrs
	e.modes.OriginMode = saved.OriginMode
	e.charsetState = saved.CharsetState
}

// CsiDispatch handles a completed CSI sequence.
func (e *Emulator) CsiDispatch(params [][]int, intermediates []byte, ignore bool, final byte) {
	if e.middleware.CsiDispatch != nil {
		e.middleware.CsiDispatch(params, intermediates, ignore, final, e.csiDispatchInternal)
		return
	}
	e.csiDispatchInternal(params, intermediates, ignore, final)
}

func (e *Emulator) csiDispatchInternal(params [][]int, intermediates []byte, ignore bool, final byte) {
	if ignore {
		e.metrics.UnknownCSI.Add(1)
		return
	}

	private := byte(0)
	if len(intermediates) > 0 && intermediates[0] >= 0x3c && intermediates[0] <= 0x3f {
		private = intermediates[0]
		intermediates = intermediates[1:]
	}

	if len(intermediates) > 0 {
		e.csiIntermediate(params, intermediates[0], final)
		return
	}

	if private != 0 {
		e.csiPrivate(params, private, final)
		return
	}

	switch final {
	case '@': // ICH
		e.clearPendingWrap()
		e.activeBuffer.InsertBlanks(e.cursor.Row, e.cursor.Col, countOr1(params, 0))
	case 'A': // CUU
		e.moveCursorRows(-countOr1(params, 0))
	case 'B': // CUD
		e.moveCursorRows(countOr1(params, 0))
	case 'C': // CUF
		e.clearPendingWrap()
		e.cursor.Col = clamp(e.cursor.Col+countOr1(params, 0), 0, e.cols-1)
	case 'D': // CUB
		e.clearPendingWrap()
		e.cursor.Col = clamp(e.cursor.Col-countOr1(params, 0), 0, e.cols-1)
	case 'E': // CNL
		e.moveCursorRows(countOr1(params, 0))
		e.cursor.Col = 0
	case 'F': // CPL
		e.moveCursorRows(-countOr1(params, 0))
		e.cursor.Col = 0
	case 'G', '`': // CHA / HPA
		e.gotoColInternal(countOr1(params, 0) - 1)
	case 'H', 'f': // CUP / HVP
		e.gotoInternal(countOr1(params, 0)-1, countOr1(params, 1)-1)
	case 'I': // CHT
		e.clearPendingWrap()
		for i := 0; i < countOr1(params, 0); i++ {
			e.cursor.Col = e.activeBuffer.NextTabStop(e.cursor.Col)
		}
	case 'J': // ED
		e.eraseInDisplay(paramOr(params, 0, 0))
	case 'K': // EL
		e.eraseInLine(paramOr(params, 0, 0))
	case 'L': // IL
		e.clearPendingWrap()
		if e.cursor.Row >= e.scrollTop && e.cursor.Row < e.scrollBottom {
			e.activeBuffer.InsertLines(e.cursor.Row, countOr1(params, 0), e.scrollBottom)
		}
	case 'M': // DL
		e.clearPendingWrap()
		if e.cursor.Row >= e.scrollTop && e.cursor.Row < e.scrollBottom {
			e.activeBuffer.DeleteLines(e.cursor.Row, countOr1(params, 0), e.scrollBottom)
		}
	case 'P': // DCH
		e.clearPendingWrap()
		e.activeBuffer.DeleteChars(e.cursor.Row, e.cursor.Col, countOr1(params, 0))
	case 'S': // SU
		e.activeBuffer.ScrollUp(e.scrollTop, e.scrollBottom, countOr1(params, 0))
	case 'T': // SD
		e.activeBuffer.ScrollDown(e.scrollTop, e.scrollBottom, countOr1(params, 0))
	case 'X': // ECH: reset without shifting
		e.clearPendingWrap()
		for i := 0; i < countOr1(params, 0) && e.cursor.Col+i < e.cols; i++ {
			if cell := e.activeBuffer.Cell(e.cursor.Row, e.cursor.Col+i); cell != nil {
				cell.Reset()
				e.activeBuffer.MarkDirty(e.cursor.Row, e.cursor.Col+i)
			}
		}
	case 'Z': // CBT
		e.clearPendingWrap()
		for i := 0; i < countOr1(params, 0); i++ {
			e.cursor.Col = e.activeBuffer.PrevTabStop(e.cursor.Col)
		}
	case 'a': // HPR
		e.gotoColInternal(e.cursor.Col + countOr1(params, 0))
	case 'b': // REP
		if e.lastPrinted != 0 {
			for i := 0; i < countOr1(params, 0); i++ {
				e.printInternal(e.lastPrinted)
			}
		}
	case 'c': // DA
		e.writeResponseString("\x1b[?62;c")
	case 'd': // VPA
		e.gotoRowInternal(countOr1(params, 0) - 1)
	case 'e': // VPR
		e.moveCursorRows(countOr1(params, 0))
	case 'g': // TBC
		switch paramOr(params, 0, 0) {
		case 0:
			e.activeBuffer.ClearTabStop(e.cursor.Col)
		case 3:
			e.activeBuffer.ClearAllTabStops()
		}
	case 'h': // SM
		e.setAnsiMode(params, true)
	case 'l': // RM
		e.setAnsiMode(params, false)
	case 'm': // SGR
		applySGR(params, &e.template)
	case 'n': // DSR
		e.deviceStatus(paramOr(params, 0, 0))
	case 'r': // DECSTBM
		e.setScrollingRegion(paramOr(params, 0, 1), paramOr(params, 1, e.rows))
	case 's': // SCOSC
		e.saveCursorInternal()
	case 't': // window ops: size reports and the title stack (22/23)
		e.windowOp(params)
	case 'u': // SCORC
		e.restoreCursorInternal()
	case '~': // bracketed-paste framing markers
		switch paramOr(params, 0, 0) {
		case 200:
			e.pasting = true
		case 201:
			e.pasting = false
		default:
			e.metrics.UnknownCSI.Add(1)
			e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownFinal: final, UnknownKind: "csi"})
		}
	default:
		e.metrics.UnknownCSI.Add(1)
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownFinal: final, UnknownKind: "csi"})
	}
}

// csiIntermediate dispatches CSI sequences carrying an intermediate byte
// between the parameters and the final (e.g. DECSCUSR's space, DECSTR's '!').
func (e *Emulator) csiIntermediate(params [][]int, intermediate, final byte) {
	switch {
	case intermediate == ' ' && final == 'q': // DECSCUSR
		e.setCursorStyle(paramOr(params, 0, 0))
	case intermediate == '!' && final == 'p': // DECSTR
		e.softReset()
	default:
		e.metrics.UnknownCSI.Add(1)
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownFinal: final, UnknownKind: "csi"})
	}
}

// csiPrivate dispatches CSI sequences with a private marker byte.
func (e *Emulator) csiPrivate(params [][]int, private, final byte) {
	switch {
	case private == '?' && (final == 'h' || final == 'l'):
		on := final == 'h'
		for i := range params {
			e.setModeLocked(ModeCode(paramOr(params, i, 0)), on)
		}
	case private == '?' && final == 'J' && paramOr(params, 0, 0) == 3:
		// DECSED 3 is treated like ED 3 (xterm's selective-erase variant).
		e.primaryBuffer.ClearScrollback()
	case private == '>' && final == 'c': // secondary DA
		e.writeResponseString("\x1b[>1;10;0c")
	case private == '>' && final == 'm': // XTMODKEYS, accepted and ignored
	case private == '?' && final == 'n': // DECDSR
		e.deviceStatus(paramOr(params, 0, 0))
	default:
		e.metrics.UnknownCSI.Add(1)
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownFinal: final, UnknownKind: "csi"})
	}
}

func (e *Emulator) setCursorStyle(n int) {
	switch n {
	case 0, 1:
		e.cursor.Style = CursorStyleBlinkingBlock
		e.cursor.Blinking = true
	case 2:
		e.cursor.Style = CursorStyleSteadyBlock
		e.cursor.Blinking = false
	case 3:
		e.cursor.Style = CursorStyleBlinkingUnderline
		e.cursor.Blinking = true
	case 4:
		e.cursor.Style = CursorStyleSteadyUnderline
		e.cursor.Blinking = false
	case 5:
		e.cursor.Style = CursorStyleBlinkingBar
		e.cursor.Blinking = true
	case 6:
		e.cursor.Style = CursorStyleSteadyBar
		e.cursor.Blinking = false
	}
}

// softReset implements DECSTR: modes, attributes, scroll region, and saved
// cursor return to their reset state; the screen contents stay.
func (e *Emulator) softReset() {
	e.modes = NewModes()
	e.template = NewCellTemplate()
	e.charsetState = NewCharsetState()
	e.scrollTop = 0
	e.scrollBottom = e.rows
	e.savedCursorPrimary = nil
	e.savedCursorAlt = nil
	e.cursor.Visible = true
}

func (e *Emulator) moveCursorRows(delta int) {
	e.clearPendingWrap()
	row := e.cursor.Row + delta
	if e.modes.OriginMode {
		row = clamp(row, e.scrollTop, e.scrollBottom-1)
	} else {
		row = clamp(row, 0, e.rows-1)
	}
	e.cursor.Row = row
}

func (e *Emulator) gotoInternal(row, col int) {
	e.gotoRowInternal(row)
	e.gotoColInternal(col)
}

func (e *Emulator) gotoRowInternal(row int) {
	e.clearPendingWrap()
	if e.modes.OriginMode {
		row += e.scrollTop
		clamped := clamp(row, e.scrollTop, e.scrollBottom-1)
		if clamped != row {
			e.metrics.ClampedCoordinate.Add(1)
		}
		e.cursor.Row = clamped
		return
	}
	clamped := clamp(row, 0, e.rows-1)
	if clamped != row {
		e.metrics.ClampedCoordinate.Add(1)
	}
	e.cursor.Row = clamped
}

func (e *Emulator) gotoColInternal(col int) {
	e.clearPendingWrap()
	clamped := clamp(col, 0, e.cols-1)
	if clamped != col {
		e.metrics.ClampedCoordinate.Add(1)
	}
	e.cursor.Col = clamped
}

func (e *Emulator) eraseInLine(mode int) {
	e.clearPendingWrap()
	switch mode {
	case 0:
		e.activeBuffer.ClearRowRange(e.cursor.Row, e.cursor.Col, e.cols)
	case 1:
		e.activeBuffer.ClearRowRange(e.cursor.Row, 0, e.cursor.Col+1)
	case 2:
		e.activeBuffer.ClearRow(e.cursor.Row)
	}
}

func (e *Emulator) eraseInDisplay(mode int) {
	e.clearPendingWrap()
	switch mode {
	case 0:
		e.activeBuffer.ClearRowRange(e.cursor.Row, e.cursor.Col, e.cols)
		for row := e.cursor.Row + 1; row < e.rows; row++ {
			e.activeBuffer.ClearRow(row)
		}
	case 1:
		for row := 0; row < e.cursor.Row; row++ {
			e.activeBuffer.ClearRow(row)
		}
		e.activeBuffer.ClearRowRange(e.cursor.Row, 0, e.cursor.Col+1)
	case 2:
		e.activeBuffer.ClearAll()
	case 3:
		// xterm extension: clear scrollback only, the screen stays.
		e.primaryBuffer.ClearScrollback()
	}
}

// setAnsiMode handles the non-private SM/RM modes.
func (e *Emulator) setAnsiMode(params [][]int, on bool) {
	for i := range params {
		switch paramOr(params, i, 0) {
		case 4: // IRM
			e.modes.InsertReplace = on
		case 20: // LNM
			e.modes.LineFeedNewLine = on
		}
	}
}

// setModeLocked applies a DECSET/DECRST private-mode change including its
// buffer/cursor side effects. Caller must hold the write lock.
func (e *Emulator) setModeLocked(code ModeCode, on bool) {
	switch code {
	case ModeDECOM:
		e.modes.OriginMode = on
		if on {
			e.cursor.Row = e.scrollTop
			e.cursor.Col = 0
		}
	case ModeDECCOLM:
		// The 80/132-column switch is not honored (the host owns sizing),
		// but per DEC semantics it still clears the screen and homes.
		e.activeBuffer.ClearAll()
		e.cursor.Row = 0
		e.cursor.Col = 0
	case ModeDECTCEM:
		e.modes.ShowCursor = on
		e.cursor.Visible = on
	case ModeBlinkCursor:
		e.cursor.Blinking = on
	case ModeAltScreen, ModeAltScreen1047:
		if on {
			e.enterAltScreen(code == ModeAltScreen1047, false)
		} else {
			e.exitAltScreen(false)
		}
	case ModeSaveCursor:
		if on {
			e.saveCursorInternal()
		} else {
			e.restoreCursorInternal()
		}
	case ModeAltScreen1049:
		if on {
			e.enterAltScreen(true, true)
		} else {
			e.exitAltScreen(true)
		}
	default:
		e.modes.Set(code, on)
	}
}

// enterAltScreen switches to the alternate buffer. Re-entry while already on
// the alternate screen is a no-op (no double-save).
func (e *Emulator) enterAltScreen(clear, saveCursor bool) {
	if e.activeBuffer == e.alternateBuffer {
		return
	}
	if saveCursor {
		e.saveCursorInternal()
	}
	e.modes.AltScreen = true
	e.modes.AltScreenSaveCursor = saveCursor
	e.activeBuffer = e.alternateBuffer
	if clear {
		e.activeBuffer.ClearAll()
	}
}

func (e *Emulator) exitAltScreen(restoreCursor bool) {
	if e.activeBuffer == e.primaryBuffer {
		return
	}
	e.modes.AltScreen = false
	e.activeBuffer = e.primaryBuffer
	if restoreCursor {
		e.restoreCursorInternal()
	}
}

func (e *Emulator) setScrollingRegion(top, bottom int) {
	top--
	bottom--
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom >= e.rows {
		bottom = e.rows - 1
	}
	if top >= bottom {
		// DECSTBM with top >= bottom is ignored.
		return
	}

	e.scrollTop = top
	e.scrollBottom = bottom + 1

	if e.modes.OriginMode {
		e.cursor.Row = e.scrollTop
	} else {
		e.cursor.Row = 0
	}
	e.cursor.Col = 0
}

func (e *Emulator) deviceStatus(n int) {
	switch n {
	case 5:
		e.writeResponseString("\x1b[0n")
	case 6:
		row := e.cursor.Row
		if e.modes.OriginMode {
			row -= e.scrollTop
		}
		col := clamp(e.cursor.Col, 0, e.cols-1)
		e.writeResponseString(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	}
}

func (e *Emulator) windowOp(params [][]int) {
	switch paramOr(params, 0, 0) {
	case 14: // report text area size in pixels, assuming 10x20 cells
		e.writeResponseString(fmt.Sprintf("\x1b[4;%d;%dt", e.rows*20, e.cols*10))
	case 18: // report text area size in characters
		e.writeResponseString(fmt.Sprintf("\x1b[8;%d;%dt", e.rows, e.cols))
	case 22:
		e.titleStack = append(e.titleStack, e.title)
		e.titleProvider.PushTitle()
	case 23:
		if len(e.titleStack) > 0 {
			e.title = e.titleStack[len(e.titleStack)-1]
			e.titleStack = e.titleStack[:len(e.titleStack)-1]
		}
		e.titleProvider.PopTitle()
	}
}

// OscDispatch handles a completed OSC string.
func (e *Emulator) OscDispatch(params [][]byte, bellTerminated bool) {
	if e.middleware.OscDispatch != nil {
		e.middleware.OscDispatch(params, bellTerminated, e.oscDispatchInternal)
		return
	}
	e.oscDispatchInternal(params, bellTerminated)
}

func (e *Emulator) oscDispatchInternal(params [][]byte, bellTerminated bool) {
	if len(params) == 0 {
		return
	}
	code, err := strconv.Atoi(string(params[0]))
	if err != nil {
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownKind: "osc"})
		return
	}

	terminator := "\x1b\\"
	if bellTerminated {
		terminator = "\x07"
	}

	switch code {
	case 0: // icon name + title
		text := oscParam(params, 1)
		e.iconName = text
		e.setTitleInternal(text)
		e.pushEvent(OutboundEvent{Kind: EventIconChanged, Text: text})
	case 1:
		text := oscParam(params, 1)
		e.iconName = text
		e.pushEvent(OutboundEvent{Kind: EventIconChanged, Text: text})
	case 2:
		e.setTitleInternal(oscParam(params, 1))
	case 4:
		e.oscSetColor(params, terminator)
	case 7:
		e.workingDir = oscParam(params, 1)
	case 8:
		e.oscHyperlink(params)
	case 10, 11, 12:
		e.oscDynamicColor(code, oscParam(params, 1), terminator)
	case 52:
		e.oscClipboard(params)
	case 104:
		if len(params) < 2 {
			e.colors = make(map[int]color.Color)
			return
		}
		for _, p := range params[1:] {
			if idx, err := strconv.Atoi(string(p)); err == nil {
				delete(e.colors, idx)
			}
		}
	case 110:
		delete(e.colors, NamedColorForeground)
	case 111:
		delete(e.colors, NamedColorBackground)
	case 112:
		delete(e.colors, NamedColorCursor)
	case 133:
		e.oscShellIntegration(params)
	default:
		e.pushEvent(OutboundEvent{Kind: EventUnknownSequence, UnknownKind: "osc"})
	}
}

func (e *Emulator) setTitleInternal(title string) {
	e.title = title
	e.titleProvider.SetTitle(title)
	e.pushEvent(OutboundEvent{Kind: EventTitleChanged, Text: title})
}

// oscSetColor handles OSC 4's index;spec pairs: a "?" spec queries the
// current value, anything else sets it.
func (e *Emulator) oscSetColor(params [][]byte, terminator string) {
	for i := 1; i+1 < len(params); i += 2 {
		idx, err := strconv.Atoi(string(params[i]))
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		spec := string(params[i+1])
		if spec == "?" {
			rgba := resolveDefaultColor(e.paletteColor(idx), true)
			e.writeResponseString(fmt.Sprintf("\x1b]4;%d;rgb:%02x/%02x/%02x%s", idx, rgba.R, rgba.G, rgba.B, terminator))
			continue
		}
		if c, ok := parseColorSpec(spec); ok {
			e.colors[idx] = c
		}
	}
}

func (e *Emulator) paletteColor(idx int) color.Color {
	if c, ok := e.colors[idx]; ok {
		return c
	}
	return &IndexedColor{Index: idx}
}

// oscDynamicColor answers or sets the OSC 10/11/12 dynamic colors
// (foreground, background, cursor).
func (e *Emulator) oscDynamicColor(code int, spec, terminator string) {
	name := NamedColorForeground
	switch code {
	case 11:
		name = NamedColorBackground
	case 12:
		name = NamedColorCursor
	}

	if spec == "?" {
		c, ok := e.colors[name]
		if !ok {
			c = &NamedColor{Name: name}
		}
		rgba := resolveDefaultColor(c, code != 11)
		e.writeResponseString(fmt.Sprintf("\x1b]%d;rgb:%02x/%02x/%02x%s", code, rgba.R, rgba.G, rgba.B, terminator))
		return
	}
	if c, ok := parseColorSpec(spec); ok {
		e.colors[name] = c
	}
}

// parseColorSpec parses the XParseColor forms hosts send in OSC 4/10/11/12:
// "rgb:RR/GG/BB" (1-4 hex digits per channel) and "#RRGGBB".
func parseColorSpec(spec string) (color.Color, bool) {
	if strings.HasPrefix(spec, "rgb:") {
		parts := strings.Split(spec[4:], "/")
		if len(parts) != 3 {
			return nil, false
		}
		var ch [3]uint8
		for i, p := range parts {
			if len(p) == 0 || len(p) > 4 {
				return nil, false
			}
			v, err := strconv.ParseUint(p, 16, 16)
			if err != nil {
				return nil, false
			}
			// Scale down to 8 bits from however many hex digits were given.
			switch len(p) {
			case 1:
				ch[i] = uint8(v * 0x11)
			case 2:
				ch[i] = uint8(v)
			case 3:
				ch[i] = uint8(v >> 4)
			case 4:
				ch[i] = uint8(v >> 8)
			}
		}
		return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, true
	}
	if strings.HasPrefix(spec, "#") && len(spec) == 7 {
		v, err := strconv.ParseUint(spec[1:], 16, 32)
		if err != nil {
			return nil, false
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
	}
	return nil, false
}

// oscHyperlink handles OSC 8 ; params ; URI. An empty URI ends the current
// hyperlink; otherwise subsequent printed cells carry a handle into the
// active buffer's hyperlink table.
func (e *Emulator) oscHyperlink(params [][]byte) {
	uri := oscParam(params, 2)
	if uri == "" {
		e.currentHyperlinkID = ""
		return
	}

	linkParams := make(map[string]string)
	for _, pair := range strings.Split(oscParam(params, 1), ":") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			linkParams[k] = v
		}
	}

	id := linkParams["id"]
	if id == "" {
		// Unnamed links get a minted id so two different unnamed links are
		// distinguishable in the table.
		id = uuid.NewString()
	}
	e.activeBuffer.SetHyperlink(id, uri, linkParams)
	e.currentHyperlinkID = id
}

// oscClipboard handles OSC 52 reads and writes. The core never touches a
// host clipboard itself: writes go to the clipboard provider and surface as
// a ClipboardWrite event; a "?" read emits ClipboardReadRequest and answers
// from the provider if it has content.
func (e *Emulator) oscClipboard(params [][]byte) {
	selection := byte('c')
	if s := oscParam(params, 1); s != "" {
		selection = s[0]
	}
	payload := oscParam(params, 2)

	if payload == "?" {
		e.pushEvent(OutboundEvent{Kind: EventClipboardReadRequest, Selection: selection})
		if content := e.clipboardProvider.Read(selection); content != "" {
			encoded := base64.StdEncoding.EncodeToString([]byte(content))
			e.writeResponse(vtinput.EncodeClipboardResponse(string(rune(selection)), encoded))
		}
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Malformed base64 is dropped; OSC 52 never fails the stream.
		return
	}
	e.clipboardProvider.Write(selection, decoded)
	e.pushEvent(OutboundEvent{
		Kind:      EventClipboardWrite,
		Selection: selection,
		Base64:    payload,
		Text:      string(decoded),
	})
}

func (e *Emulator) oscShellIntegration(params [][]byte) {
	kind := oscParam(params, 1)
	if kind == "" {
		return
	}
	exitCode := -1
	var mark ShellIntegrationMark
	switch kind[0] {
	case 'A':
		mark = PromptStart
	case 'B':
		mark = CommandStart
	case 'C':
		mark = CommandExecuted
	case 'D':
		mark = CommandFinished
		if code, err := strconv.Atoi(oscParam(params, 2)); err == nil {
			exitCode = code
		}
	default:
		return
	}
	e.shellIntegrationMark(mark, exitCode)
}

func oscParam(params [][]byte, i int) string {
	if i >= len(params) {
		return ""
	}
	return string(params[i])
}

// Hook begins a DCS (or SOS/PM/APC) payload capture.
func (e *Emulator) Hook(params [][]int, intermediates []byte, ignore bool, final byte) {
	if e.middleware.Hook != nil {
		e.middleware.Hook(params, intermediates, ignore, final, e.hookInternal)
		return
	}
	e.hookInternal(params, intermediates, ignore, final)
}

func (e *Emulator) hookInternal(params [][]int, intermediates []byte, ignore bool, final byte) {
	e.graphics.begin(params, intermediates, final)
}

// Put streams one payload byte of the current DCS/SOS/PM/APC string.
func (e *Emulator) Put(b byte) {
	if e.middleware.Put != nil {
		e.middleware.Put(b, e.putInternal)
		return
	}
	e.putInternal(b)
}

func (e *Emulator) putInternal(b byte) {
	e.graphics.put(b)
}

// Unhook finalizes the current DCS/SOS/PM/APC payload: the capture is
// emitted as an opaque DcsPayload event, and SOS/PM/APC data is additionally
// forwarded to the matching provider.
func (e *Emulator) Unhook() {
	if e.middleware.Unhook != nil {
		e.middleware.Unhook(e.unhookInternal)
		return
	}
	e.unhookInternal()
}

func (e *Emulator) unhookInternal() {
	payload := e.graphics.end()
	switch payload.Kind {
	case 'X':
		e.sosProvider.Receive(payload.Data)
	case '^':
		e.pmProvider.Receive(payload.Data)
	case '_':
		e.apcProvider.Receive(payload.Data)
	}
	e.pushEvent(OutboundEvent{Kind: EventDcsPayload, Payload: &payload})
}

// Truncated records that the in-flight OSC/DCS payload exceeded its byte
// bound: it is counted, and an active DCS/SOS/PM/APC capture is flagged
// Truncated. A truncated OSC string is dispatched with no such flag.
func (e *Emulator) Truncated() {
	if e.middleware.Truncated != nil {
		e.middleware.Truncated(e.truncatedInternal)
		return
	}
	e.truncatedInternal()
}

func (e *Emulator) truncatedInternal() {
	e.metrics.Truncated.Add(1)
	if e.graphics.active {
		e.graphics.truncated = true
	}
}

// ActivateHyperlink resolves the hyperlink under (row, col) in the active
// buffer, if any, and emits a HyperlinkActivated event. Intended for hosts
// translating a click into the core's event stream.
func (e *Emulator) ActivateHyperlink(row, col int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell := e.activeBuffer.Cell(row, col)
	if cell == nil || cell.HyperlinkID == "" {
		return false
	}
	link, ok := e.activeBuffer.Hyperlink(cell.HyperlinkID)
	if !ok {
		return false
	}
	e.pushEvent(OutboundEvent{
		Kind:         EventHyperlinkActivated,
		HyperlinkID:  link.ID,
		HyperlinkURI: link.URI,
	})
	return true
}

// WorkingDirectoryPath extracts the filesystem path from the OSC 7 working
// directory URI (file://host/path), or "" if none was reported.
func (e *Emulator) WorkingDirectoryPath() string {
	e.mu.RLock()
	uri := e.workingDir
	e.mu.RUnlock()

	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	rest := uri[len(prefix):]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return ""
	}
	return rest[slash:]
}

// paramOr returns params[i]'s first value, or def when absent.
func paramOr(params [][]int, i, def int) int {
	if i >= len(params) || len(params[i]) == 0 {
		return def
	}
	return params[i][0]
}

// countOr1 reads a count parameter under the DEC convention that both an
// absent parameter and an explicit 0 mean 1.
func countOr1(params [][]int, i int) int {
	v := paramOr(params, i, 1)
	if v == 0 {
		v = 1
	}
	return v
}

