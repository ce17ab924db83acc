// Package vtinput encodes host-side input events (key presses, mouse
// activity, pastes, clipboard responses) into the byte sequences a
// DEC/xterm-compatible terminal expects to receive on its input stream. It
// is the mirror image of vtparser: vtparser decodes bytes a host sends to
// the screen, vtinput encodes bytes the screen sends back to the host.
//
// Capturing real keyboard/mouse events from an OS or a TTY is out of scope;
// callers hand vtinput already-decoded logical events.
package vtinput

import (
	"fmt"
	"strings"
)

// Key identifies a non-printable key.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyTab
	KeyBacktab
	KeyEnter
	KeyBackspace
	KeyEscape
)

// Modifiers is a bitmask of held modifier keys, using the xterm modifier
// encoding convention (value + 1 is transmitted as the CSI modifier digit).
type Modifiers int

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// modifierDigit returns the xterm CSI modifier parameter (2-16), or 0 if no
// modifiers are held (in which case no modifier parameter is transmitted).
func (m Modifiers) modifierDigit() int {
	if m == 0 {
		return 0
	}
	d := 1
	if m&ModShift != 0 {
		d += 1
	}
	if m&ModAlt != 0 {
		d += 2
	}
	if m&ModCtrl != 0 {
		d += 4
	}
	if m&ModMeta != 0 {
		d += 8
	}
	return d
}

// CursorKeyMode selects normal (ESC [) vs application (ESC O) cursor-key
// encoding (DECCKM, mode 1).
type CursorKeyMode int

const (
	CursorKeysNormal CursorKeyMode = iota
	CursorKeysApplication
)

// EncodeKey returns the bytes to send for a non-printable key, honoring
// cursor-key mode for the arrow/Home/End family and modifier encoding for
// everything else.
func EncodeKey(k Key, mods Modifiers, cursorMode CursorKeyMode) []byte {
	if letter, ok := arrowLetters[k]; ok {
		return encodeArrowLike(letter, mods, cursorMode)
	}

	switch k {
	case KeyTab:
		return []byte{'\t'}
	case KeyBacktab:
		return []byte("\x1b[Z")
	case KeyEnter:
		return []byte{'\r'}
	case KeyBackspace:
		return []byte{0x7f}
	case KeyEscape:
		return []byte{0x1b}
	case KeyInsert:
		return encodeTilde(2, mods)
	case KeyDelete:
		return encodeTilde(3, mods)
	case KeyPageUp:
		return encodeTilde(5, mods)
	case KeyPageDown:
		return encodeTilde(6, mods)
	}

	if fn, ok := functionTilde[k]; ok {
		return encodeTilde(fn, mods)
	}

	return nil
}

var arrowLetters = map[Key]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
}

// functionTilde maps function keys to their CSI ~ final parameter, per the
// xterm function-key table (F1-F4 use letter finals instead, see below).
var functionTilde = map[Key]int{
	KeyF5:  15,
	KeyF6:  17,
	KeyF7:  18,
	KeyF8:  19,
	KeyF9:  20,
	KeyF10: 21,
	KeyF11: 23,
	KeyF12: 24,
}

var f1f4Letters = map[Key]byte{
	KeyF1: 'P',
	KeyF2: 'Q',
	KeyF3: 'R',
	KeyF4: 'S',
}

func encodeArrowLike(final byte, mods Modifiers, cursorMode CursorKeyMode) []byte {
	d := mods.modifierDigit()
	if d == 0 {
		if cursorMode == CursorKeysApplication {
			return []byte{0x1b, 'O', final}
		}
		return []byte{0x1b, '[', final}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", d, final))
}

func encodeTilde(code int, mods Modifiers) []byte {
	d := mods.modifierDigit()
	if d == 0 {
		return []byte(fmt.Sprintf("\x1b[%d~", code))
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d~", code, d))
}

// EncodeF1ToF4 returns the SS3/CSI encoding for F1-F4, which use letter
// finals (P/Q/R/S) rather than the tilde form used by F5 and above.
func EncodeF1ToF4(k Key, mods Modifiers) ([]byte, bool) {
	letter, ok := f1f4Letters[k]
	if !ok {
		return nil, false
	}
	d := mods.modifierDigit()
	if d == 0 {
		return []byte{0x1b, 'O', letter}, true
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", d, letter)), true
}

// EncodeRune encodes a printable rune or a Ctrl+letter combination into the
// bytes written to the host. Ctrl+A..Ctrl+Z map to 0x01-0x1A; Alt applies an
// ESC prefix (the common "meta sends escape" convention).
func EncodeRune(r rune, mods Modifiers) []byte {
	var out []byte
	if mods&ModAlt != 0 {
		out = append(out, 0x1b)
	}
	if mods&ModCtrl != 0 && r >= 'a' && r <= 'z' {
		out = append(out, byte(r-'a'+1))
		return out
	}
	if mods&ModCtrl != 0 && r >= 'A' && r <= 'Z' {
		out = append(out, byte(r-'A'+1))
		return out
	}
	return append(out, []byte(string(r))...)
}

// MouseButton identifies a mouse button or wheel direction.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseRelease
	MouseWheelUp
	MouseWheelDown
)

// MouseEncoding selects the wire format used for mouse reports.
type MouseEncoding int

const (
	MouseEncodingX10 MouseEncoding = iota
	MouseEncodingSGR
	MouseEncodingURXVT
	MouseEncodingUTF8
)

// EncodeMouse encodes a mouse event at 0-based (col, row) as a CSI mouse
// report in the given encoding. motion marks a drag/move report (bit 32 in
// the button byte) rather than a press/release.
func EncodeMouse(btn MouseButton, mods Modifiers, col, row int, pressed, motion bool, enc MouseEncoding) []byte {
	b := mouseButtonCode(btn)
	if mods&ModShift != 0 {
		b |= 4
	}
	if mods&ModAlt != 0 {
		b |= 8
	}
	if mods&ModCtrl != 0 {
		b |= 16
	}
	if motion {
		b |= 32
	}

	switch enc {
	case MouseEncodingSGR:
		final := byte('M')
		if !pressed && btn != MouseWheelUp && btn != MouseWheelDown {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", b, col+1, row+1, final))
	case MouseEncodingURXVT:
		return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", b+32, col+1, row+1))
	case MouseEncodingUTF8, MouseEncodingX10:
		fallthrough
	default:
		// X10/UTF-8 encodings transmit col/row as single bytes offset by
		// 33 (and by an additional 32 for the button); values above 255
		// saturate rather than wrap, since very large grids cannot be
		// represented in this legacy encoding.
		var sb strings.Builder
		sb.WriteString("\x1b[M")
		sb.WriteByte(clampByte(b + 32))
		sb.WriteByte(clampByte(col + 1 + 32))
		sb.WriteByte(clampByte(row + 1 + 32))
		return []byte(sb.String())
	}
}

func clampByte(v int) byte {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return byte(v)
}

func mouseButtonCode(btn MouseButton) int {
	switch btn {
	case MouseLeft:
		return 0
	case MouseMiddle:
		return 1
	case MouseRight:
		return 2
	case MouseRelease:
		return 3
	case MouseWheelUp:
		return 64
	case MouseWheelDown:
		return 65
	default:
		return 3
	}
}

// EncodeBracketedPaste wraps text in bracketed-paste framing (CSI 200~ ...
// CSI 201~), per DECSET mode 2004.
func EncodeBracketedPaste(text string) []byte {
	var sb strings.Builder
	sb.WriteString("\x1b[200~")
	sb.WriteString(text)
	sb.WriteString("\x1b[201~")
	return []byte(sb.String())
}

// EncodeClipboardResponse builds an OSC 52 response reporting base64Payload
// (already base64-encoded by the caller) for the given selection buffer
// letter (e.g. "c" for CLIPBOARD, "p" for PRIMARY).
func EncodeClipboardResponse(selection, base64Payload string) []byte {
	return []byte(fmt.Sprintf("\x1b]52;%s;%s\x07", selection, base64Payload))
}
