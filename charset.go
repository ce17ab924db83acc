package vtcore

// Charset selects the character encoding variant designated into a G0-G3 slot.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetDECSpecial // DEC Special Graphics / line drawing (ESC ( 0)
	CharsetUK
	CharsetLatin1
)

// CharsetIndex selects one of four character set slots (G0-G3).
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// CharsetState holds the four designated character sets (G0-G3) plus the
// GL/GR shift state and an in-flight single-shift (SS2/SS3).
type CharsetState struct {
	Sets [4]Charset
	GL   CharsetIndex // normally G0 or G1, switched by SI/SO
	GR   CharsetIndex
	// SingleShift is the pending single-shift target (CharsetIndexG2 or
	// CharsetIndexG3), or -1 when no single shift is pending. It applies to
	// exactly the next printable character.
	SingleShift CharsetIndex
}

const noSingleShift CharsetIndex = -1

// NewCharsetState returns the power-on default: all slots US-ASCII, GL
// pointing at G0 and GR at G1, no pending single shift.
func NewCharsetState() CharsetState {
	return CharsetState{
		Sets:        [4]Charset{CharsetASCII, CharsetASCII, CharsetASCII, CharsetASCII},
		GL:          CharsetIndexG0,
		GR:          CharsetIndexG1,
		SingleShift: noSingleShift,
	}
}

// Active returns the charset that applies to the next printable character,
// consuming any pending single shift.
func (cs *CharsetState) Active() Charset {
	if cs.SingleShift != noSingleShift {
		c := cs.Sets[cs.SingleShift]
		cs.SingleShift = noSingleShift
		return c
	}
	return cs.Sets[cs.GL]
}

// decSpecialGraphics maps the ASCII bytes xterm's DEC Special Graphics font
// reassigns (mostly box-drawing) to their Unicode equivalents.
var decSpecialGraphics = map[rune]rune{
	'`': '◆', 'a': '▒', 'b': '␉', 'c': '␌',
	'd': '␍', 'e': '␊', 'f': '°', 'g': '±',
	'h': '␤', 'i': '␋', 'j': '┘', 'k': '┐',
	'l': '┌', 'm': '└', 'n': '┼', 'o': '⎺',
	'p': '⎻', 'q': '─', 'r': '⎼', 's': '⎽',
	't': '├', 'u': '┤', 'v': '┴', 'w': '┬',
	'x': '│', 'y': '≤', 'z': '≥', '{': 'π',
	'|': '≠', '}': '£', '~': '·',
}

// translateCharset maps r through the given charset, e.g. DEC Special
// Graphics' line-drawing remap of the ASCII backtick-through-tilde range.
func translateCharset(r rune, cs Charset) rune {
	switch cs {
	case CharsetDECSpecial:
		if mapped, ok := decSpecialGraphics[r]; ok {
			return mapped
		}
	case CharsetUK:
		if r == '#' {
			return '£' // pound sign
		}
	case CharsetLatin1:
		// Latin-1 passes 0xa0-0xff through unchanged; nothing to remap for
		// the 7-bit range a host would send.
	}
	return r
}
