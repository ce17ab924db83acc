// Package vtparser implements the Paul Williams VT500-series parser state
// machine: the byte-level grammar shared by DEC VTxxx terminals and their
// descendants (xterm, and the hosts that emulate them) for recognizing C0/C1
// controls, CSI, OSC, DCS, and SOS/PM/APC string sequences.
package vtparser

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Parser drives the VT500 state table over a stream of bytes fed
// incrementally via Parse. It holds no reference to a Handler between calls;
// pass the same Handler on every Parse call for a given stream.
type Parser struct {
	state state

	params     [][]int
	curParam   []int
	paramsOver bool // too many params/sub-params; CSI or DCS will be marked ignored
	inSubParam bool // current group was opened by ':' rather than ';' or entry

	intermediates []byte

	// oscBuf accumulates the current OSC string's raw bytes, split into
	// ';'-delimited fields lazily at dispatch time.
	oscBuf       []byte
	oscTruncated bool

	// dcsBytes counts payload bytes delivered to Put since the last Hook,
	// for enforcing maxDCSBytes without buffering the payload.
	dcsBytes     int
	dcsTruncated bool
	maxDCSBytes  int

	// sosPmApcKind records which introducer ('X', '^', or '_') started the
	// current SOS/PM/APC string, since all three share one parser state.
	sosPmApcKind byte

	// utf8Buf accumulates continuation bytes of a multi-byte rune seen in
	// the ground state.
	utf8Buf [utf8.UTFMax]byte
	utf8Len int

	// pendingBase holds the last dispatched base rune so a following
	// combining mark can be folded onto it via NFC normalization, giving an
	// approximation of full grapheme clustering without a UAX #29
	// segmenter.
	pendingBase rune
	hasPending  bool

	// stringPending remembers which string-collecting state ESC interrupted,
	// so a following '\' (completing a 7-bit ST) can finalize it instead of
	// being treated as an ordinary escape dispatch.
	stringPending state
}

// New creates a parser in the ground state with the default DCS payload
// bound (DefaultMaxDCSBytes).
func New() *Parser {
	return &Parser{
		state:       stateGround,
		maxDCSBytes: DefaultMaxDCSBytes,
	}
}

// SetMaxDCSBytes overrides the DCS/SOS/PM/APC payload bound. A non-positive
// value disables the bound (not recommended for untrusted input).
func (p *Parser) SetMaxDCSBytes(n int) {
	p.maxDCSBytes = n
}

// Parse feeds bytes into the state machine, invoking h for every recognized
// event. It is safe to call Parse repeatedly with successive chunks of a
// single logical stream; sequences may span calls.
func (p *Parser) Parse(data []byte, h Handler) {
	for _, b := range data {
		p.step(b, h)
	}

	// Flush the held-back base rune so a feed's final printable is visible
	// once Parse returns (the damage contract covers every byte fed). The
	// cost is that a combining mark split across feed boundaries lands as a
	// separate zero-width Print instead of folding onto its base.
	if p.state == stateGround && p.utf8Len == 0 && p.hasPending {
		h.Print(p.pendingBase)
		p.hasPending = false
	}
}

func (p *Parser) step(b byte, h Handler) {
	// Of the 8-bit C1 controls (0x80-0x9F) only ST (0x9C) is recognized
	// here, as a string terminator; the other C1 bytes are not routed as
	// controls and reach the per-state handlers (in ground, the UTF-8
	// decoder).
	switch {
	case b == 0x1b: // ESC
		p.flushPending(h)
		switch p.state {
		case stateOscString, stateDcsPassthrough, stateSosPmApcString:
			p.stringPending = p.state
		default:
			p.stringPending = stateGround
		}
		p.toEscape()
		return
	case b == 0x18 || b == 0x1a: // CAN, SUB: abort sequence, return to ground
		p.flushPending(h)
		if p.state == stateDcsPassthrough {
			h.Unhook()
		}
		p.toGround()
		return
	case b == 0x9c: // ST as a raw C1 byte
		p.dispatchStringEnd(h, false)
		return
	}

	switch p.state {
	case stateGround:
		p.stepGround(b, h)
	case stateEscape:
		p.stepEscape(b, h)
	case stateEscapeIntermediate:
		p.stepEscapeIntermediate(b, h)
	case stateCsiEntry:
		p.stepCsiEntry(b, h)
	case stateCsiParam:
		p.stepCsiParam(b, h)
	case stateCsiIntermediate:
		p.stepCsiIntermediate(b, h)
	case stateCsiIgnore:
		p.stepCsiIgnore(b, h)
	case stateDcsEntry:
		p.stepDcsEntry(b, h)
	case stateDcsParam:
		p.stepDcsParam(b, h)
	case stateDcsIntermediate:
		p.stepDcsIntermediate(b, h)
	case stateDcsPassthrough:
		p.stepDcsPassthrough(b, h)
	case stateDcsIgnore:
		p.stepDcsIgnore(b, h)
	case stateOscString:
		p.stepOscString(b, h)
	case stateSosPmApcString:
		p.stepSosPmApcString(b, h)
	}
}

// --- ground ---

func (p *Parser) stepGround(b byte, h Handler) {
	switch {
	case b < 0x20 || b == 0x7f:
		p.flushPending(h)
		if isExecutable(b) {
			h.Execute(b)
		}
	case b < 0x80:
		p.printASCII(b, h)
	default:
		p.printUTF8Byte(b, h)
	}
}

func (p *Parser) printASCII(b byte, h Handler) {
	p.flushUTF8(h)
	p.dispatchPrint(rune(b), h)
}

func (p *Parser) printUTF8Byte(b byte, h Handler) {
	if p.utf8Len == 0 {
		// Determine the expected sequence length from the lead byte.
		n := utf8SeqLen(b)
		if n == 0 {
			// Invalid lead byte: replace it with an isolated U+FFFD, which
			// the caller's metrics count as a transient parse error.
			p.dispatchPrint(utf8.RuneError, h)
			return
		}
		p.utf8Buf[0] = b
		p.utf8Len = 1
		if n == 1 {
			p.flushPending(h)
		}
		return
	}

	p.utf8Buf[p.utf8Len] = b
	p.utf8Len++
	if p.utf8Len >= utf8SeqLen(p.utf8Buf[0]) || p.utf8Len >= utf8.UTFMax {
		p.flushUTF8(h)
	}
}

func (p *Parser) flushUTF8(h Handler) {
	if p.utf8Len == 0 {
		return
	}
	r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
	p.utf8Len = 0
	p.dispatchPrint(r, h)
}

// flushPending completes any in-flight UTF-8 sequence and emits the pending
// base rune (held back in case the next rune is a combining mark).
func (p *Parser) flushPending(h Handler) {
	p.flushUTF8(h)
	if p.hasPending {
		h.Print(p.pendingBase)
		p.hasPending = false
	}
}

// dispatchPrint folds combining marks onto the previously printed base rune
// using NFC composition, and otherwise emits Print for each base rune.
// Two ASCII runes never compose, so a pure-ASCII run skips the NFC path and
// performs no allocation per byte.
func (p *Parser) dispatchPrint(r rune, h Handler) {
	if p.hasPending {
		if p.pendingBase >= 0x80 || r >= 0x80 {
			composed := norm.NFC.String(string([]rune{p.pendingBase, r}))
			runes := []rune(composed)
			if len(runes) == 1 {
				p.pendingBase = runes[0]
				return
			}
		}
		h.Print(p.pendingBase)
	}
	p.pendingBase = r
	p.hasPending = true
}

func isExecutable(b byte) bool {
	switch b {
	case 0x18, 0x1a, 0x1b:
		return false
	default:
		return true
	}
}

func utf8SeqLen(lead byte) int {
	switch {
	case lead&0x80 == 0x00:
		return 1
	case lead&0xe0 == 0xc0:
		return 2
	case lead&0xf0 == 0xe0:
		return 3
	case lead&0xf8 == 0xf0:
		return 4
	default:
		return 0
	}
}

// --- escape ---

func (p *Parser) toEscape() {
	p.state = stateEscape
	p.intermediates = p.intermediates[:0]
}

func (p *Parser) toGround() {
	p.state = stateGround
}

func (p *Parser) stepEscape(b byte, h Handler) {
	if p.stringPending != stateGround {
		pending := p.stringPending
		p.stringPending = stateGround
		if b == '\\' {
			p.state = pending
			p.dispatchStringEnd(h, false)
			return
		}
		// Anything other than ESC \ still terminates the string (xterm
		// accepts a bare ESC as the start of ST); the new escape sequence
		// then proceeds from b.
		switch pending {
		case stateOscString:
			h.OscDispatch(splitOSCParams(p.oscBuf), false)
		case stateDcsPassthrough:
			h.Unhook()
		case stateSosPmApcString:
			if p.dcsBytes > 0 {
				h.Unhook()
			}
		}
		p.toGround()
		// fall through to handle b as the start of whatever follows ESC
	}

	switch {
	case b < 0x20:
		if isExecutable(b) {
			h.Execute(b)
		}
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateEscapeIntermediate
	case b == '[':
		p.toCsiEntry()
	case b == ']':
		p.toOscString()
	case b == 'P':
		p.toDcsEntry()
	case b == 'X' || b == '^' || b == '_':
		p.toSosPmApcString(b)
	case b >= 0x30 && b <= 0x7e:
		h.EscDispatch(p.intermediates, false, b)
		p.toGround()
	default:
		p.toGround()
	}
}

func (p *Parser) stepEscapeIntermediate(b byte, h Handler) {
	switch {
	case b < 0x20:
		if isExecutable(b) {
			h.Execute(b)
		}
	case b >= 0x20 && b <= 0x2f:
		if len(p.intermediates) < maxIntermediate {
			p.intermediates = append(p.intermediates, b)
		}
	case b >= 0x30 && b <= 0x7e:
		h.EscDispatch(p.intermediates, len(p.intermediates) > maxIntermediate, b)
		p.toGround()
	default:
		p.toGround()
	}
}

// --- CSI ---

func (p *Parser) toCsiEntry() {
	p.state = stateCsiEntry
	p.intermediates = p.intermediates[:0]
	p.params = p.params[:0]
	p.curParam = nil
	p.paramsOver = false
	p.inSubParam = false
}

func (p *Parser) stepCsiEntry(b byte, h Handler) {
	switch {
	case b < 0x20:
		if isExecutable(b) {
			h.Execute(b)
		}
	case b >= '0' && b <= '9':
		p.curParam = append(p.curParam, int(b-'0'))
		p.state = stateCsiParam
	case b == ':':
		p.pushSubParam()
		p.state = stateCsiParam
	case b == ';':
		p.pushParam()
		p.state = stateCsiParam
	case b >= 0x3c && b <= 0x3f: // private marker '<','=','>','?'
		p.intermediates = append(p.intermediates, b)
		p.state = stateCsiParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.finishParam()
		h.CsiDispatch(p.params, p.intermediates, p.paramsOver, b)
		p.toGround()
	default:
		p.state = stateCsiIgnore
	}
}

func (p *Parser) stepCsiParam(b byte, h Handler) {
	switch {
	case b < 0x20:
		if isExecutable(b) {
			h.Execute(b)
		}
	case b >= '0' && b <= '9':
		p.curParam = append(p.curParam, int(b-'0'))
	case b == ':':
		p.pushSubParam()
	case b == ';':
		p.pushParam()
	case b >= 0x3c && b <= 0x3f:
		p.state = stateCsiIgnore
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateCsiIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.finishParam()
		h.CsiDispatch(p.params, p.intermediates, p.paramsOver, b)
		p.toGround()
	default:
		p.state = stateCsiIgnore
	}
}

func (p *Parser) stepCsiIntermediate(b byte, h Handler) {
	switch {
	case b < 0x20:
		if isExecutable(b) {
			h.Execute(b)
		}
	case b >= 0x20 && b <= 0x2f:
		if len(p.intermediates) < maxIntermediate {
			p.intermediates = append(p.intermediates, b)
		} else {
			p.paramsOver = true
		}
	case b >= 0x40 && b <= 0x7e:
		p.finishParam()
		h.CsiDispatch(p.params, p.intermediates, p.paramsOver, b)
		p.toGround()
	default:
		p.state = stateCsiIgnore
	}
}

func (p *Parser) stepCsiIgnore(b byte, h Handler) {
	switch {
	case b < 0x20:
		if isExecutable(b) {
			h.Execute(b)
		}
	case b >= 0x40 && b <= 0x7e:
		p.toGround()
	}
}

// pushSubParam appends the accumulated digits to the current
// (colon-delimited) parameter group; the first ':' of a parameter opens
// that group as a new params entry.
func (p *Parser) pushSubParam() {
	v := digitsToInt(p.curParam)
	if !p.inSubParam {
		p.params = append(p.params, []int{v})
	} else {
		last := len(p.params) - 1
		p.params[last] = append(p.params[last], v)
	}
	last := len(p.params) - 1
	p.curParam = nil
	p.inSubParam = true
	if len(p.params) > maxParams || len(p.params[last]) > maxParams {
		p.paramsOver = true
	}
}

// pushParam closes the current semicolon-delimited parameter (and any
// accumulated sub-params) and starts a new one.
func (p *Parser) pushParam() {
	if p.inSubParam {
		v := digitsToInt(p.curParam)
		last := len(p.params) - 1
		p.params[last] = append(p.params[last], v)
	} else {
		v := digitsToInt(p.curParam)
		p.params = append(p.params, []int{v})
	}
	p.curParam = nil
	p.inSubParam = false
	if len(p.params) > maxParams {
		p.paramsOver = true
	}
}

// finishParam closes out whatever parameter was in progress, mirroring
// pushParam/pushSubParam but without starting a new group (the sequence is
// ending at the dispatch byte).
func (p *Parser) finishParam() {
	if p.inSubParam {
		v := digitsToInt(p.curParam)
		last := len(p.params) - 1
		p.params[last] = append(p.params[last], v)
	} else {
		v := digitsToInt(p.curParam)
		p.params = append(p.params, []int{v})
	}
	p.curParam = nil
	p.inSubParam = false
}

func digitsToInt(digits []int) int {
	if len(digits) == 0 {
		return 0
	}
	v := 0
	for _, d := range digits {
		v = v*10 + d
		if v > 1<<20 {
			v = 1 << 20 // clamp absurd parameters rather than overflow
		}
	}
	return v
}

// --- DCS ---

func (p *Parser) toDcsEntry() {
	p.state = stateDcsEntry
	p.intermediates = p.intermediates[:0]
	p.params = p.params[:0]
	p.curParam = nil
	p.paramsOver = false
	p.inSubParam = false
}

func (p *Parser) stepDcsEntry(b byte, h Handler) {
	switch {
	case b < 0x20:
		// ignored in DCS entry
	case b >= '0' && b <= '9':
		p.curParam = append(p.curParam, int(b-'0'))
		p.state = stateDcsParam
	case b == ':':
		p.pushSubParam()
		p.state = stateDcsParam
	case b == ';':
		p.pushParam()
		p.state = stateDcsParam
	case b >= 0x3c && b <= 0x3f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateDcsParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateDcsIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.finishParam()
		p.beginDcsPassthrough(h, b)
	default:
		p.state = stateDcsIgnore
	}
}

func (p *Parser) stepDcsParam(b byte, h Handler) {
	switch {
	case b < 0x20:
		// ignored
	case b >= '0' && b <= '9':
		p.curParam = append(p.curParam, int(b-'0'))
	case b == ':':
		p.pushSubParam()
	case b == ';':
		p.pushParam()
	case b >= 0x3c && b <= 0x3f:
		p.state = stateDcsIgnore
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateDcsIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.finishParam()
		p.beginDcsPassthrough(h, b)
	default:
		p.state = stateDcsIgnore
	}
}

func (p *Parser) stepDcsIntermediate(b byte, h Handler) {
	switch {
	case b < 0x20:
		// ignored
	case b >= 0x20 && b <= 0x2f:
		if len(p.intermediates) < maxIntermediate {
			p.intermediates = append(p.intermediates, b)
		} else {
			p.paramsOver = true
		}
	case b >= 0x40 && b <= 0x7e:
		p.finishParam()
		p.beginDcsPassthrough(h, b)
	default:
		p.state = stateDcsIgnore
	}
}

func (p *Parser) beginDcsPassthrough(h Handler, final byte) {
	p.dcsBytes = 0
	p.dcsTruncated = false
	h.Hook(p.params, p.intermediates, p.paramsOver, final)
	p.state = stateDcsPassthrough
}

func (p *Parser) stepDcsPassthrough(b byte, h Handler) {
	if b == 0x9c {
		h.Unhook()
		p.toGround()
		return
	}
	if b < 0x20 && b != 0x1b {
		h.Put(b)
		return
	}
	if p.maxDCSBytes > 0 && p.dcsBytes >= p.maxDCSBytes {
		if !p.dcsTruncated {
			p.dcsTruncated = true
			h.Truncated()
		}
		return
	}
	p.dcsBytes++
	h.Put(b)
}

func (p *Parser) stepDcsIgnore(b byte, h Handler) {
	if b == 0x9c {
		p.toGround()
	}
}

// --- SOS/PM/APC ---

func (p *Parser) toSosPmApcString(introducer byte) {
	p.state = stateSosPmApcString
	p.sosPmApcKind = introducer
	p.dcsBytes = 0
	p.dcsTruncated = false
}

func (p *Parser) stepSosPmApcString(b byte, h Handler) {
	// Treated like a DCS payload with no Hook params (final=0); the
	// introducer byte ('X', '^', or '_') is passed as intermediates[0] so
	// the handler can tell SOS/PM/APC apart, since they share one state.
	if p.dcsBytes == 0 && !p.dcsTruncated {
		h.Hook(nil, []byte{p.sosPmApcKind}, false, 0)
		p.dcsBytes = 1 // sentinel: Hook has been emitted
	}
	if b < 0x20 {
		return
	}
	if p.maxDCSBytes > 0 && p.dcsBytes-1 >= p.maxDCSBytes {
		if !p.dcsTruncated {
			p.dcsTruncated = true
			h.Truncated()
		}
		return
	}
	p.dcsBytes++
	h.Put(b)
}

// --- OSC ---

func (p *Parser) toOscString() {
	p.state = stateOscString
	p.oscBuf = p.oscBuf[:0]
	p.oscTruncated = false
}

func (p *Parser) stepOscString(b byte, h Handler) {
	switch {
	case b == 0x07: // BEL terminator
		p.dispatchStringEnd(h, true)
	case b == 0x1b:
		// Handled by the caller (step) which already routes ESC to
		// toEscape; an ESC \ (ST) sequence completes the OSC string from
		// the escape state instead. Nothing to do here.
	case b < 0x20:
		// ignored
	default:
		if len(p.oscBuf) >= MaxOSCBytes {
			if !p.oscTruncated {
				p.oscTruncated = true
				h.Truncated()
			}
			return
		}
		p.oscBuf = append(p.oscBuf, b)
	}
}

// dispatchStringEnd finalizes whichever string sequence (OSC, or the
// SOS/PM/APC payload represented by a pending Hook) is in progress.
func (p *Parser) dispatchStringEnd(h Handler, bellTerminated bool) {
	switch p.state {
	case stateOscString:
		h.OscDispatch(splitOSCParams(p.oscBuf), bellTerminated)
		p.toGround()
	case stateSosPmApcString:
		if p.dcsBytes > 0 {
			h.Unhook()
		}
		p.toGround()
	case stateDcsPassthrough:
		h.Unhook()
		p.toGround()
	}
}

func splitOSCParams(buf []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(buf); i++ {
		if i == len(buf) || buf[i] == ';' {
			out = append(out, buf[start:i])
			start = i + 1
		}
	}
	return out
}
