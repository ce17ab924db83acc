package vtparser

// Handler receives callbacks as the parser recognizes pieces of the escape
// sequence grammar. Implementations should treat every method as expected to
// be called many times per second and avoid allocating where possible.
//
// The split mirrors the vte crate's Perform trait: DCS/SOS/PM/APC payload
// bytes stream through Hook/Put/Unhook instead of being buffered by the
// parser, while OSC strings (bounded and always short-lived) are delivered
// as a single accumulated Dispatch call.
type Handler interface {
	// Print is called for each printable rune in the ground state.
	Print(r rune)

	// Execute is called for a C0 control byte or DEL (e.g. BS, LF, CR).
	// 8-bit C1 bytes are not executed.
	Execute(b byte)

	// EscDispatch is called when a simple escape sequence (ESC + final byte,
	// with optional intermediates) completes.
	EscDispatch(intermediates []byte, ignore bool, final byte)

	// CsiDispatch is called when a CSI sequence completes. params holds the
	// semicolon-separated parameters; a sub-parameter group (colon-separated,
	// e.g. "38:2::r:g:b") is represented as a single params[i] slice with
	// more than one element. ignore is true if the sequence exceeded
	// maxParams (parameters or sub-parameters) or carried more than
	// maxIntermediate intermediate bytes (malformed).
	// Bracketed-paste framing arrives here too, as final '~' with parameter
	// 200 (start) or 201 (end).
	CsiDispatch(params [][]int, intermediates []byte, ignore bool, final byte)

	// OscDispatch is called when an OSC string terminates (ST or BEL).
	// params is the ';'-split byte slices after the leading "ESC ]".
	OscDispatch(params [][]byte, bellTerminated bool)

	// Hook begins a DCS (or SOS/PM/APC) payload; Put streams its bytes and
	// Unhook signals the terminating ST. For SOS/PM/APC, final is 0, params
	// is empty, and intermediates holds a single byte identifying which of
	// the three it is: 'X' (SOS), '^' (PM), or '_' (APC).
	Hook(params [][]int, intermediates []byte, ignore bool, final byte)
	Put(b byte)
	Unhook()

	// Truncated is called once if the payload currently being accumulated
	// (OSC string, or DCS/SOS/PM/APC payload via Put) has exceeded its byte
	// bound. Bytes past the bound are dropped (not added to the OSC string,
	// not passed to Put) until the string terminates.
	Truncated()
}

// BaseHandler provides no-op implementations of every Handler method so
// callers can embed it and override only what they need.
type BaseHandler struct{}

func (BaseHandler) Print(r rune)                                                      {}
func (BaseHandler) Execute(b byte)                                                     {}
func (BaseHandler) EscDispatch(intermediates []byte, ignore bool, final byte)          {}
func (BaseHandler) CsiDispatch(params [][]int, intermediates []byte, ignore bool, final byte) {}
func (BaseHandler) OscDispatch(params [][]byte, bellTerminated bool)                   {}
func (BaseHandler) Hook(params [][]int, intermediates []byte, ignore bool, final byte) {}
func (BaseHandler) Put(b byte)                                                         {}
func (BaseHandler) Unhook()                                                            {}
func (BaseHandler) Truncated()                                                         {}

var _ Handler = BaseHandler{}
