package vtcore

// Middleware intercepts vtparser.Handler calls, allowing custom behavior
// before/after execution. Each field wraps one handler method: receive the
// original parameters plus a next function to invoke the default
// implementation. A nil field falls straight through to the default.
type Middleware struct {
	// Print wraps the Print handler.
	Print func(r rune, next func(rune))

	// Execute wraps the Execute handler.
	Execute func(b byte, next func(byte))

	// EscDispatch wraps the EscDispatch handler.
	EscDispatch func(intermediates []byte, ignore bool, final byte, next func([]byte, bool, byte))

	// CsiDispatch wraps the CsiDispatch handler.
	CsiDispatch func(params [][]int, intermediates []byte, ignore bool, final byte, next func([][]int, []byte, bool, byte))

	// OscDispatch wraps the OscDispatch handler.
	OscDispatch func(params [][]byte, bellTerminated bool, next func([][]byte, bool))

	// Hook wraps the Hook handler (DCS/SOS/PM/APC entry).
	Hook func(params [][]int, intermediates []byte, ignore bool, final byte, next func([][]int, []byte, bool, byte))

	// Put wraps the Put handler (DCS/SOS/PM/APC payload byte).
	Put func(b byte, next func(byte))

	// Unhook wraps the Unhook handler (DCS/SOS/PM/APC terminator).
	Unhook func(next func())

	// Truncated wraps the Truncated handler.
	Truncated func(next func())
}
