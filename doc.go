// Package vtcore is a headless VT-compatible terminal emulator core: a
// double-buffered cell grid with scrollback and damage tracking, driven by a
// Paul Williams VT500-style escape sequence parser.
//
// The three subsystems are the parser (vtparser: bytes in, recognized
// sequences out), the buffer engine (Buffer: cell grid primitives and
// scrollback), and the emulator state machine (Emulator, which owns cursor,
// SGR attributes, DECSET/DECRST modes, character sets, and tab stops, and
// dispatches parsed sequences into buffer mutations). The input direction is
// handled by vtinput, which encodes key, mouse, and paste events into the
// byte sequences an emulated host program expects.
//
// Basic usage:
//
//	emu, err := vtcore.Create(vtcore.Config{Width: 80, Height: 24, MaxScrollback: 1000})
//	if err != nil {
//		log.Fatal(err)
//	}
//	emu.Feed([]byte("\x1b[1;31mhello\x1b[0m\r\n"))
//	frame := emu.Snapshot()
//	damage := emu.TakeDamage()
//
// The emulator never renders pixels, reads environment variables, spawns
// goroutines, or performs I/O. Hosts drive it by feeding bytes and consume
// it through Snapshot, TakeDamage, and the Events queue; rendering, TTY or
// network transport, and clipboard access belong to the host. No operation
// after Create returns an error: malformed or out-of-range input is clamped,
// truncated, or dropped, with counters exposed via MetricsSnapshot.
//
// An Emulator is safe for concurrent use, but the intended model is one
// owner applying Feed and Input sequentially while other goroutines take
// read-only snapshots. Independent instances share nothing.
package vtcore
