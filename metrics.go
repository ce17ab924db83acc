package vtcore

import "sync/atomic"

// Metrics counts the non-fatal problem classes the emulator absorbs:
// transient parse errors, bounded-buffer overflow, and out-of-range
// coordinates. The core never returns errors from these paths; it
// clamps/drops/coarsens and increments a counter instead.
// All fields are safe for concurrent reads from outside the emulator's
// owning goroutine; only the emulator itself increments them.
type Metrics struct {
	// UnknownCSI counts CSI finals with no registered handler.
	UnknownCSI atomic.Uint64
	// UnknownEsc counts simple escape sequences with no registered handler.
	UnknownEsc atomic.Uint64
	// Truncated counts OSC/DCS payloads that exceeded their byte bound.
	Truncated atomic.Uint64
	// InvalidUTF8 counts invalid UTF-8 byte sequences replaced with U+FFFD.
	InvalidUTF8 atomic.Uint64
	// ClampedCoordinate counts absolute cursor positioning (CUP/HVP,
	// CHA/HPA, HPR, VPA) clamped to buffer bounds. Relative moves
	// (CUU/CUD/CUF/CUB, CNL/CPL, VPR) and scroll-region bounds are clamped
	// without being counted.
	ClampedCoordinate atomic.Uint64
	// ScrollbackEvicted counts rows dropped from scrollback by FIFO eviction.
	ScrollbackEvicted atomic.Uint64
}

// Snapshot returns a point-in-time copy of all counters, for tests and
// debuggers (not part of the wire contract).
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UnknownCSI:        m.UnknownCSI.Load(),
		UnknownEsc:        m.UnknownEsc.Load(),
		Truncated:         m.Truncated.Load(),
		InvalidUTF8:       m.InvalidUTF8.Load(),
		ClampedCoordinate: m.ClampedCoordinate.Load(),
		ScrollbackEvicted: m.ScrollbackEvicted.Load(),
	}
}

// MetricsSnapshot is a plain-value copy of Metrics, safe to pass around or
// compare in tests.
type MetricsSnapshot struct {
	UnknownCSI        uint64
	UnknownEsc        uint64
	Truncated         uint64
	InvalidUTF8       uint64
	ClampedCoordinate uint64
	ScrollbackEvicted uint64
}
