package vtcore

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/termkit/vtcore/vtinput"
	"github.com/termkit/vtcore/vtparser"
)

// ErrInvalidConfig is wrapped by Create when a Config fails validation;
// construction is the only operation that can fail.
var ErrInvalidConfig = fmt.Errorf("vtcore: invalid config")

// RaxolModeEnv names the environment variable host drivers may branch on to
// select an alternate outbound framing (e.g. JSON-over-stdio for editor
// embedding). The core itself never reads the environment; the constant
// exists so every driver spells the knob the same way.
const RaxolModeEnv = "RAXOL_MODE"

// Config describes the initial state of an Emulator. Every provider field
// is optional and defaults to a no-op implementation; see providers.go.
type Config struct {
	Width  int
	Height int

	// MaxScrollback bounds the primary buffer's scrollback, in rows. Zero
	// disables scrollback storage. Ignored if Scrollback is set explicitly.
	MaxScrollback int

	// MaxDCSBytes sets vtparser's bound on a DCS/SOS/PM/APC payload. Zero
	// selects vtparser.DefaultMaxDCSBytes. graphics.go's capture keeps its
	// own fixed cap (maxGraphicsBytes), which this field does not change.
	MaxDCSBytes int

	// InitialModes seeds DECSET/DECRST-controlled modes before the first
	// Feed call, keyed by DEC private-mode number.
	InitialModes map[ModeCode]bool

	// AutoResize grows the buffer instead of scrolling or wrapping, so the
	// full output of a command is captured without eviction.
	AutoResize bool

	Response         ResponseProvider
	Bell             BellProvider
	Title            TitleProvider
	APC              APCProvider
	PM               PMProvider
	SOS              SOSProvider
	Clipboard        ClipboardProvider
	Scrollback       ScrollbackProvider
	Recording        RecordingProvider
	ShellIntegration ShellIntegrationProvider
	Middleware       *Middleware
}

// Emulator is a headless VT-compatible terminal: a double-buffered cell
// grid plus the cursor/attribute/mode state a Paul Williams VT500-style
// parser dispatches into. All methods are
// safe for concurrent use via an internal RWMutex; Create is the only
// fallible entry point.
type Emulator struct {
	mu sync.RWMutex

	rows int
	cols int

	primaryBuffer   *Buffer
	alternateBuffer *Buffer
	activeBuffer    *Buffer

	cursor             Cursor
	savedCursorPrimary *SavedCursor
	savedCursorAlt     *SavedCursor

	template CellTemplate

	charsetState CharsetState

	scrollTop    int
	scrollBottom int

	modes Modes

	title      string
	iconName   string
	titleStack []string

	colors map[int]color.Color

	currentHyperlinkID string
	workingDir         string
	lastPrinted        rune
	pasting            bool

	selection   Selection
	promptMarks []PromptMark

	parser   *vtparser.Parser
	graphics graphicsCapture

	metrics Metrics
	damage  *damageTracker

	events []OutboundEvent

	autoResize bool

	middleware *Middleware

	responseProvider         ResponseProvider
	bellProvider             BellProvider
	titleProvider            TitleProvider
	apcProvider              APCProvider
	pmProvider               PMProvider
	sosProvider              SOSProvider
	clipboardProvider        ClipboardProvider
	recordingProvider        RecordingProvider
	shellIntegrationProvider ShellIntegrationProvider
}

// Create builds an Emulator from cfg. The only failures are bad dimensions
// or a negative scrollback bound; every other field degrades to a
// documented default.
func Create(cfg Config) (*Emulator, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: width and height must be positive, got %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.MaxScrollback < 0 {
		return nil, fmt.Errorf("%w: max scrollback must not be negative, got %d", ErrInvalidConfig, cfg.MaxScrollback)
	}

	e := &Emulator{
		rows:                     cfg.Height,
		cols:                     cfg.Width,
		colors:                   make(map[int]color.Color),
		cursor:                   *NewCursor(),
		template:                 NewCellTemplate(),
		charsetState:             NewCharsetState(),
		modes:                    NewModes(),
		damage:                   newDamageTracker(),
		autoResize:               cfg.AutoResize,
		middleware:               cfg.Middleware,
		responseProvider:         cfg.Response,
		bellProvider:             cfg.Bell,
		titleProvider:            cfg.Title,
		apcProvider:              cfg.APC,
		pmProvider:               cfg.PM,
		sosProvider:              cfg.SOS,
		clipboardProvider:        cfg.Clipboard,
		recordingProvider:        cfg.Recording,
		shellIntegrationProvider: cfg.ShellIntegration,
	}

	if e.bellProvider == nil {
		e.bellProvider = NoopBell{}
	}
	if e.titleProvider == nil {
		e.titleProvider = NoopTitle{}
	}
	if e.apcProvider == nil {
		e.apcProvider = NoopAPC{}
	}
	if e.pmProvider == nil {
		e.pmProvider = NoopPM{}
	}
	if e.sosProvider == nil {
		e.sosProvider = NoopSOS{}
	}
	if e.clipboardProvider == nil {
		e.clipboardProvider = NoopClipboard{}
	}
	if e.recordingProvider == nil {
		e.recordingProvider = NoopRecording{}
	}
	if e.shellIntegrationProvider == nil {
		e.shellIntegrationProvider = NoopShellIntegration{}
	}
	if e.middleware == nil {
		e.middleware = &Middleware{}
	}

	scrollback := cfg.Scrollback
	if scrollback == nil {
		scrollback = newScrollbackWithMetrics(cfg.MaxScrollback, &e.metrics)
	}
	e.primaryBuffer = NewBufferWithStorage(e.rows, e.cols, scrollback)
	e.alternateBuffer = NewBuffer(e.rows, e.cols)
	e.activeBuffer = e.primaryBuffer

	e.scrollTop = 0
	e.scrollBottom = e.rows

	e.parser = vtparser.New()
	if cfg.MaxDCSBytes > 0 {
		e.parser.SetMaxDCSBytes(cfg.MaxDCSBytes)
	}

	for code, on := range cfg.InitialModes {
		e.modes.Set(code, on)
	}

	return e, nil
}

// Rows returns the terminal height in character rows.
func (e *Emulator) Rows() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rows
}

// Cols returns the terminal width in character columns.
func (e *Emulator) Cols() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cols
}

// Cell returns the cell at (row, col) in the active buffer, or nil if out
// of bounds.
func (e *Emulator) Cell(row, col int) *Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer.Cell(row, col)
}

// CursorPos returns the current cursor position (0-based).
func (e *Emulator) CursorPos() (row, col int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.Row, e.cursor.Col
}

// CursorVisible returns true if the cursor is currently visible.
func (e *Emulator) CursorVisible() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.Visible
}

// CursorStyle returns the current cursor rendering style.
func (e *Emulator) CursorStyle() CursorStyle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor.Style
}

// Title returns the current window title string (OSC 0/2).
func (e *Emulator) Title() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.title
}

// IconName returns the current icon name string (OSC 0/1).
func (e *Emulator) IconName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.iconName
}

// Mode reports the current on/off state of a single mode, by DEC
// private-mode number.
func (e *Emulator) Mode(code ModeCode) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.modes.Get(code)
}

// SetMode mutates a single DECSET/DECRST-controlled mode from outside the
// byte stream, for hosts and test harnesses.
func (e *Emulator) SetMode(code ModeCode, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setModeLocked(code, on)
}

// Feed parses data as a stream of escape sequences and applies every
// resulting command to the buffer and state. It always returns len(data)
// and a nil error.
func (e *Emulator) Feed(data []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordingProvider.Record(data)
	e.parser.Parse(data, e)
	return len(data), nil
}

// FeedString is a convenience wrapper converting s to bytes and calling Feed.
func (e *Emulator) FeedString(s string) (int, error) {
	return e.Feed([]byte(s))
}

// Input encodes a key/mouse/paste event into the byte sequence the
// emulated host program expects, honoring the emulator's current modes.
func (e *Emulator) Input(ev InputEvent) []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cursorMode := vtinput.CursorKeysNormal
	if e.modes.CursorKeysApp {
		cursorMode = vtinput.CursorKeysApplication
	}

	switch ev.Kind {
	case InputKeyEvent:
		if ev.IsKey {
			if seq, ok := vtinput.EncodeF1ToF4(ev.Key, ev.Modifiers); ok {
				return seq
			}
			return vtinput.EncodeKey(ev.Key, ev.Modifiers, cursorMode)
		}
		return vtinput.EncodeRune(ev.Rune, ev.Modifiers)
	case InputMouseEvent:
		return vtinput.EncodeMouse(ev.MouseButton, ev.Modifiers, ev.Col, ev.Row, ev.Pressed, ev.Motion, e.modes.MouseEncoding)
	case InputPasteEvent:
		if e.modes.BracketedPaste {
			return vtinput.EncodeBracketedPaste(ev.Text)
		}
		return []byte(ev.Text)
	}
	return nil
}

// InputEventKind discriminates the variant held by InputEvent.
type InputEventKind int

const (
	InputKeyEvent InputEventKind = iota
	InputMouseEvent
	InputPasteEvent
)

// InputEvent is the host-facing description of a single input occurrence
// to encode via Input: a key press (by Key or by Rune), a mouse event, or
// a paste.
type InputEvent struct {
	Kind InputEventKind

	// InputKeyEvent
	IsKey     bool // true selects Key (non-printable); false selects Rune
	Key       vtinput.Key
	Rune      rune
	Modifiers vtinput.Modifiers

	// InputMouseEvent
	MouseButton vtinput.MouseButton
	Col, Row    int
	Pressed     bool
	Motion      bool

	// InputPasteEvent
	Text string
}

// Resize changes the terminal dimensions. When shrinking rows on the
// primary buffer past the cursor, lines above it are pushed to scrollback
// to preserve content near the cursor. Invalid dimensions (<= 0) are
// ignored.
func (e *Emulator) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	oldRows := e.rows

	if rows < oldRows && e.activeBuffer == e.primaryBuffer && e.cursor.Row >= rows {
		linesToScroll := oldRows - rows
		e.primaryBuffer.ScrollUp(0, oldRows, linesToScroll)
		e.cursor.Row -= linesToScroll
		if e.cursor.Row < 0 {
			e.cursor.Row = 0
		}
	}

	e.rows = rows
	e.cols = cols
	e.primaryBuffer.Resize(rows, cols)
	e.alternateBuffer.Resize(rows, cols)

	e.cursor.Row = clamp(e.cursor.Row, 0, rows-1)
	e.cursor.Col = clamp(e.cursor.Col, 0, cols)

	e.scrollTop = 0
	e.scrollBottom = rows
}

// clamp bounds val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Reset reinitializes all emulator state as if freshly Created with the
// same dimensions (ESC c / RIS). Scrollback does not survive (see
// DESIGN.md's Open Question decision): the primary buffer's scrollback
// storage is rebuilt from scratch, same as construction.
func (e *Emulator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Emulator) resetLocked() {
	storage := e.primaryBuffer.ScrollbackProvider()
	maxLines := 0
	if storage != nil {
		maxLines = storage.MaxLines()
	}
	e.primaryBuffer = NewBufferWithStorage(e.rows, e.cols, newScrollbackWithMetrics(maxLines, &e.metrics))
	e.alternateBuffer = NewBuffer(e.rows, e.cols)
	e.activeBuffer = e.primaryBuffer

	e.cursor = *NewCursor()
	e.savedCursorPrimary = nil
	e.savedCursorAlt = nil
	e.template = NewCellTemplate()
	e.charsetState = NewCharsetState()
	e.scrollTop = 0
	e.scrollBottom = e.rows
	e.modes = NewModes()
	e.title = ""
	e.iconName = ""
	e.titleStack = nil
	e.colors = make(map[int]color.Color)
	e.currentHyperlinkID = ""
	e.lastPrinted = 0
	e.pasting = false
	e.selection = Selection{}
	e.graphics = graphicsCapture{}
}

// writeResponse sends data back via the response provider, if set. Callers
// must hold at least a read lock.
func (e *Emulator) writeResponse(data []byte) {
	if e.responseProvider != nil {
		e.responseProvider.Write(data)
	}
}

func (e *Emulator) writeResponseString(s string) {
	e.writeResponse([]byte(s))
}

// --- Scrollback ---

// ScrollbackLen returns the number of lines stored in scrollback (primary
// buffer only).
func (e *Emulator) ScrollbackLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primaryBuffer.ScrollbackLen()
}

// ScrollbackLine returns a line from scrollback, where 0 is the oldest line.
func (e *Emulator) ScrollbackLine(index int) []Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primaryBuffer.ScrollbackLine(index)
}

// ClearScrollback removes all stored scrollback lines.
func (e *Emulator) ClearScrollback() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.primaryBuffer.ClearScrollback()
}

// SetMaxScrollback sets the maximum number of scrollback lines to retain.
func (e *Emulator) SetMaxScrollback(max int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.primaryBuffer.SetMaxScrollback(max)
}

// MaxScrollback returns the current maximum scrollback capacity.
func (e *Emulator) MaxScrollback() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primaryBuffer.MaxScrollback()
}

// --- Damage ---

// TakeDamage returns the set of rows mutated since the last call and
// atomically clears it.
func (e *Emulator) TakeDamage() DamageSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.damage.take(e.activeBuffer)
}

// --- Buffer/cursor read helpers ---

// LineContent returns the text content of a line in the active buffer,
// trailing spaces trimmed.
func (e *Emulator) LineContent(row int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer.LineContent(row)
}

// String renders every row of the active buffer as newline-joined text.
func (e *Emulator) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []byte
	for row := 0; row < e.rows; row++ {
		if row > 0 {
			out = append(out, '\n')
		}
		out = append(out, e.activeBuffer.LineContent(row)...)
	}
	return string(out)
}

// IsPasting returns true while the fed stream sits between a bracketed-paste
// start marker (CSI 200~) and its end marker (CSI 201~), so hosts can tell
// pasted text apart from typed input.
func (e *Emulator) IsPasting() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pasting
}

// IsAlternateScreen returns true if the alternate buffer is currently active.
func (e *Emulator) IsAlternateScreen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer == e.alternateBuffer
}

// ScrollRegion returns the current scroll region boundaries (0-based,
// exclusive bottom).
func (e *Emulator) ScrollRegion() (top, bottom int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scrollTop, e.scrollBottom
}

// IsWrapped returns true if the line was soft-wrapped rather than ended by
// an explicit newline.
func (e *Emulator) IsWrapped(row int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeBuffer.IsWrapped(row)
}

// WorkingDirectory returns the last working directory reported via OSC 7.
func (e *Emulator) WorkingDirectory() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.workingDir
}

// MetricsSnapshot returns a point-in-time copy of the emulator's non-fatal
// error counters.
func (e *Emulator) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// --- Recording ---

// RecordedData returns all raw bytes captured by the recording provider.
func (e *Emulator) RecordedData() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recordingProvider.Data()
}

// ClearRecording discards all recorded data.
func (e *Emulator) ClearRecording() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordingProvider.Clear()
}

// --- Runtime provider/middleware swaps ---

func (e *Emulator) SetResponseProvider(p ResponseProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responseProvider = p
}

func (e *Emulator) SetBellProvider(p BellProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bellProvider = p
}

func (e *Emulator) SetTitleProvider(p TitleProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.titleProvider = p
}

func (e *Emulator) SetClipboardProvider(p ClipboardProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clipboardProvider = p
}

func (e *Emulator) SetScrollbackProvider(storage ScrollbackProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.primaryBuffer.SetScrollbackProvider(storage)
}

func (e *Emulator) SetMiddleware(mw *Middleware) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if mw == nil {
		mw = &Middleware{}
	}
	e.middleware = mw
}

func (e *Emulator) SetRecordingProvider(p RecordingProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p == nil {
		p = NoopRecording{}
	}
	e.recordingProvider = p
}
