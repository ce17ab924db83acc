package vtcore

import "github.com/termkit/vtcore/vtinput"

// MouseTrackingMode selects which mouse events are reported.
type MouseTrackingMode int

const (
	MouseTrackingOff MouseTrackingMode = iota
	MouseTrackingX10
	MouseTrackingNormal
	MouseTrackingButton
	MouseTrackingAny
)

// Modes holds the DECSET/DECRST-controlled behavior flags. ModeCode
// identifies the DEC private-mode number SetMode and Create's InitialModes
// address each one by.
type Modes struct {
	InsertReplace       bool // true = insert mode (IRM, CSI 4 h)
	OriginMode          bool // DECOM, mode 6
	AutoWrap            bool // DECAWM, mode 7
	CursorKeysApp       bool // DECCKM, mode 1
	KeypadApp           bool // DECKPAM / DECKPNM
	BracketedPaste      bool // mode 2004
	LineFeedNewLine     bool // LNM, CSI 20 h
	MouseTracking       MouseTrackingMode
	MouseEncoding       vtinput.MouseEncoding
	AltScreen           bool // mode 47/1047/1049
	AltScreenSaveCursor bool // mode 1049 also saves/restores the cursor
	ShowCursor          bool // DECTCEM, mode 25
	ReverseVideo        bool // DECSCNM, mode 5
}

// NewModes returns the power-on default mode set: auto-wrap and cursor
// visibility on, everything else off, matching xterm's reset state.
func NewModes() Modes {
	return Modes{
		AutoWrap:   true,
		ShowCursor: true,
	}
}

// ModeCode identifies a mode by its DEC private-mode number (the `?n` in
// `CSI ? n h`) or, for the handful of non-private ANSI modes, by a
// negative sentinel. Used by SetMode and Create's InitialModes for
// host-facing control.
type ModeCode int

const (
	ModeDECCKM          ModeCode = 1
	ModeDECCOLM         ModeCode = 3
	ModeDECSCNM         ModeCode = 5
	ModeDECOM           ModeCode = 6
	ModeDECAWM          ModeCode = 7
	ModeMouseX10        ModeCode = 9
	ModeBlinkCursor     ModeCode = 12
	ModeDECTCEM         ModeCode = 25
	ModeMouseNormal     ModeCode = 1000
	ModeMouseButton     ModeCode = 1002
	ModeMouseAny        ModeCode = 1003
	ModeMouseUTF8       ModeCode = 1005
	ModeMouseSGR        ModeCode = 1006
	ModeMouseURXVT      ModeCode = 1015
	ModeAltScreen       ModeCode = 47
	ModeAltScreen1047   ModeCode = 1047
	ModeSaveCursor      ModeCode = 1048
	ModeAltScreen1049   ModeCode = 1049
	ModeBracketedPaste  ModeCode = 2004

	// ModeIRM and ModeLNM are the two modes set via bare (non-private)
	// CSI h/l; they get negative codes so they cannot collide with the DEC
	// private-mode number space.
	ModeIRM ModeCode = -4
	ModeLNM ModeCode = -20
)

// Set applies a private-mode (DECSET/DECRST) change to the mode set. It does
// not handle 1049's save/restore-cursor side effect or alt-screen buffer
// switch; the executor handles those since they touch buffers, not just
// flags.
func (m *Modes) Set(code ModeCode, on bool) {
	switch code {
	case ModeDECCKM:
		m.CursorKeysApp = on
	case ModeDECSCNM:
		m.ReverseVideo = on
	case ModeDECOM:
		m.OriginMode = on
	case ModeDECAWM:
		m.AutoWrap = on
	case ModeMouseX10:
		if on {
			m.MouseTracking = MouseTrackingX10
		} else if m.MouseTracking == MouseTrackingX10 {
			m.MouseTracking = MouseTrackingOff
		}
	case ModeDECTCEM:
		m.ShowCursor = on
	case ModeMouseNormal:
		if on {
			m.MouseTracking = MouseTrackingNormal
		} else if m.MouseTracking == MouseTrackingNormal {
			m.MouseTracking = MouseTrackingOff
		}
	case ModeMouseButton:
		if on {
			m.MouseTracking = MouseTrackingButton
		} else if m.MouseTracking == MouseTrackingButton {
			m.MouseTracking = MouseTrackingOff
		}
	case ModeMouseAny:
		if on {
			m.MouseTracking = MouseTrackingAny
		} else if m.MouseTracking == MouseTrackingAny {
			m.MouseTracking = MouseTrackingOff
		}
	case ModeMouseUTF8:
		if on {
			m.MouseEncoding = vtinput.MouseEncodingUTF8
		} else if m.MouseEncoding == vtinput.MouseEncodingUTF8 {
			m.MouseEncoding = vtinput.MouseEncodingX10
		}
	case ModeMouseSGR:
		if on {
			m.MouseEncoding = vtinput.MouseEncodingSGR
		} else if m.MouseEncoding == vtinput.MouseEncodingSGR {
			m.MouseEncoding = vtinput.MouseEncodingX10
		}
	case ModeMouseURXVT:
		if on {
			m.MouseEncoding = vtinput.MouseEncodingURXVT
		} else if m.MouseEncoding == vtinput.MouseEncodingURXVT {
			m.MouseEncoding = vtinput.MouseEncodingX10
		}
	case ModeBracketedPaste:
		m.BracketedPaste = on
	case ModeIRM:
		m.InsertReplace = on
	case ModeLNM:
		m.LineFeedNewLine = on
	}
}

// Get reports the current on/off state of a mode, for SetMode/Create's
// read-back and for host test harnesses.
func (m *Modes) Get(code ModeCode) bool {
	switch code {
	case ModeDECCKM:
		return m.CursorKeysApp
	case ModeDECSCNM:
		return m.ReverseVideo
	case ModeDECOM:
		return m.OriginMode
	case ModeDECAWM:
		return m.AutoWrap
	case ModeDECTCEM:
		return m.ShowCursor
	case ModeMouseX10:
		return m.MouseTracking == MouseTrackingX10
	case ModeMouseNormal:
		return m.MouseTracking == MouseTrackingNormal
	case ModeMouseButton:
		return m.MouseTracking == MouseTrackingButton
	case ModeMouseAny:
		return m.MouseTracking == MouseTrackingAny
	case ModeMouseUTF8:
		return m.MouseEncoding == vtinput.MouseEncodingUTF8
	case ModeMouseSGR:
		return m.MouseEncoding == vtinput.MouseEncodingSGR
	case ModeMouseURXVT:
		return m.MouseEncoding == vtinput.MouseEncodingURXVT
	case ModeBracketedPaste:
		return m.BracketedPaste
	case ModeAltScreen, ModeAltScreen1047, ModeAltScreen1049:
		return m.AltScreen
	case ModeIRM:
		return m.InsertReplace
	case ModeLNM:
		return m.LineFeedNewLine
	}
	return false
}
