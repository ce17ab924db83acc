package vtinput

import (
	"bytes"
	"testing"
)

func TestEncodeKeyArrows(t *testing.T) {
	tests := []struct {
		key  Key
		mode CursorKeyMode
		want string
	}{
		{KeyUp, CursorKeysNormal, "\x1b[A"},
		{KeyDown, CursorKeysNormal, "\x1b[B"},
		{KeyRight, CursorKeysNormal, "\x1b[C"},
		{KeyLeft, CursorKeysNormal, "\x1b[D"},
		{KeyHome, CursorKeysNormal, "\x1b[H"},
		{KeyEnd, CursorKeysNormal, "\x1b[F"},
		{KeyUp, CursorKeysApplication, "\x1bOA"},
		{KeyLeft, CursorKeysApplication, "\x1bOD"},
	}
	for _, tt := range tests {
		if got := EncodeKey(tt.key, 0, tt.mode); string(got) != tt.want {
			t.Errorf("EncodeKey(%v, 0, %v) = %q, want %q", tt.key, tt.mode, got, tt.want)
		}
	}
}

func TestEncodeKeyModifiers(t *testing.T) {
	tests := []struct {
		key  Key
		mods Modifiers
		want string
	}{
		{KeyUp, ModShift, "\x1b[1;2A"},
		{KeyUp, ModAlt, "\x1b[1;3A"},
		{KeyUp, ModCtrl, "\x1b[1;5A"},
		{KeyUp, ModShift | ModCtrl, "\x1b[1;6A"},
		{KeyUp, ModShift | ModAlt | ModCtrl | ModMeta, "\x1b[1;16A"},
		{KeyDelete, ModCtrl, "\x1b[3;5~"},
	}
	for _, tt := range tests {
		// Modified keys ignore application mode.
		if got := EncodeKey(tt.key, tt.mods, CursorKeysApplication); string(got) != tt.want {
			t.Errorf("EncodeKey(%v, %v) = %q, want %q", tt.key, tt.mods, got, tt.want)
		}
	}
}

func TestEncodeKeyEditingAndFunction(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyInsert, "\x1b[2~"},
		{KeyDelete, "\x1b[3~"},
		{KeyPageUp, "\x1b[5~"},
		{KeyPageDown, "\x1b[6~"},
		{KeyF5, "\x1b[15~"},
		{KeyF12, "\x1b[24~"},
		{KeyTab, "\t"},
		{KeyBacktab, "\x1b[Z"},
		{KeyEnter, "\r"},
		{KeyBackspace, "\x7f"},
		{KeyEscape, "\x1b"},
	}
	for _, tt := range tests {
		if got := EncodeKey(tt.key, 0, CursorKeysNormal); string(got) != tt.want {
			t.Errorf("EncodeKey(%v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestEncodeF1ToF4(t *testing.T) {
	got, ok := EncodeF1ToF4(KeyF1, 0)
	if !ok || string(got) != "\x1bOP" {
		t.Errorf("F1 = %q, %v", got, ok)
	}
	got, ok = EncodeF1ToF4(KeyF3, ModShift)
	if !ok || string(got) != "\x1b[1;2R" {
		t.Errorf("shift-F3 = %q, %v", got, ok)
	}
	if _, ok := EncodeF1ToF4(KeyF5, 0); ok {
		t.Error("F5 must not encode via the letter-final form")
	}
}

func TestEncodeRune(t *testing.T) {
	if got := EncodeRune('a', 0); string(got) != "a" {
		t.Errorf("plain a = %q", got)
	}
	if got := EncodeRune('é', 0); string(got) != "é" {
		t.Errorf("utf-8 rune = %q", got)
	}
	if got := EncodeRune('a', ModCtrl); !bytes.Equal(got, []byte{0x01}) {
		t.Errorf("ctrl-a = %v, want 0x01", got)
	}
	if got := EncodeRune('Z', ModCtrl); !bytes.Equal(got, []byte{0x1a}) {
		t.Errorf("ctrl-Z = %v, want 0x1a", got)
	}
	if got := EncodeRune('x', ModAlt); string(got) != "\x1bx" {
		t.Errorf("alt-x = %q, want ESC prefix", got)
	}
	if got := EncodeRune('c', ModAlt|ModCtrl); !bytes.Equal(got, []byte{0x1b, 0x03}) {
		t.Errorf("ctrl-alt-c = %v", got)
	}
}

func TestEncodeMouseSGR(t *testing.T) {
	press := EncodeMouse(MouseLeft, 0, 4, 9, true, false, MouseEncodingSGR)
	if string(press) != "\x1b[<0;5;10M" {
		t.Errorf("press = %q", press)
	}
	release := EncodeMouse(MouseLeft, 0, 4, 9, false, false, MouseEncodingSGR)
	if string(release) != "\x1b[<0;5;10m" {
		t.Errorf("release = %q", release)
	}
	wheel := EncodeMouse(MouseWheelUp, 0, 0, 0, true, false, MouseEncodingSGR)
	if string(wheel) != "\x1b[<64;1;1M" {
		t.Errorf("wheel = %q", wheel)
	}
	drag := EncodeMouse(MouseLeft, 0, 2, 2, true, true, MouseEncodingSGR)
	if string(drag) != "\x1b[<32;3;3M" {
		t.Errorf("drag = %q", drag)
	}
	ctrl := EncodeMouse(MouseRight, ModCtrl, 0, 0, true, false, MouseEncodingSGR)
	if string(ctrl) != "\x1b[<18;1;1M" {
		t.Errorf("ctrl-right = %q", ctrl)
	}
}

func TestEncodeMouseX10(t *testing.T) {
	got := EncodeMouse(MouseLeft, 0, 0, 0, true, false, MouseEncodingX10)
	want := []byte{0x1b, '[', 'M', 32, 33, 33}
	if !bytes.Equal(got, want) {
		t.Errorf("x10 = %v, want %v", got, want)
	}

	// Coordinates past the legacy byte range saturate.
	got = EncodeMouse(MouseLeft, 0, 500, 500, true, false, MouseEncodingX10)
	if got[4] != 255 || got[5] != 255 {
		t.Errorf("x10 large coords = %v, want saturated", got)
	}
}

func TestEncodeMouseURXVT(t *testing.T) {
	got := EncodeMouse(MouseMiddle, 0, 9, 4, true, false, MouseEncodingURXVT)
	if string(got) != "\x1b[33;10;5M" {
		t.Errorf("urxvt = %q", got)
	}
}

func TestEncodeBracketedPaste(t *testing.T) {
	got := EncodeBracketedPaste("ab")
	if string(got) != "\x1b[200~ab\x1b[201~" {
		t.Errorf("paste = %q", got)
	}
}

func TestEncodeClipboardResponse(t *testing.T) {
	got := EncodeClipboardResponse("c", "aGVsbG8=")
	if string(got) != "\x1b]52;c;aGVsbG8=\x07" {
		t.Errorf("clipboard response = %q", got)
	}
}
