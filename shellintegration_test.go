package vtcore

import "testing"

type markRecorder struct {
	marks []ShellIntegrationMark
	codes []int
}

func (m *markRecorder) OnMark(mark ShellIntegrationMark, exitCode int) {
	m.marks = append(m.marks, mark)
	m.codes = append(m.codes, exitCode)
}

func TestShellIntegrationProviderNotified(t *testing.T) {
	rec := &markRecorder{}
	emu, err := Create(Config{Width: 20, Height: 5, ShellIntegration: rec})
	if err != nil {
		t.Fatal(err)
	}

	feed(t, emu, "\x1b]133;A\x07\x1b]133;B\x07\x1b]133;C\x07\x1b]133;D;42\x07")

	want := []ShellIntegrationMark{PromptStart, CommandStart, CommandExecuted, CommandFinished}
	if len(rec.marks) != len(want) {
		t.Fatalf("got %d marks, want %d", len(rec.marks), len(want))
	}
	for i, w := range want {
		if rec.marks[i] != w {
			t.Errorf("mark %d = %v, want %v", i, rec.marks[i], w)
		}
	}
	if rec.codes[3] != 42 {
		t.Errorf("exit code = %d, want 42", rec.codes[3])
	}
	if rec.codes[0] != -1 {
		t.Errorf("non-finish marks should carry exit code -1, got %d", rec.codes[0])
	}
}

func TestPromptNavigation(t *testing.T) {
	emu := newEmulator(t, 20, 10, 0)

	feed(t, emu, "\x1b]133;A\x07$ one\r\n\r\n\x1b]133;A\x07$ two\r\n\r\n\x1b]133;A\x07$ three")

	marks := emu.PromptMarks()
	if len(marks) != 3 {
		t.Fatalf("got %d marks, want 3", len(marks))
	}
	if marks[0].Row != 0 || marks[1].Row != 2 || marks[2].Row != 4 {
		t.Errorf("mark rows = %d,%d,%d, want 0,2,4", marks[0].Row, marks[1].Row, marks[2].Row)
	}

	if got := emu.NextPromptRow(0, PromptStart); got != 2 {
		t.Errorf("NextPromptRow(0) = %d, want 2", got)
	}
	if got := emu.PrevPromptRow(4, PromptStart); got != 2 {
		t.Errorf("PrevPromptRow(4) = %d, want 2", got)
	}
	if got := emu.NextPromptRow(4, PromptStart); got != -1 {
		t.Errorf("NextPromptRow past last = %d, want -1", got)
	}
	if mark := emu.GetPromptMarkAt(2); mark == nil || mark.Type != PromptStart {
		t.Errorf("GetPromptMarkAt(2) = %+v", mark)
	}
	if mark := emu.GetPromptMarkAt(3); mark != nil {
		t.Errorf("GetPromptMarkAt(3) = %+v, want nil", mark)
	}
}

func TestPromptMarksAbsoluteRowsIncludeScrollback(t *testing.T) {
	emu := newEmulator(t, 10, 2, 10)

	// Scroll two rows into scrollback, then mark: the absolute row counts
	// the evicted rows.
	feed(t, emu, "\n\n\n\x1b]133;A\x07")

	marks := emu.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("got %d marks", len(marks))
	}
	if marks[0].Row != 3 {
		t.Errorf("mark row = %d, want 3 (2 scrollback + cursor row 1)", marks[0].Row)
	}
}

func TestClearPromptMarks(t *testing.T) {
	emu := newEmulator(t, 10, 3, 0)

	feed(t, emu, "\x1b]133;A\x07")
	if emu.PromptMarkCount() != 1 {
		t.Fatal("expected one mark")
	}
	emu.ClearPromptMarks()
	if emu.PromptMarkCount() != 0 {
		t.Error("marks should be cleared")
	}
}

func TestGetLastCommandOutputMultiline(t *testing.T) {
	emu := newEmulator(t, 20, 8, 0)

	feed(t, emu, "\x1b]133;A\x07$ build\r\n\x1b]133;C\x07line one\r\nline two\r\n\x1b]133;D;0\x07")

	if got := emu.GetLastCommandOutput(); got != "line one\nline two" {
		t.Errorf("output = %q, want two lines", got)
	}
}

func TestGetLastCommandOutputIncomplete(t *testing.T) {
	emu := newEmulator(t, 20, 5, 0)

	feed(t, emu, "\x1b]133;A\x07$ run\r\n\x1b]133;C\x07still going")

	if got := emu.GetLastCommandOutput(); got != "" {
		t.Errorf("output = %q, want empty without a finish mark", got)
	}
}
