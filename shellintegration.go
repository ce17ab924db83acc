package vtcore

// ShellIntegrationMark identifies which OSC 133 prompt-mark kind was
// received: `A` (PromptStart), `B` (CommandStart), `C` (CommandExecuted),
// `D` (CommandFinished).
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota
	CommandStart
	CommandExecuted
	CommandFinished
)

// noMarkFilter is passed to NextPromptRow/PrevPromptRow to match any mark type.
const noMarkFilter ShellIntegrationMark = -1

// PromptMark stores information about a shell integration mark (OSC 133).
// Used for prompt-based navigation in scrollback.
type PromptMark struct {
	// Type is the mark type (PromptStart, CommandStart, CommandExecuted, CommandFinished).
	Type ShellIntegrationMark
	// Row is the absolute row position (including scrollback offset).
	Row int
	// ExitCode is the command exit code (only valid for CommandFinished marks, -1 otherwise).
	ExitCode int
}

// ShellIntegrationProvider handles shell integration events (OSC 133).
type ShellIntegrationProvider interface {
	// OnMark is called when a shell integration mark is received.
	OnMark(mark ShellIntegrationMark, exitCode int)
}

// NoopShellIntegration ignores all shell integration events.
type NoopShellIntegration struct{}

func (NoopShellIntegration) OnMark(mark ShellIntegrationMark, exitCode int) {}

var _ ShellIntegrationProvider = (*NoopShellIntegration)(nil)

// shellIntegrationMark processes a shell integration mark (OSC 133).
// Records the mark position for prompt-based navigation.
func (e *Emulator) shellIntegrationMark(mark ShellIntegrationMark, exitCode int) {
	scrollbackLen := e.primaryBuffer.ScrollbackLen()
	absoluteRow := e.cursor.Row + scrollbackLen

	e.promptMarks = append(e.promptMarks, PromptMark{
		Type:     mark,
		Row:      absoluteRow,
		ExitCode: exitCode,
	})

	if e.shellIntegrationProvider != nil {
		e.shellIntegrationProvider.OnMark(mark, exitCode)
	}
}

// PromptMarks returns all recorded prompt marks.
func (e *Emulator) PromptMarks() []PromptMark {
	e.mu.RLock()
	defer e.mu.RUnlock()
	marks := make([]PromptMark, len(e.promptMarks))
	copy(marks, e.promptMarks)
	return marks
}

// PromptMarkCount returns the number of recorded prompt marks.
func (e *Emulator) PromptMarkCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.promptMarks)
}

// ClearPromptMarks removes all recorded prompt marks.
func (e *Emulator) ClearPromptMarks() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.promptMarks = nil
}

// NextPromptRow returns the absolute row of the next prompt mark after the
// given absolute row, or -1 if none exists. Pass noMarkFilter to match any type.
func (e *Emulator) NextPromptRow(currentAbsRow int, markType ShellIntegrationMark) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, mark := range e.promptMarks {
		if mark.Row > currentAbsRow && (markType == noMarkFilter || mark.Type == markType) {
			return mark.Row
		}
	}
	return -1
}

// PrevPromptRow returns the absolute row of the previous prompt mark before
// the given absolute row, or -1 if none exists.
func (e *Emulator) PrevPromptRow(currentAbsRow int, markType ShellIntegrationMark) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := len(e.promptMarks) - 1; i >= 0; i-- {
		mark := e.promptMarks[i]
		if mark.Row < currentAbsRow && (markType == noMarkFilter || mark.Type == markType) {
			return mark.Row
		}
	}
	return -1
}

// GetPromptMarkAt returns the prompt mark at the given absolute row, or nil.
func (e *Emulator) GetPromptMarkAt(absRow int) *PromptMark {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i := range e.promptMarks {
		if e.promptMarks[i].Row == absRow {
			mark := e.promptMarks[i]
			return &mark
		}
	}
	return nil
}

// SetShellIntegrationProvider sets the shell integration provider at runtime.
func (e *Emulator) SetShellIntegrationProvider(p ShellIntegrationProvider) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shellIntegrationProvider = p
}

// GetLastCommandOutput returns the output of the last executed command: the
// text between the last CommandExecuted mark and the last CommandFinished
// mark. Returns "" if no complete pair is available.
func (e *Emulator) GetLastCommandOutput() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.promptMarks) == 0 {
		return ""
	}

	var lastExecuted, lastFinished *PromptMark
	for i := len(e.promptMarks) - 1; i >= 0; i-- {
		mark := &e.promptMarks[i]
		if lastFinished == nil && mark.Type == CommandFinished {
			lastFinished = mark
		}
		if lastExecuted == nil && mark.Type == CommandExecuted {
			lastExecuted = mark
		}
		if lastExecuted != nil && lastFinished != nil {
			if lastExecuted.Row < lastFinished.Row {
				break
			}
			lastFinished = nil
			lastExecuted = nil
		}
	}

	if lastExecuted == nil || lastFinished == nil {
		return ""
	}
	return e.extractTextBetweenRows(lastExecuted.Row, lastFinished.Row)
}

// extractTextBetweenRows extracts text from startRow (inclusive) to endRow
// (exclusive), both absolute (scrollback-inclusive) row numbers.
func (e *Emulator) extractTextBetweenRows(startRow, endRow int) string {
	scrollbackLen := e.primaryBuffer.ScrollbackLen()

	var lines []string
	for absRow := startRow; absRow < endRow; absRow++ {
		var lineContent string
		if absRow < scrollbackLen {
			if line := e.primaryBuffer.ScrollbackLine(absRow); line != nil {
				lineContent = cellsToString(line)
			}
		} else if bufferRow := absRow - scrollbackLen; bufferRow >= 0 && bufferRow < e.rows {
			lineContent = e.activeBuffer.LineContent(bufferRow)
		}
		lines = append(lines, lineContent)
	}

	lastNonEmpty := -1
	for i, line := range lines {
		if line != "" {
			lastNonEmpty = i
		}
	}
	if lastNonEmpty < 0 {
		return ""
	}

	result := ""
	for i := 0; i <= lastNonEmpty; i++ {
		if i > 0 {
			result += "\n"
		}
		result += lines[i]
	}
	return result
}

// cellsToString renders a scrollback line to text, trimming trailing blanks.
func cellsToString(cells []Cell) string {
	lastNonSpace := -1
	for i := len(cells) - 1; i >= 0; i-- {
		cell := &cells[i]
		if cell.Char != ' ' && cell.Char != 0 && !cell.IsWideSpacer() {
			lastNonSpace = i
			break
		}
	}
	if lastNonSpace < 0 {
		return ""
	}

	runes := make([]rune, 0, lastNonSpace+1)
	for i := 0; i <= lastNonSpace; i++ {
		cell := &cells[i]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}
	return string(runes)
}
