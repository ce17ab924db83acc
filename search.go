package vtcore

// Search finds all occurrences of pattern in the visible screen content.
// Returns positions of the first character of each match.
func (e *Emulator) Search(pattern string) []Position {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if pattern == "" {
		return nil
	}

	var matches []Position
	patternRunes := []rune(pattern)

	for row := 0; row < e.rows; row++ {
		lineRunes := []rune(e.activeBuffer.LineContent(row))
		for col := 0; col <= len(lineRunes)-len(patternRunes); col++ {
			if runesMatchAt(lineRunes, patternRunes, col) {
				matches = append(matches, Position{Row: row, Col: col})
			}
		}
	}
	return matches
}

// SearchScrollback finds all occurrences of pattern in scrollback lines.
// Returned row values are negative, where -1 is the most recent scrollback line.
func (e *Emulator) SearchScrollback(pattern string) []Position {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if pattern == "" {
		return nil
	}

	var matches []Position
	patternRunes := []rune(pattern)
	scrollbackLen := e.primaryBuffer.ScrollbackLen()

	for i := 0; i < scrollbackLen; i++ {
		line := e.primaryBuffer.ScrollbackLine(i)
		if line == nil {
			continue
		}

		var lineRunes []rune
		for _, cell := range line {
			if cell.IsWideSpacer() {
				continue
			}
			if cell.Char == 0 {
				lineRunes = append(lineRunes, ' ')
			} else {
				lineRunes = append(lineRunes, cell.Char)
			}
		}

		for col := 0; col <= len(lineRunes)-len(patternRunes); col++ {
			if runesMatchAt(lineRunes, patternRunes, col) {
				matches = append(matches, Position{Row: -(scrollbackLen - i), Col: col})
			}
		}
	}
	return matches
}

func runesMatchAt(line, pattern []rune, at int) bool {
	for i, pr := range pattern {
		if line[at+i] != pr {
			return false
		}
	}
	return true
}
