package session

import "procsweep/internal/signals"

// pageStride is how many rows PageUp/PageDown jump.
const pageStride = 10

// HandleKey routes one key press through the modal state machine,
// reporting whether the session consumed it. Keys arrive in bubbletea's
// string form ("j", "enter", "esc", " "). Unconsumed keys fall through
// to the UI layer, which owns quitting and the search text input.
func (s *Session) HandleKey(key string) bool {
	// A pending confirmation swallows everything except its answer.
	if s.pending != nil {
		switch key {
		case "y", "Y":
			s.ConfirmPending()
		case "n", "N", "esc":
			s.CancelPending()
		}
		return true
	}
	if s.treePrompt != nil {
		switch key {
		case "y", "Y":
			s.ConfirmTreeKill()
		case "n", "N", "esc":
			s.CancelTreeKill()
		}
		return true
	}

	if s.helpOpen {
		switch key {
		case "?", "esc", "q":
			s.ToggleHelp()
			return true
		}
		return false
	}
	if s.historyOpen {
		switch key {
		case "h", "esc", "q":
			s.ToggleHistory()
			return true
		}
		return false
	}

	switch s.mode {
	case ModeSearch:
		return s.handleSearchKey(key)
	case ModeSignalMenu:
		return s.handleMenuKey(key)
	case ModeInfoPane:
		return s.handleInfoKey(key)
	case ModeTreeView:
		return s.handleTreeKey(key)
	default:
		return s.handleNormalKey(key)
	}
}

func (s *Session) handleSearchKey(key string) bool {
	switch key {
	case "enter":
		s.ConfirmSearch()
		return true
	case "esc":
		s.CancelSearch()
		return true
	}
	// Everything else belongs to the text input widget.
	return false
}

func (s *Session) handleMenuKey(key string) bool {
	switch key {
	case "j", "down":
		s.MoveSignalMenu(1)
	case "k", "up":
		s.MoveSignalMenu(-1)
	case "enter":
		s.ConfirmSignalMenu()
	case "esc", "q", "s":
		s.CloseSignalMenu()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			s.JumpSignalMenu(int(key[0] - '0'))
			return true
		}
		return false
	}
	return true
}

func (s *Session) handleInfoKey(key string) bool {
	switch key {
	case "esc", "q", "i", "enter":
		s.CloseInfoPane()
	case "e", "f", "n", "c":
		s.ToggleInfoSection(rune(key[0]))
	default:
		return false
	}
	return true
}

func (s *Session) handleTreeKey(key string) bool {
	switch key {
	case "j", "down":
		s.MoveSelection(1)
	case "k", "up":
		s.MoveSelection(-1)
	case "g", "home":
		s.SelectIndex(0)
	case "G", "end":
		s.SelectIndex(s.viewLen() - 1)
	case "pgup":
		s.MoveSelection(-pageStride)
	case "pgdown":
		s.MoveSelection(pageStride)
	case "c", "enter":
		s.ToggleCollapse()
	case "x":
		s.RequestTreeKill(signals.Default)
	case "X":
		s.RequestTreeKill(signals.SIGKILL)
	case "s":
		s.OpenSignalMenu()
	case "i":
		s.OpenInfoPane()
	case "t", "esc":
		s.ToggleTreeView()
	case "h":
		s.ToggleHistory()
	case "?":
		s.ToggleHelp()
	default:
		return false
	}
	return true
}

func (s *Session) handleNormalKey(key string) bool {
	switch key {
	case "/":
		s.EnterSearch()
	case "j", "down":
		s.MoveSelection(1)
	case "k", "up":
		s.MoveSelection(-1)
	case "g", "home":
		s.SelectIndex(0)
	case "G", "end":
		s.SelectIndex(s.viewLen() - 1)
	case "pgup":
		s.MoveSelection(-pageStride)
	case "pgdown":
		s.MoveSelection(pageStride)
	case " ":
		s.ToggleMark()
	case "u":
		s.ClearMarks()
	case "x":
		s.Kill(signals.Default)
	case "X":
		s.Kill(signals.SIGKILL)
	case "s":
		s.OpenSignalMenu()
	case "t":
		s.ToggleTreeView()
	case "i", "enter":
		s.OpenInfoPane()
	case "a":
		s.ToggleShowAll()
	case "h":
		s.ToggleHistory()
	case "?":
		s.ToggleHelp()
	case "<", ",":
		s.CycleSortPrev()
	case ">", ".":
		s.CycleSortNext()
	case "r":
		s.ToggleSortDirection()
	case "esc":
		switch {
		case s.queryRaw != "":
			s.CancelSearch()
		case len(s.marked) > 0:
			s.ClearMarks()
		default:
			s.setStatus(LevelInfo, "nothing to dismiss, ? shows the keys")
		}
	default:
		return false
	}
	return true
}
