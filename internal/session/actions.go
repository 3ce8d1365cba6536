package session

import (
	"fmt"
	"sort"

	"procsweep/internal/proctree"
	"procsweep/internal/signals"
)

// ============================================================================
// MODE TRANSITIONS AND OVERLAYS
// ============================================================================

// EnterSearch switches the session into search input mode.
func (s *Session) EnterSearch() {
	if s.mode == ModeNormal {
		s.mode = ModeSearch
	}
}

// ConfirmSearch leaves search mode keeping the filter, flushing any
// pending debounce synchronously so the table matches the input.
func (s *Session) ConfirmSearch() {
	s.FlushSearch()
	s.mode = ModeNormal
}

// CancelSearch leaves search mode and clears the filter.
func (s *Session) CancelSearch() {
	s.queryRaw = ""
	s.pendingAt = s.clock()
	s.FlushSearch()
	s.mode = ModeNormal
}

// ToggleHelp opens or closes the help overlay. The first overlay opened
// parks the current mode in the restore slot; closing the last overlay
// brings it back.
func (s *Session) ToggleHelp() {
	s.helpOpen = !s.helpOpen
	s.syncOverlayMode()
}

// ToggleHistory opens or closes the signal history overlay.
func (s *Session) ToggleHistory() {
	s.historyOpen = !s.historyOpen
	s.syncOverlayMode()
}

func (s *Session) syncOverlayMode() {
	if s.helpOpen || s.historyOpen {
		if s.restore == nil {
			saved := s.mode
			s.restore = &saved
			s.mode = ModeNormal
		}
		return
	}
	if s.restore != nil {
		s.mode = *s.restore
		s.restore = nil
	}
}

// ToggleTreeView flips between the flat table and the process tree. The
// selected pid carries across; each visit starts fully expanded.
func (s *Session) ToggleTreeView() {
	switch s.mode {
	case ModeNormal:
		s.mode = ModeTreeView
		clear(s.collapsed)
		s.rebuild()
	case ModeTreeView:
		s.mode = ModeNormal
		s.treeRows = nil
		s.rebuild()
	}
}

// ToggleCollapse folds or unfolds the subtree under the cursor. Rows
// are rebuilt and the cursor stays on the same pid.
func (s *Session) ToggleCollapse() {
	if s.mode != ModeTreeView || len(s.treeRows) == 0 {
		return
	}
	row := s.treeRows[s.selected]
	if !row.HasChildren {
		return
	}
	if s.collapsed[row.PID] {
		delete(s.collapsed, row.PID)
	} else {
		s.collapsed[row.PID] = true
	}
	s.rebuild()
}

// OpenInfoPane loads extended details for the process under the cursor.
// Refresh pauses while the pane is open.
func (s *Session) OpenInfoPane() {
	pid := s.selectedTargetPID()
	if pid == 0 || s.mode != ModeNormal && s.mode != ModeTreeView {
		return
	}
	details, ok := s.provider.Details(pid)
	if !ok {
		s.setStatus(LevelWarn, fmt.Sprintf("process %d is gone", pid))
		return
	}
	s.info = details
	s.menuReturn = s.mode
	s.mode = ModeInfoPane
}

// CloseInfoPane drops the details and resumes where the pane was opened.
func (s *Session) CloseInfoPane() {
	if s.mode != ModeInfoPane {
		return
	}
	s.info = nil
	s.mode = s.menuReturn
}

// ToggleInfoSection expands or collapses one info pane section:
// 'e' environment, 'f' open files, 'n' namespaces, 'c' cgroups.
func (s *Session) ToggleInfoSection(section rune) {
	if s.mode != ModeInfoPane {
		return
	}
	switch section {
	case 'e', 'f', 'n', 'c':
		s.infoExpanded[section] = !s.infoExpanded[section]
	}
}

// ============================================================================
// SIGNAL MENU
// ============================================================================

// OpenSignalMenu shows the full signal picker over the current target.
func (s *Session) OpenSignalMenu() {
	if s.mode != ModeNormal && s.mode != ModeTreeView {
		return
	}
	if s.selectedTargetPID() == 0 && len(s.marked) == 0 {
		return
	}
	s.menuReturn = s.mode
	s.menuIndex = int(signals.Default) - 1
	s.mode = ModeSignalMenu
}

// CloseSignalMenu abandons the picker without sending anything.
func (s *Session) CloseSignalMenu() {
	if s.mode != ModeSignalMenu {
		return
	}
	s.mode = s.menuReturn
}

// MoveSignalMenu shifts the picker cursor, wrapping at both ends.
func (s *Session) MoveSignalMenu(delta int) {
	if s.mode != ModeSignalMenu {
		return
	}
	n := len(signals.All())
	s.menuIndex = ((s.menuIndex+delta)%n + n) % n
}

// JumpSignalMenu moves the picker straight to a signal number.
func (s *Session) JumpSignalMenu(number int) {
	if s.mode != ModeSignalMenu {
		return
	}
	if _, ok := signals.FromNumber(number); ok {
		s.menuIndex = number - 1
	}
}

// SignalMenuIndex is the picker cursor for rendering.
func (s *Session) SignalMenuIndex() int { return s.menuIndex }

// MenuSignal is the signal currently under the picker cursor.
func (s *Session) MenuSignal() signals.Signal {
	return signals.All()[s.menuIndex]
}

// ConfirmSignalMenu sends the picked signal to the current targets. From
// the tree view this becomes a subtree kill with its preview prompt.
func (s *Session) ConfirmSignalMenu() {
	if s.mode != ModeSignalMenu {
		return
	}
	sig := s.MenuSignal()
	s.mode = s.menuReturn
	if s.mode == ModeTreeView {
		s.RequestTreeKill(sig)
		return
	}
	s.Kill(sig)
}

// ============================================================================
// KILL PIPELINE
// ============================================================================

// targets resolves what a kill acts on: every marked pid when marks
// exist, otherwise the process under the cursor.
func (s *Session) targets() []int32 {
	if len(s.marked) > 0 {
		pids := make([]int32, 0, len(s.marked))
		for pid := range s.marked {
			pids = append(pids, pid)
		}
		sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
		return pids
	}
	if pid := s.selectedTargetPID(); pid != 0 {
		return []int32{pid}
	}
	return nil
}

// Kill delivers sig to the current targets. The shell guard may defer
// the whole batch into a pending confirmation instead.
func (s *Session) Kill(sig signals.Signal) {
	pids := s.targets()
	if len(pids) == 0 {
		return
	}
	risk := s.assessTargets(pids)

	outcomes, pending := s.dispatcher.Send(pids, sig, false)
	if pending != nil {
		s.pending = pending
		s.pendingRisk = risk
		s.setStatus(LevelWarn, "this would signal your own shell, confirm with y")
		return
	}
	s.reportOutcomes(outcomes, risk)
}

// RequestTreeKill stages a subtree kill behind a preview prompt so the
// user sees exactly which processes are about to go.
func (s *Session) RequestTreeKill(sig signals.Signal) {
	pid := s.selectedTargetPID()
	if pid == 0 {
		return
	}
	preview := proctree.BuildSubtree(s.processes, pid)
	if preview == nil {
		s.setStatus(LevelWarn, fmt.Sprintf("process %d is gone", pid))
		return
	}
	s.treePrompt = preview
	s.treeRoot = pid
	s.treeSig = sig
}

// ConfirmTreeKill executes the staged subtree kill.
func (s *Session) ConfirmTreeKill() {
	if s.treePrompt == nil {
		return
	}
	root, sig := s.treeRoot, s.treeSig
	s.treePrompt = nil
	risk := s.assessTargets([]int32{root})

	outcomes, pending := s.dispatcher.SendTree([]int32{root}, sig, false)
	if pending != nil {
		s.pending = pending
		s.pendingRisk = risk
		s.setStatus(LevelWarn, "this subtree includes your own shell, confirm with y")
		return
	}
	s.reportTreeOutcomes(outcomes, risk)
}

// CancelTreeKill discards the staged subtree kill.
func (s *Session) CancelTreeKill() {
	if s.treePrompt == nil {
		return
	}
	s.treePrompt = nil
	s.setStatus(LevelInfo, "tree kill cancelled")
}

// ConfirmPending re-runs the deferred operation with the shell guard
// disarmed.
func (s *Session) ConfirmPending() {
	if s.pending == nil {
		return
	}
	p := s.pending
	risk := s.pendingRisk
	s.pending = nil
	s.pendingRisk = signals.Risk{}

	switch p.Kind {
	case signals.PendingTree:
		outcomes, _ := s.dispatcher.SendTree(p.Targets, p.Signal, true)
		s.reportTreeOutcomes(outcomes, risk)
	default:
		outcomes, _ := s.dispatcher.Send(p.Targets, p.Signal, true)
		s.reportOutcomes(outcomes, risk)
	}
}

// CancelPending drops the deferred operation without sending anything.
func (s *Session) CancelPending() {
	if s.pending == nil {
		return
	}
	s.pending = nil
	s.pendingRisk = signals.Risk{}
	s.setStatus(LevelInfo, "kill cancelled")
}

// assessTargets combines the risk classification of every target.
func (s *Session) assessTargets(pids []int32) signals.Risk {
	byPID := make(map[int32]bool, len(pids))
	for _, pid := range pids {
		byPID[pid] = true
	}
	var risk signals.Risk
	for _, p := range s.processes {
		if byPID[p.PID] {
			risk = risk.Combine(signals.AssessRisk(p, s.provider.ParentPID()))
		}
	}
	return risk
}

func (s *Session) reportOutcomes(outcomes []signals.Outcome, risk signals.Risk) {
	sent := 0
	var firstErr error
	for _, o := range outcomes {
		if o.Err != nil {
			if firstErr == nil {
				firstErr = o.Err
			}
			continue
		}
		sent++
	}
	s.finishKill(sent, firstErr, risk)
}

func (s *Session) reportTreeOutcomes(outcomes []signals.TreeOutcome, risk signals.Risk) {
	sent := 0
	var firstErr error
	for _, o := range outcomes {
		sent += len(o.Signaled)
		if o.Err != nil && firstErr == nil {
			firstErr = o.Err
		}
	}
	s.finishKill(sent, firstErr, risk)
}

// finishKill composes the status line for a completed kill and refilters
// the table. Risk escalates the level of an otherwise clean result.
func (s *Session) finishKill(sent int, firstErr error, risk signals.Risk) {
	switch {
	case firstErr != nil && sent == 0:
		s.setStatus(LevelError, signals.Explain(firstErr))
	case firstErr != nil:
		s.setStatus(LevelError, fmt.Sprintf("signaled %d, then: %s", sent, signals.Explain(firstErr)))
	case risk.Severity >= signals.SeverityElevated:
		s.setStatus(LevelWarn, fmt.Sprintf("signaled %d process(es), target was a %s", sent, risk.Reason))
	default:
		s.setStatus(LevelInfo, fmt.Sprintf("signaled %d process(es)", sent))
	}

	if firstErr == nil {
		s.ClearMarks()
	}
	s.applyFilterAfterKill()
}

// applyFilterAfterKill refreshes derived views without waiting for the
// next tick; killed-mode views change immediately because history did.
func (s *Session) applyFilterAfterKill() {
	if s.mode == ModeTreeView {
		s.rebuild()
		return
	}
	s.applyFilter()
}
