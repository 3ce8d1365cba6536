// Package session is the terminal-independent engine behind the process
// killer UI. It owns the modal state machine, the filtered view of the
// process table, selection and multi-select marks, and the kill pipeline
// with its confirmation step. The UI layer renders session state and
// forwards keys; it never mutates engine state directly.
package session

import (
	"log/slog"
	"time"

	"procsweep/internal/collector"
	"procsweep/internal/proctree"
	"procsweep/internal/search"
	"procsweep/internal/signals"
)

// Mode is the exclusive input mode. Overlays (help, history, pending
// confirmation) stack on top of a mode rather than replacing it.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeSignalMenu
	ModeTreeView
	ModeInfoPane
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSearch:
		return "search"
	case ModeSignalMenu:
		return "signal"
	case ModeTreeView:
		return "tree"
	case ModeInfoPane:
		return "info"
	}
	return "unknown"
}

// Level grades a status line message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Status is the one-line message shown at the bottom of the screen.
type Status struct {
	Text  string
	Level Level
}

// ViewRow is one filtered process with its name highlight spans.
type ViewRow struct {
	Snap       collector.Snapshot
	Highlights []search.Span
}

// cpuHistoryCap bounds the per-process CPU samples kept for the info
// pane sparkline.
const cpuHistoryCap = 31

// Options configures a new session. The zero value is usable.
type Options struct {
	ShowAll        bool
	Filter         string
	SortBy         SortColumn
	SortDescending bool
	Clock          func() time.Time
}

// Session is the engine state. It is owned by a single goroutine; the
// bubbletea update loop calls into it synchronously and renders the
// result, so no locking happens here.
type Session struct {
	provider   collector.Provider
	dispatcher *signals.Dispatcher
	log        *slog.Logger
	clock      func() time.Time

	mode    Mode
	restore *Mode // mode to return to when the last overlay closes

	helpOpen    bool
	historyOpen bool
	pending     *signals.Pending
	pendingRisk signals.Risk

	treePrompt []proctree.Row // subtree preview awaiting y/n, nil when idle
	treeRoot   int32
	treeSig    signals.Signal

	menuIndex  int
	menuReturn Mode

	showAll   bool
	processes []collector.Snapshot

	rows     []ViewRow
	histRows []search.HistoryMatch
	treeRows []proctree.Row

	selected    int
	selectedPID int32
	marked      map[int32]bool
	collapsed   map[int32]bool

	queryRaw  string
	query     *search.Query
	queryErr  error
	pendingAt time.Time // zero when no debounced re-filter is due

	sortBy   SortColumn
	sortDesc bool

	info         *collector.Details
	infoExpanded map[rune]bool // e, f, n, c section toggles
	cpuPID       int32
	cpuHistory   []float64

	status Status
}

func New(provider collector.Provider, log *slog.Logger, opts Options) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	s := &Session{
		provider:     provider,
		dispatcher:   signals.NewDispatcher(provider, log),
		log:          log,
		clock:        clock,
		showAll:      opts.ShowAll,
		marked:       make(map[int32]bool),
		collapsed:    make(map[int32]bool),
		infoExpanded: make(map[rune]bool),
		sortBy:       opts.SortBy,
		sortDesc:     opts.SortDescending,
	}
	s.query, _ = search.Parse("")
	if opts.Filter != "" {
		s.queryRaw = opts.Filter
		s.settleQuery()
	}
	return s
}

// Accessors consumed by the render layer.

func (s *Session) Mode() Mode                        { return s.mode }
func (s *Session) Rows() []ViewRow                   { return s.rows }
func (s *Session) HistoryRows() []search.HistoryMatch { return s.histRows }
func (s *Session) TreeRows() []proctree.Row          { return s.treeRows }
func (s *Session) Selected() int                     { return s.selected }
func (s *Session) Status() Status                    { return s.status }
func (s *Session) HelpOpen() bool                    { return s.helpOpen }
func (s *Session) HistoryOpen() bool                 { return s.historyOpen }
func (s *Session) Pending() *signals.Pending         { return s.pending }
func (s *Session) PendingRisk() signals.Risk         { return s.pendingRisk }
func (s *Session) TreePrompt() []proctree.Row        { return s.treePrompt }
func (s *Session) QueryRaw() string                  { return s.queryRaw }
func (s *Session) QueryError() error                 { return s.queryErr }
func (s *Session) ShowAll() bool                     { return s.showAll }
func (s *Session) SortBy() SortColumn                { return s.sortBy }
func (s *Session) SortDescending() bool              { return s.sortDesc }
func (s *Session) Info() *collector.Details          { return s.info }
func (s *Session) CPUHistory() []float64             { return s.cpuHistory }
func (s *Session) History() *signals.History         { return s.dispatcher.History() }

func (s *Session) QueryMode() search.Mode {
	if s.query == nil {
		return search.ModeFuzzy
	}
	return s.query.Mode()
}

func (s *Session) Marked(pid int32) bool { return s.marked[pid] }

func (s *Session) MarkedCount() int { return len(s.marked) }

// InfoExpanded reports whether an info pane section (e, f, n, c) is open.
func (s *Session) InfoExpanded(section rune) bool { return s.infoExpanded[section] }

// SelectedSnapshot resolves the cursor to a live snapshot. In killed
// mode and on an empty table there is nothing to resolve.
func (s *Session) SelectedSnapshot() (collector.Snapshot, bool) {
	pid := s.selectedTargetPID()
	if pid == 0 {
		return collector.Snapshot{}, false
	}
	for _, p := range s.processes {
		if p.PID == pid {
			return p, true
		}
	}
	return collector.Snapshot{}, false
}

// Paused reports whether periodic refresh must hold still. The table
// keeps updating during normal browsing and the tree view, but freezes
// during search input and whenever a menu, overlay, or confirmation is
// up, so the rows cannot shift under the user's cursor mid-interaction.
func (s *Session) Paused() bool {
	return s.pending != nil ||
		s.treePrompt != nil ||
		s.helpOpen ||
		s.historyOpen ||
		s.mode == ModeSearch ||
		s.mode == ModeSignalMenu ||
		s.mode == ModeInfoPane
}

// Refresh pulls a fresh snapshot list and rebuilds every derived view.
// Selection survives by pid, not by row index. A paused session ignores
// the tick entirely.
func (s *Session) Refresh() {
	if s.Paused() {
		return
	}
	s.processes = s.provider.Processes(s.showAll)
	s.pruneMarks()
	s.rebuild()
	s.sampleCPU()
}

// rebuild recomputes the filtered rows (or tree rows) from the current
// snapshot list and relocates the cursor.
func (s *Session) rebuild() {
	if s.mode == ModeTreeView {
		s.treeRows = proctree.Build(s.processes, s.collapsed)
		idx := proctree.Relocate(s.treeRows, s.selectedPID)
		if idx < 0 {
			idx = 0
		}
		s.setSelection(idx)
		return
	}
	s.applyFilter()
}

func (s *Session) pruneMarks() {
	alive := make(map[int32]bool, len(s.processes))
	for _, p := range s.processes {
		alive[p.PID] = true
	}
	for pid := range s.marked {
		if !alive[pid] {
			delete(s.marked, pid)
		}
	}
}

// sampleCPU appends the selected process's CPU to the sparkline ring,
// restarting the ring when the selection moves to a different pid.
func (s *Session) sampleCPU() {
	snap, ok := s.SelectedSnapshot()
	if !ok {
		s.cpuPID = 0
		s.cpuHistory = s.cpuHistory[:0]
		return
	}
	if snap.PID != s.cpuPID {
		s.cpuPID = snap.PID
		s.cpuHistory = s.cpuHistory[:0]
	}
	s.cpuHistory = append(s.cpuHistory, snap.CPUPercent)
	if len(s.cpuHistory) > cpuHistoryCap {
		s.cpuHistory = s.cpuHistory[1:]
	}
}

// viewLen is the length of whatever list the cursor currently moves over.
func (s *Session) viewLen() int {
	switch {
	case s.mode == ModeTreeView:
		return len(s.treeRows)
	case s.QueryMode() == search.ModeKilled:
		return len(s.histRows)
	default:
		return len(s.rows)
	}
}

// setSelection clamps the cursor and records the pid under it so the
// next rebuild can find it again.
func (s *Session) setSelection(idx int) {
	n := s.viewLen()
	if n == 0 {
		s.selected = 0
		s.selectedPID = 0
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	s.selected = idx

	switch {
	case s.mode == ModeTreeView:
		s.selectedPID = s.treeRows[idx].PID
	case s.QueryMode() == search.ModeKilled:
		s.selectedPID = s.histRows[idx].Event.PID
	default:
		s.selectedPID = s.rows[idx].Snap.PID
	}
}

// MoveSelection shifts the cursor by delta rows, clamped at both ends.
func (s *Session) MoveSelection(delta int) {
	s.setSelection(s.selected + delta)
}

// SelectIndex jumps the cursor to an absolute row, for mouse clicks.
func (s *Session) SelectIndex(idx int) { s.setSelection(idx) }

func (s *Session) selectedTargetPID() int32 {
	if s.viewLen() == 0 || s.QueryMode() == search.ModeKilled {
		return 0
	}
	return s.selectedPID
}

// ToggleMark flips the multi-select mark on the process under the cursor.
func (s *Session) ToggleMark() {
	pid := s.selectedTargetPID()
	if pid == 0 {
		return
	}
	if s.marked[pid] {
		delete(s.marked, pid)
	} else {
		s.marked[pid] = true
	}
}

// ClearMarks drops every multi-select mark.
func (s *Session) ClearMarks() {
	for pid := range s.marked {
		delete(s.marked, pid)
	}
}

// ToggleShowAll switches between owned-only and all processes.
func (s *Session) ToggleShowAll() {
	s.showAll = !s.showAll
	s.processes = s.provider.Processes(s.showAll)
	s.pruneMarks()
	s.rebuild()
}

func (s *Session) setStatus(level Level, text string) {
	s.status = Status{Text: text, Level: level}
}

// ClearStatus wipes the status line, typically after a timeout tick.
func (s *Session) ClearStatus() { s.status = Status{} }
