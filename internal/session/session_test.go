package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"procsweep/internal/collector"
	"procsweep/internal/search"
	"procsweep/internal/signals"
)

type fakeProvider struct {
	snaps   []collector.Snapshot
	killErr map[int32]error
	killed  []int32
	calls   int
}

func (f *fakeProvider) Processes(includeSystem bool) []collector.Snapshot {
	f.calls++
	if includeSystem {
		return f.snaps
	}
	owned := make([]collector.Snapshot, 0, len(f.snaps))
	for _, s := range f.snaps {
		if s.User == "alice" {
			owned = append(owned, s)
		}
	}
	return owned
}

func (f *fakeProvider) Details(pid int32) (*collector.Details, bool) {
	for _, s := range f.snaps {
		if s.PID == pid {
			return &collector.Details{}, true
		}
	}
	return nil, false
}

func (f *fakeProvider) Kill(pid int32, signum int) error {
	f.killed = append(f.killed, pid)
	return f.killErr[pid]
}

func (f *fakeProvider) TotalMemoryBytes() uint64 { return 16 << 30 }
func (f *fakeProvider) Username() string         { return "alice" }
func (f *fakeProvider) IsRoot() bool             { return false }
func (f *fakeProvider) PID() int32               { return 900 }
func (f *fakeProvider) ParentPID() int32         { return 500 }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time              { return c.t }
func (c *fakeClock) advance(d time.Duration)     { c.t = c.t.Add(d) }

func fixture(pid, parent int32, name, user string, cpu float64) collector.Snapshot {
	return collector.Snapshot{PID: pid, ParentPID: parent, Name: name, User: user, UID: 1000, CPUPercent: cpu}
}

// Tree under test:
//
//	500 bash (the caller's shell)
//	├─ 600 vim
//	│  └─ 700 worker
//	└─ 601 emacs
func newTestSession() (*Session, *fakeProvider, *fakeClock) {
	p := &fakeProvider{
		snaps: []collector.Snapshot{
			fixture(500, 1, "bash", "alice", 0.1),
			fixture(600, 500, "vim", "alice", 5),
			fixture(601, 500, "emacs", "alice", 3),
			fixture(700, 600, "worker", "alice", 1),
		},
		killErr: map[int32]error{},
	}
	clk := &fakeClock{t: time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)}
	s := New(p, nil, Options{
		SortBy:         SortCPU,
		SortDescending: true,
		Clock:          clk.now,
	})
	s.Refresh()
	return s, p, clk
}

func rowPIDs(rows []ViewRow) []int32 {
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.Snap.PID
	}
	return out
}

func TestDebounceSettlesExactlyOnce(t *testing.T) {
	s, _, clk := newTestSession()

	s.SetQuery("v")
	if s.TickDebounce() {
		t.Fatal("query settled before the window elapsed")
	}
	clk.advance(50 * time.Millisecond)
	s.SetQuery("vim") // re-arms the window
	clk.advance(60 * time.Millisecond)
	if s.TickDebounce() {
		t.Fatal("typing must reset the debounce window")
	}
	clk.advance(50 * time.Millisecond)
	if !s.TickDebounce() {
		t.Fatal("elapsed window should settle the query")
	}
	if s.TickDebounce() {
		t.Fatal("a settled query must not settle again")
	}

	got := rowPIDs(s.Rows())
	if len(got) != 1 || got[0] != 600 {
		t.Errorf("filtered rows = %v, want [600]", got)
	}
}

func TestFlushSearchIsSynchronous(t *testing.T) {
	s, _, _ := newTestSession()

	s.SetQuery("emacs")
	s.FlushSearch()
	got := rowPIDs(s.Rows())
	if len(got) != 1 || got[0] != 601 {
		t.Errorf("flush should filter immediately, rows = %v", got)
	}
	if s.TickDebounce() {
		t.Error("flush must disarm the debounce window")
	}
}

func TestInvalidQueryClearsResults(t *testing.T) {
	s, _, _ := newTestSession()

	s.SetQuery("vim")
	s.FlushSearch()
	if got := rowPIDs(s.Rows()); len(got) != 1 || got[0] != 600 {
		t.Fatalf("rows = %v, want [600]", got)
	}

	s.SetQuery("/bad[/")
	s.FlushSearch()
	if s.QueryError() == nil {
		t.Fatal("broken regex should surface an error")
	}
	if s.Status().Level != LevelError {
		t.Errorf("status level = %v, want error", s.Status().Level)
	}
	if got := rowPIDs(s.Rows()); len(got) != 0 {
		t.Errorf("invalid query should empty the table, rows = %v", got)
	}

	// The next valid edit filters again without waiting for a refresh.
	s.SetQuery("emacs")
	s.FlushSearch()
	if got := rowPIDs(s.Rows()); len(got) != 1 || got[0] != 601 {
		t.Errorf("recovery rows = %v, want [601]", got)
	}
}

func TestZeroResultRegexStatusShowsFlags(t *testing.T) {
	s, _, _ := newTestSession()

	s.SetQuery("/zelda/i")
	s.FlushSearch()
	if got := rowPIDs(s.Rows()); len(got) != 0 {
		t.Fatalf("rows = %v, want none", got)
	}
	if got := s.Status().Text; got != "no regex matches for /zelda/i" {
		t.Errorf("status = %q, want the pattern with its flags", got)
	}
}

func TestOverlayRestoreSlot(t *testing.T) {
	s, _, _ := newTestSession()

	s.ToggleTreeView()
	if s.Mode() != ModeTreeView {
		t.Fatal("tree view should be active")
	}

	s.ToggleHelp()
	if s.Mode() != ModeNormal || !s.HelpOpen() {
		t.Fatalf("opening an overlay should normalize the mode, got %v", s.Mode())
	}
	s.ToggleHistory() // second overlay, slot already filled
	s.ToggleHelp()
	if s.Mode() != ModeNormal {
		t.Errorf("mode restored while an overlay is still open")
	}
	s.ToggleHistory()
	if s.Mode() != ModeTreeView {
		t.Errorf("closing the last overlay should restore tree view, got %v", s.Mode())
	}
}

func TestRefreshGatedWhilePaused(t *testing.T) {
	s, p, _ := newTestSession()

	s.OpenSignalMenu()
	if !s.Paused() {
		t.Fatal("signal menu should pause refresh")
	}
	before := p.calls
	s.Refresh()
	if p.calls != before {
		t.Error("a paused session must not hit the provider")
	}

	s.CloseSignalMenu()
	s.Refresh()
	if p.calls == before {
		t.Error("refresh should resume after the menu closes")
	}
}

func TestConfirmationSwallowsOtherKeys(t *testing.T) {
	s, p, _ := newTestSession()

	// bash is the caller's own shell; killing it defers into a pending
	// confirmation instead of dispatching.
	s.HandleKey("G") // bash has the lowest CPU, so it is the last row
	s.HandleKey("x")
	if s.Pending() == nil {
		t.Fatal("shell guard should have deferred the kill")
	}
	if len(p.killed) != 0 {
		t.Fatal("nothing may be signaled before confirmation")
	}

	sel := s.Selected()
	for _, key := range []string{"j", "k", "x", "t", "/"} {
		if !s.HandleKey(key) {
			t.Errorf("key %q should be swallowed during confirmation", key)
		}
	}
	if s.Selected() != sel || s.Mode() != ModeNormal {
		t.Error("swallowed keys must not change state")
	}

	s.HandleKey("n")
	if s.Pending() != nil {
		t.Fatal("n should cancel the pending kill")
	}
	if len(p.killed) != 0 {
		t.Error("cancelled kill must not signal")
	}
}

func TestConfirmPendingDispatches(t *testing.T) {
	s, p, _ := newTestSession()

	s.HandleKey("G")
	s.HandleKey("x")
	if s.Pending() == nil {
		t.Fatal("expected a pending confirmation")
	}
	s.HandleKey("y")
	if s.Pending() != nil {
		t.Fatal("confirmation should clear the pending slot")
	}
	if len(p.killed) != 1 || p.killed[0] != 500 {
		t.Errorf("killed = %v, want [500]", p.killed)
	}
}

func TestKillTargetsMarkedProcesses(t *testing.T) {
	s, p, _ := newTestSession()

	// Rows sort CPU descending: vim, emacs, worker, bash.
	s.HandleKey(" ") // mark vim
	s.HandleKey("j")
	s.HandleKey(" ") // mark emacs
	if s.MarkedCount() != 2 {
		t.Fatalf("marked = %d, want 2", s.MarkedCount())
	}

	s.Kill(signals.Default)
	if len(p.killed) != 2 || p.killed[0] != 600 || p.killed[1] != 601 {
		t.Errorf("killed = %v, want [600 601]", p.killed)
	}
	if s.MarkedCount() != 0 {
		t.Error("successful kill should clear marks")
	}
}

func TestPartialKillReportsFirstError(t *testing.T) {
	s, p, _ := newTestSession()

	p.killErr[600] = errors.New("boom")
	s.HandleKey(" ") // mark vim
	s.HandleKey("j")
	s.HandleKey(" ") // mark emacs
	s.Kill(signals.Default)

	if len(p.killed) != 2 {
		t.Fatalf("killed = %v, want both attempts", p.killed)
	}
	st := s.Status()
	if st.Level != LevelError || !strings.Contains(st.Text, "signaled 1") {
		t.Errorf("status = %+v, want a partial-failure report", st)
	}
	if s.MarkedCount() == 0 {
		t.Error("a partial failure must keep the marks")
	}
}

func TestTreeKillPreviewThenPostOrder(t *testing.T) {
	s, p, _ := newTestSession()

	s.ToggleTreeView()
	// Tree order: bash, vim, worker, emacs. Put the cursor on vim.
	s.SelectIndex(1)
	if s.TreeRows()[1].Name != "vim" {
		t.Fatalf("unexpected tree layout: %+v", s.TreeRows())
	}

	s.HandleKey("x")
	if s.TreePrompt() == nil {
		t.Fatal("tree kill should stage a preview first")
	}
	if !s.Paused() {
		t.Error("the preview prompt should pause refresh")
	}
	if len(s.TreePrompt()) != 2 {
		t.Errorf("preview rows = %d, want vim and worker", len(s.TreePrompt()))
	}

	s.HandleKey("y")
	if s.TreePrompt() != nil {
		t.Fatal("confirmation should clear the prompt")
	}
	if len(p.killed) != 2 || p.killed[0] != 700 || p.killed[1] != 600 {
		t.Errorf("killed = %v, want child before parent [700 600]", p.killed)
	}
}

func TestMarksPrunedWhenProcessExits(t *testing.T) {
	s, p, _ := newTestSession()

	s.HandleKey(" ") // mark vim (pid 600)
	if !s.Marked(600) {
		t.Fatal("vim should be marked")
	}

	p.snaps = []collector.Snapshot{
		fixture(500, 1, "bash", "alice", 0.1),
		fixture(601, 500, "emacs", "alice", 3),
	}
	s.Refresh()
	if s.Marked(600) || s.MarkedCount() != 0 {
		t.Error("marks on exited processes should be pruned")
	}
	// The vanished selection falls back to the top row.
	if s.Selected() != 0 {
		t.Errorf("selection = %d, want 0 after target vanished", s.Selected())
	}
}

func TestSelectionFollowsPIDAcrossResort(t *testing.T) {
	s, p, _ := newTestSession()

	s.HandleKey("j") // emacs
	if got, _ := s.SelectedSnapshot(); got.PID != 601 {
		t.Fatalf("selected pid = %d, want 601", got.PID)
	}

	// emacs spikes above vim; the cursor should follow it to the top.
	p.snaps[2].CPUPercent = 50
	s.Refresh()
	if got, _ := s.SelectedSnapshot(); got.PID != 601 {
		t.Errorf("selection lost across resort, pid = %d", got.PID)
	}
	if s.Selected() != 0 {
		t.Errorf("emacs should now be the top row, index = %d", s.Selected())
	}
}

func TestKilledModeShowsHistory(t *testing.T) {
	s, _, _ := newTestSession()

	s.Kill(signals.SIGKILL) // vim, the top row
	s.SetQuery("/killed")
	s.FlushSearch()

	if s.QueryMode() != search.ModeKilled {
		t.Fatalf("query mode = %v", s.QueryMode())
	}
	hist := s.HistoryRows()
	if len(hist) != 1 || hist[0].Event.ProcessName != "vim" {
		t.Errorf("history rows = %+v, want the vim kill", hist)
	}
	if len(s.Rows()) != 0 {
		t.Error("killed mode should not show live rows")
	}
}

func TestEscapeClearsThenHints(t *testing.T) {
	s, _, _ := newTestSession()

	s.HandleKey(" ") // mark vim
	s.HandleKey("esc")
	if s.MarkedCount() != 0 {
		t.Fatal("escape should clear the marks")
	}

	s.HandleKey("esc")
	st := s.Status()
	if st.Level != LevelInfo || st.Text == "" {
		t.Errorf("idle escape should leave a hint, status = %+v", st)
	}
}

func TestSortCyclingWraps(t *testing.T) {
	if SortRuntime.Next() != SortCPU {
		t.Error("Next should wrap to the first column")
	}
	if SortCPU.Prev() != SortRuntime {
		t.Error("Prev should wrap to the last column")
	}
	if c, err := ParseSortColumn("Memory"); err != nil || c != SortMemory {
		t.Errorf("ParseSortColumn(Memory) = %v, %v", c, err)
	}
	if _, err := ParseSortColumn("bogus"); err == nil {
		t.Error("unknown column should error")
	}
}

func TestInfoPanePausesAndToggles(t *testing.T) {
	s, _, _ := newTestSession()

	s.HandleKey("i")
	if s.Mode() != ModeInfoPane || s.Info() == nil {
		t.Fatalf("info pane should be open, mode = %v", s.Mode())
	}
	if !s.Paused() {
		t.Error("info pane should pause refresh")
	}

	s.HandleKey("e")
	if !s.InfoExpanded('e') {
		t.Error("section toggle should expand")
	}
	s.HandleKey("e")
	if s.InfoExpanded('e') {
		t.Error("second toggle should collapse")
	}

	s.HandleKey("esc")
	if s.Mode() != ModeNormal || s.Info() != nil {
		t.Error("closing the pane should restore normal mode")
	}
}
