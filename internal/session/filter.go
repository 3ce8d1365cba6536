package session

import (
	"fmt"
	"strings"
	"time"

	"procsweep/internal/collector"
	"procsweep/internal/search"
)

// SortColumn selects the table ordering applied to unscored rows and
// used as the tie-breaker between equal match scores.
type SortColumn int

const (
	SortCPU SortColumn = iota
	SortMemory
	SortPID
	SortName
	SortUser
	SortRuntime

	sortColumnCount
)

func (c SortColumn) String() string {
	switch c {
	case SortCPU:
		return "cpu"
	case SortMemory:
		return "memory"
	case SortPID:
		return "pid"
	case SortName:
		return "name"
	case SortUser:
		return "user"
	case SortRuntime:
		return "runtime"
	}
	return "unknown"
}

// Next cycles to the following column, wrapping at the end.
func (c SortColumn) Next() SortColumn {
	return (c + 1) % sortColumnCount
}

// Prev cycles to the preceding column, wrapping at the start.
func (c SortColumn) Prev() SortColumn {
	return (c + sortColumnCount - 1) % sortColumnCount
}

// ParseSortColumn resolves a CLI/config column name.
func ParseSortColumn(name string) (SortColumn, error) {
	for c := SortColumn(0); c < sortColumnCount; c++ {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown sort column %q", name)
}

// CycleSortNext advances the active sort column and re-sorts the table.
func (s *Session) CycleSortNext() {
	s.sortBy = s.sortBy.Next()
	s.announceSort()
}

// CycleSortPrev retreats the active sort column and re-sorts the table.
func (s *Session) CycleSortPrev() {
	s.sortBy = s.sortBy.Prev()
	s.announceSort()
}

// ToggleSortDirection flips ascending/descending on the active column.
func (s *Session) ToggleSortDirection() {
	s.sortDesc = !s.sortDesc
	s.announceSort()
}

// SetSortColumn jumps straight to a column, for header clicks. Clicking
// the active column reverses it instead.
func (s *Session) SetSortColumn(c SortColumn) {
	if c == s.sortBy {
		s.sortDesc = !s.sortDesc
	} else {
		s.sortBy = c
	}
	s.announceSort()
}

func (s *Session) announceSort() {
	direction := "ascending"
	if s.sortDesc {
		direction = "descending"
	}
	s.setStatus(LevelInfo, fmt.Sprintf("sorting by %s %s", s.sortBy, direction))
	s.rebuild()
}

// less orders two snapshots under the active column and direction, with
// pid ascending as the final tie-breaker so order is total.
func (s *Session) less(a, b collector.Snapshot) bool {
	cmp := 0
	switch s.sortBy {
	case SortCPU:
		cmp = compareFloat(a.CPUPercent, b.CPUPercent)
	case SortMemory:
		cmp = compareUint(a.MemoryBytes, b.MemoryBytes)
	case SortPID:
		cmp = compareInt32(a.PID, b.PID)
	case SortName:
		cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortUser:
		cmp = strings.Compare(a.User, b.User)
	case SortRuntime:
		cmp = compareInt64(int64(a.Runtime), int64(b.Runtime))
	}
	if s.sortDesc {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.PID < b.PID
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// DebounceInterval is how long typed input must sit still before the
// table re-filters. Confirming or leaving search flushes immediately.
const DebounceInterval = 100 * time.Millisecond

// SetQuery records a new raw query from the search input. Each edit
// re-derives the filtered set once immediately and arms the debounce
// window; rapid edits coalesce into a single settled pass.
func (s *Session) SetQuery(raw string) {
	s.queryRaw = raw
	s.pendingAt = s.clock()
	s.applyRaw()
}

// TickDebounce settles an armed query once its window has elapsed. It
// reports whether a re-filter actually ran so the caller can re-render.
func (s *Session) TickDebounce() bool {
	if s.pendingAt.IsZero() {
		return false
	}
	if s.clock().Sub(s.pendingAt) < DebounceInterval {
		return false
	}
	s.settleQuery()
	return true
}

// FlushSearch applies the raw query right now, discarding any armed
// debounce window. A no-op when nothing is pending.
func (s *Session) FlushSearch() {
	if s.pendingAt.IsZero() {
		return
	}
	s.settleQuery()
}

func (s *Session) settleQuery() {
	s.pendingAt = time.Time{}
	s.applyRaw()
}

func (s *Session) applyRaw() {
	q, err := search.Parse(s.queryRaw)
	if err != nil {
		// A malformed pattern matches nothing, so the table empties; the
		// last good query stays parsed for the next keystroke to recover.
		s.queryErr = err
		s.rows = s.rows[:0]
		s.histRows = nil
		s.setStatus(LevelError, err.Error())
		return
	}
	s.queryErr = nil
	s.query = q
	s.applyFilter()
}

// applyFilter recomputes the visible rows from the settled query and
// relocates the cursor by pid.
func (s *Session) applyFilter() {
	if s.query != nil && s.query.Mode() == search.ModeKilled {
		s.rows = nil
		s.histRows = search.FilterHistory(s.History().Events(), s.query.Text())
		s.relocate()
		s.noteEmptyView()
		return
	}
	s.histRows = nil

	results := make([]search.Result, 0, len(s.processes))
	for _, p := range s.processes {
		m, ok := s.query.MatchSnapshot(p)
		if !ok {
			continue
		}
		results = append(results, search.Result{Snapshot: p, Match: m})
	}
	search.Rank(results, s.less)

	s.rows = s.rows[:0]
	for _, r := range results {
		s.rows = append(s.rows, ViewRow{Snap: r.Snapshot, Highlights: r.Match.Highlights})
	}
	s.relocate()
	s.noteEmptyView()
}

// relocate finds the previously selected pid in the rebuilt view,
// falling back to the top row when it is gone.
func (s *Session) relocate() {
	if s.selectedPID != 0 {
		if s.QueryMode() == search.ModeKilled {
			for i, h := range s.histRows {
				if h.Event.PID == s.selectedPID {
					s.setSelection(i)
					return
				}
			}
		} else {
			for i, r := range s.rows {
				if r.Snap.PID == s.selectedPID {
					s.setSelection(i)
					return
				}
			}
		}
	}
	s.setSelection(0)
}

// noteEmptyView explains a blank table so it does not read as a hang.
func (s *Session) noteEmptyView() {
	if s.viewLen() > 0 {
		return
	}
	switch {
	case s.QueryMode() == search.ModeKilled && s.query.Text() != "":
		s.setStatus(LevelInfo, fmt.Sprintf("no signal history matches %q", s.query.Text()))
	case s.QueryMode() == search.ModeKilled:
		s.setStatus(LevelInfo, "no recent signal history")
	case s.QueryMode() == search.ModeRegex:
		s.setStatus(LevelInfo, fmt.Sprintf("no regex matches for /%s/%s", s.query.Text(), s.query.Flags()))
	case s.query != nil && !s.query.Empty():
		s.setStatus(LevelInfo, fmt.Sprintf("no matches for %q", s.query.Text()))
	}
}
