// Package proctree turns a flat process snapshot list into an ordered,
// collapsible forest with subtree CPU/memory aggregates.
package proctree

import (
	"sort"
	"strings"

	"procsweep/internal/collector"
)

// Row is one display-ordered node of the flattened forest. Rows are rebuilt
// from scratch on every refresh or collapse toggle; only the selected pid
// survives a rebuild, via Relocate.
type Row struct {
	PID           int32
	ParentPID     int32
	Name          string
	User          string
	State         collector.State
	Depth         int
	Prefix        string
	CPUPercent    float64
	MemoryBytes   uint64
	SubtreeCPU    float64
	SubtreeMemory uint64
	HasChildren   bool
	Collapsed     bool
}

type builder struct {
	byPID     map[int32]collector.Snapshot
	children  map[int32][]int32
	collapsed map[int32]bool
	visited   map[int32]bool
	rows      []Row
}

// Build flattens the full snapshot list into display rows. Nodes in the
// collapsed set contribute their subtree totals but emit no child rows, so
// aggregates are invariant to collapse state.
func Build(snaps []collector.Snapshot, collapsed map[int32]bool) []Row {
	b := newBuilder(snaps, collapsed)

	roots := b.children[0]
	if len(roots) == 0 && len(snaps) > 0 {
		for _, s := range snaps {
			roots = append(roots, s.PID)
		}
		b.sortSiblings(roots)
	}
	roots = dedup(roots)

	var branch []bool
	for _, root := range roots {
		b.flatten(root, &branch)
	}

	// Second sweep: contradictory parent data can leave nodes unreachable
	// from any root; they are emitted rather than silently dropped.
	var orphans []int32
	for pid := range b.byPID {
		if !b.visited[pid] {
			orphans = append(orphans, pid)
		}
	}
	b.sortSiblings(orphans)
	for _, pid := range orphans {
		branch = branch[:0]
		b.flatten(pid, &branch)
	}

	return b.rows
}

// BuildSubtree flattens only the subtree under root. A root with no
// matching snapshot yields an empty forest; the kill-preview path relies
// on that instead of an error.
func BuildSubtree(snaps []collector.Snapshot, root int32) []Row {
	b := newBuilder(snaps, nil)
	if _, ok := b.byPID[root]; !ok {
		return nil
	}
	var branch []bool
	b.flatten(root, &branch)
	return b.rows
}

// Relocate finds the row index for pid in a freshly built row list,
// falling back to 0 when the pid is gone and -1 when the tree is empty.
func Relocate(rows []Row, pid int32) int {
	if len(rows) == 0 {
		return -1
	}
	for i, row := range rows {
		if row.PID == pid {
			return i
		}
	}
	return 0
}

func newBuilder(snaps []collector.Snapshot, collapsed map[int32]bool) *builder {
	b := &builder{
		byPID:     make(map[int32]collector.Snapshot, len(snaps)),
		children:  make(map[int32][]int32),
		collapsed: collapsed,
		visited:   make(map[int32]bool, len(snaps)),
	}
	for _, s := range snaps {
		b.byPID[s.PID] = s
	}
	for _, s := range snaps {
		// A parent absent from the snapshot means the node is a root:
		// stale or cross-namespace parent references must not hide it.
		parent := s.ParentPID
		if _, ok := b.byPID[parent]; !ok || parent == s.PID {
			parent = 0
		}
		b.children[parent] = append(b.children[parent], s.PID)
	}
	for _, list := range b.children {
		b.sortSiblings(list)
	}
	return b
}

// dedup drops repeated pids from an ordered list in place, keeping the
// first occurrence. Duplicate snapshots collapse in byPID but can leave
// repeated entries in the root list.
func dedup(pids []int32) []int32 {
	seen := make(map[int32]bool, len(pids))
	out := pids[:0]
	for _, pid := range pids {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		out = append(out, pid)
	}
	return out
}

// sortSiblings orders a sibling group by CPU descending, then name
// ascending, so output stays deterministic across refreshes.
func (b *builder) sortSiblings(pids []int32) {
	sort.SliceStable(pids, func(i, j int) bool {
		a, c := b.byPID[pids[i]], b.byPID[pids[j]]
		if a.CPUPercent != c.CPUPercent {
			return a.CPUPercent > c.CPUPercent
		}
		return strings.ToLower(a.Name) < strings.ToLower(c.Name)
	})
}

// flatten emits one row per visible node depth-first and returns the
// subtree CPU/memory totals. Parentage should always point backward in
// pid-creation order, but the provider is not trusted: a pid that was
// already emitted stops descent.
func (b *builder) flatten(pid int32, branch *[]bool) (float64, uint64) {
	info, ok := b.byPID[pid]
	if !ok || b.visited[pid] {
		return 0, 0
	}
	b.visited[pid] = true

	kids := b.children[pid]
	collapsed := b.collapsed[pid]

	rowIndex := len(b.rows)
	b.rows = append(b.rows, Row{
		PID:         pid,
		ParentPID:   info.ParentPID,
		Name:        info.Name,
		User:        info.User,
		State:       info.State,
		Depth:       len(*branch),
		Prefix:      buildPrefix(*branch),
		CPUPercent:  info.CPUPercent,
		MemoryBytes: info.MemoryBytes,
		HasChildren: len(kids) > 0,
		Collapsed:   collapsed,
	})

	totalCPU := info.CPUPercent
	totalMem := info.MemoryBytes

	if collapsed {
		// Children stay hidden, but their totals still roll up.
		for _, child := range kids {
			cpu, mem := b.sumSubtree(child)
			totalCPU += cpu
			totalMem += mem
		}
	} else {
		for i, child := range kids {
			*branch = append(*branch, i == len(kids)-1)
			cpu, mem := b.flatten(child, branch)
			totalCPU += cpu
			totalMem += mem
			*branch = (*branch)[:len(*branch)-1]
		}
	}

	b.rows[rowIndex].SubtreeCPU = totalCPU
	b.rows[rowIndex].SubtreeMemory = totalMem
	return totalCPU, totalMem
}

// sumSubtree aggregates a hidden subtree without emitting rows.
func (b *builder) sumSubtree(pid int32) (float64, uint64) {
	info, ok := b.byPID[pid]
	if !ok || b.visited[pid] {
		return 0, 0
	}
	b.visited[pid] = true

	totalCPU := info.CPUPercent
	totalMem := info.MemoryBytes
	for _, child := range b.children[pid] {
		cpu, mem := b.sumSubtree(child)
		totalCPU += cpu
		totalMem += mem
	}
	return totalCPU, totalMem
}

// buildPrefix renders the ancestor-branch glyphs for one row: a terminal
// branch gets "└─ ", a continuing one "├─ ", and vertical continuations
// either "│  " or blank spacing.
func buildPrefix(branch []bool) string {
	if len(branch) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, isLast := range branch {
		if i == len(branch)-1 {
			if isLast {
				sb.WriteString("└─ ")
			} else {
				sb.WriteString("├─ ")
			}
		} else {
			if isLast {
				sb.WriteString("   ")
			} else {
				sb.WriteString("│  ")
			}
		}
	}
	return sb.String()
}
