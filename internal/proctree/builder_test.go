package proctree

import (
	"strings"
	"testing"

	"procsweep/internal/collector"
)

func proc(pid, parent int32, name string, cpu float64, mem uint64) collector.Snapshot {
	return collector.Snapshot{PID: pid, ParentPID: parent, Name: name, CPUPercent: cpu, MemoryBytes: mem}
}

// forest:
//
//	1 init          (cpu 0.5, mem 10)
//	├─ 100 nginx    (cpu 9.0, mem 100)
//	│  ├─ 101 worker (cpu 3.0, mem 50)
//	│  └─ 102 worker (cpu 3.0, mem 60)
//	└─ 200 bash     (cpu 1.0, mem 20)
//	   └─ 201 vim   (cpu 2.0, mem 30)
func testForest() []collector.Snapshot {
	return []collector.Snapshot{
		proc(1, 0, "init", 0.5, 10),
		proc(100, 1, "nginx", 9.0, 100),
		proc(101, 100, "worker", 3.0, 50),
		proc(102, 100, "worker", 3.0, 60),
		proc(200, 1, "bash", 1.0, 20),
		proc(201, 200, "vim", 2.0, 30),
	}
}

func rowIndex(rows []Row, pid int32) int {
	for i, r := range rows {
		if r.PID == pid {
			return i
		}
	}
	return -1
}

func TestBuildEmitsOneRowPerSnapshot(t *testing.T) {
	snaps := testForest()
	rows := Build(snaps, nil)
	if len(rows) != len(snaps) {
		t.Fatalf("row count = %d, want %d", len(rows), len(snaps))
	}
	seen := map[int32]bool{}
	for _, r := range rows {
		if seen[r.PID] {
			t.Errorf("pid %d emitted twice", r.PID)
		}
		seen[r.PID] = true
	}
}

func TestDuplicateSnapshotsEmitOneRow(t *testing.T) {
	snaps := []collector.Snapshot{
		proc(10, 0, "daemon", 1.0, 10),
		proc(10, 0, "daemon", 1.0, 10),
		proc(11, 10, "child", 0.5, 5),
	}
	rows := Build(snaps, nil)
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	if rows[0].PID != 10 || rows[1].PID != 11 {
		t.Errorf("rows = %v %v, want daemon then child", rows[0].PID, rows[1].PID)
	}
}

func TestSiblingOrderCPUDescThenName(t *testing.T) {
	rows := Build(testForest(), nil)
	// Children of init: nginx (9.0) before bash (1.0).
	if rowIndex(rows, 100) > rowIndex(rows, 200) {
		t.Errorf("nginx should sort before bash by CPU")
	}
	// Equal-CPU workers tie-break on pid order stability via name; both
	// named "worker", so input order is preserved (stable sort).
	if rowIndex(rows, 101) > rowIndex(rows, 102) {
		t.Errorf("stable tie-break violated for equal siblings")
	}
}

func TestSubtreeAggregates(t *testing.T) {
	rows := Build(testForest(), nil)
	nginx := rows[rowIndex(rows, 100)]
	if nginx.SubtreeCPU != 15.0 || nginx.SubtreeMemory != 210 {
		t.Errorf("nginx subtree = %.1f/%d, want 15.0/210", nginx.SubtreeCPU, nginx.SubtreeMemory)
	}
	root := rows[rowIndex(rows, 1)]
	if root.SubtreeCPU != 18.5 || root.SubtreeMemory != 270 {
		t.Errorf("root subtree = %.1f/%d, want 18.5/270", root.SubtreeCPU, root.SubtreeMemory)
	}
}

func TestCollapseHidesRowsButKeepsAggregates(t *testing.T) {
	expanded := Build(testForest(), nil)
	collapsed := Build(testForest(), map[int32]bool{100: true})

	// nginx has 2 descendants; collapsing removes exactly 2 rows.
	if len(expanded)-len(collapsed) != 2 {
		t.Fatalf("collapse removed %d rows, want 2", len(expanded)-len(collapsed))
	}
	if rowIndex(collapsed, 101) != -1 || rowIndex(collapsed, 102) != -1 {
		t.Errorf("collapsed children must not be emitted")
	}

	before := expanded[rowIndex(expanded, 100)]
	after := collapsed[rowIndex(collapsed, 100)]
	if before.SubtreeCPU != after.SubtreeCPU || before.SubtreeMemory != after.SubtreeMemory {
		t.Errorf("aggregates changed under collapse: %.1f/%d vs %.1f/%d",
			before.SubtreeCPU, before.SubtreeMemory, after.SubtreeCPU, after.SubtreeMemory)
	}
	if !after.Collapsed {
		t.Errorf("row should be marked collapsed")
	}

	// Deep collapse inside an expanded parent changes nothing upstream.
	nested := Build(testForest(), map[int32]bool{200: true})
	root := nested[rowIndex(nested, 1)]
	if root.SubtreeCPU != 18.5 || root.SubtreeMemory != 270 {
		t.Errorf("root aggregate shifted under nested collapse: %.1f/%d", root.SubtreeCPU, root.SubtreeMemory)
	}
}

func TestMissingParentBecomesRoot(t *testing.T) {
	snaps := []collector.Snapshot{
		proc(50, 9999, "stray", 1.0, 5), // parent not in snapshot
		proc(60, 50, "child", 0.5, 5),
	}
	rows := Build(snaps, nil)
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	if rows[0].PID != 50 || rows[0].Depth != 0 {
		t.Errorf("stray should be emitted as a root, got %+v", rows[0])
	}
	if rows[1].PID != 60 || rows[1].Depth != 1 {
		t.Errorf("child should hang off the stray root, got %+v", rows[1])
	}
}

func TestContradictoryParentDataStopsDescent(t *testing.T) {
	// 70 and 71 claim each other as parents. Neither parent pid is
	// "missing", so they form a cycle a naive walk would loop on.
	snaps := []collector.Snapshot{
		proc(70, 71, "a", 1.0, 5),
		proc(71, 70, "b", 1.0, 5),
	}
	rows := Build(snaps, nil)
	if len(rows) != 2 {
		t.Fatalf("cycle guard failed: %d rows", len(rows))
	}
}

func TestSelfParentIsRoot(t *testing.T) {
	rows := Build([]collector.Snapshot{proc(80, 80, "selfie", 1.0, 5)}, nil)
	if len(rows) != 1 || rows[0].Depth != 0 {
		t.Fatalf("self-parented process should become a root, got %+v", rows)
	}
}

func TestPrefixGlyphs(t *testing.T) {
	rows := Build(testForest(), nil)

	if got := rows[rowIndex(rows, 1)].Prefix; got != "" {
		t.Errorf("root prefix = %q, want empty", got)
	}
	// nginx is the first of two children of init.
	if got := rows[rowIndex(rows, 100)].Prefix; got != "├─ " {
		t.Errorf("nginx prefix = %q", got)
	}
	// bash is the last child.
	if got := rows[rowIndex(rows, 200)].Prefix; got != "└─ " {
		t.Errorf("bash prefix = %q", got)
	}
	// 102 is the last worker under nginx, which itself continues.
	if got := rows[rowIndex(rows, 102)].Prefix; got != "│  └─ " {
		t.Errorf("worker prefix = %q", got)
	}
	// vim sits under the terminal bash branch: blank continuation.
	if got := rows[rowIndex(rows, 201)].Prefix; got != "   └─ " {
		t.Errorf("vim prefix = %q", got)
	}
	for _, r := range rows {
		if strings.Count(r.Prefix, "─ ") > 1 {
			t.Errorf("prefix %q has more than one branch glyph", r.Prefix)
		}
	}
}

func TestBuildSubtree(t *testing.T) {
	rows := BuildSubtree(testForest(), 100)
	if len(rows) != 3 {
		t.Fatalf("subtree rows = %d, want 3", len(rows))
	}
	if rows[0].PID != 100 || rows[0].Depth != 0 {
		t.Errorf("subtree root should be first at depth 0, got %+v", rows[0])
	}

	if got := BuildSubtree(testForest(), 4444); got != nil {
		t.Errorf("missing root should yield an empty tree, got %v", got)
	}
}

func TestRelocate(t *testing.T) {
	rows := Build(testForest(), nil)
	if idx := Relocate(rows, 201); rows[idx].PID != 201 {
		t.Errorf("Relocate should find pid 201")
	}
	if idx := Relocate(rows, 4444); idx != 0 {
		t.Errorf("vanished pid should reset to 0, got %d", idx)
	}
	if idx := Relocate(nil, 201); idx != -1 {
		t.Errorf("empty tree should give -1, got %d", idx)
	}
}
