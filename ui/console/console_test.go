package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"procsweep/internal/collector"
)

type stubProvider struct {
	snaps []collector.Snapshot
}

func (s *stubProvider) Processes(bool) []collector.Snapshot          { return s.snaps }
func (s *stubProvider) Details(int32) (*collector.Details, bool)     { return nil, false }
func (s *stubProvider) Kill(int32, int) error                        { return nil }
func (s *stubProvider) TotalMemoryBytes() uint64                     { return 8 << 30 }
func (s *stubProvider) Username() string                             { return "alice" }
func (s *stubProvider) IsRoot() bool                                 { return false }
func (s *stubProvider) PID() int32                                   { return 1000 }
func (s *stubProvider) ParentPID() int32                             { return 999 }

func TestPrintSnapshot(t *testing.T) {
	p := &stubProvider{snaps: []collector.Snapshot{
		{PID: 10, Name: "nginx", User: "www", CPUPercent: 42.5, MemoryBytes: 12 << 20, Runtime: 3 * time.Hour},
		{PID: 20, Name: "vim", User: "alice", CPUPercent: 1.2, MemoryBytes: 8 << 20, Runtime: 90 * time.Second},
	}}

	var buf bytes.Buffer
	if err := PrintSnapshot(&buf, p, true, ""); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"nginx", "vim", "2 process(es)", "PID"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// CPU descending: nginx before vim.
	if strings.Index(out, "nginx") > strings.Index(out, "vim") {
		t.Error("rows should sort by CPU descending")
	}
}

func TestPrintSnapshotFilters(t *testing.T) {
	p := &stubProvider{snaps: []collector.Snapshot{
		{PID: 10, Name: "nginx", User: "www"},
		{PID: 20, Name: "vim", User: "alice"},
	}}

	var buf bytes.Buffer
	if err := PrintSnapshot(&buf, p, true, "vim"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "nginx") || !strings.Contains(out, "vim") {
		t.Errorf("filter not applied:\n%s", out)
	}
}

func TestPrintSnapshotRejectsBadQueries(t *testing.T) {
	p := &stubProvider{}
	var buf bytes.Buffer
	if err := PrintSnapshot(&buf, p, true, "/bad[/"); err == nil {
		t.Error("broken regex should be rejected")
	}
	if err := PrintSnapshot(&buf, p, true, "/killed"); err == nil {
		t.Error("/killed has no meaning without a session")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{512, "512B"},
		{2048, "2.0K"},
		{12 << 20, "12.0M"},
		{3 << 30, "3.0G"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.in); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
