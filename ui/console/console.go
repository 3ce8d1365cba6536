// Package console renders a one-shot process snapshot for --once runs
// and for terminals where the full TUI is unwanted.
package console

import (
	"fmt"
	"io"
	"time"

	"procsweep/internal/collector"
	"procsweep/internal/search"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// PrintSnapshot renders the current process table to the writer in a
// highly compact format. The filter accepts the same query syntax as
// the interactive search, except /killed, which needs a session.
func PrintSnapshot(w io.Writer, provider collector.Provider, showAll bool, filter string) error {
	q, err := search.Parse(filter)
	if err != nil {
		return err
	}
	if q.Mode() == search.ModeKilled {
		return fmt.Errorf("/killed only works in the interactive session")
	}

	snaps := provider.Processes(showAll)
	results := make([]search.Result, 0, len(snaps))
	for _, s := range snaps {
		m, ok := q.MatchSnapshot(s)
		if !ok {
			continue
		}
		results = append(results, search.Result{Snapshot: s, Match: m})
	}
	search.Rank(results, func(a, b collector.Snapshot) bool {
		if a.CPUPercent != b.CPUPercent {
			return a.CPUPercent > b.CPUPercent
		}
		return a.PID < b.PID
	})

	fmt.Fprintf(w, "%s%s %s%s\n", colorCyan, "■", "PROCSWEEP SNAPSHOT", colorReset)
	fmt.Fprintf(w, "%s%7s %-22s %-10s %6s %9s %9s %s%s\n",
		colorCyan, "PID", "NAME", "USER", "CPU%", "MEM", "UPTIME", "STATE", colorReset)

	var totalMem uint64
	for _, r := range results {
		s := r.Snapshot
		totalMem += s.MemoryBytes
		fmt.Fprintf(w, "%7d %-22s %-10s %s%6.1f%s %9s %9s %s\n",
			s.PID,
			clip(s.Name, 22),
			clip(s.User, 10),
			cpuColor(s.CPUPercent), s.CPUPercent, colorReset,
			formatBytes(s.MemoryBytes),
			formatUptime(s.Runtime),
			s.State,
		)
	}

	fmt.Fprintf(w, "%s─ Summary%s: %d process(es), %s resident\n",
		colorCyan, colorReset, len(results), formatBytes(totalMem))
	return nil
}

func cpuColor(pct float64) string {
	switch {
	case pct >= 50:
		return colorRed
	case pct >= 20:
		return colorYellow
	default:
		return colorGreen
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTP"[exp])
}

func formatUptime(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
