package views

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"procsweep/internal/search"
	"procsweep/ui/tui/styles"
)

// FormatBytes renders a byte count in the shortest human unit.
func FormatBytes(n uint64) string {
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

// FormatUptime renders a runtime with two leading units at most.
func FormatUptime(d time.Duration) string {
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

// pad fits s into exactly width terminal cells, truncating with an
// ellipsis when it overflows. Widths are cell widths, not byte counts,
// so CJK process names stay aligned.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// highlightName styles the matched spans of a process name and pads the
// result to width cells. Spans are rune offsets from the search engine.
func highlightName(name string, spans []search.Span, theme styles.Theme, width int, base func(...string) string) string {
	if len(spans) == 0 {
		return base(pad(name, width))
	}

	runes := []rune(name)
	var out string
	cursor := 0
	for _, sp := range spans {
		if sp.Start >= len(runes) {
			break
		}
		end := sp.End
		if end > len(runes) {
			end = len(runes)
		}
		if sp.Start > cursor {
			out += base(string(runes[cursor:sp.Start]))
		}
		out += theme.Highlight.Render(string(runes[sp.Start:end]))
		cursor = end
	}
	if cursor < len(runes) {
		out += base(string(runes[cursor:]))
	}

	if w := runewidth.StringWidth(name); w < width {
		out += base(runewidth.FillRight("", width-w))
	}
	return out
}
