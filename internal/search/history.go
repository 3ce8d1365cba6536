package search

import (
	"strings"
	"unicode/utf8"

	"procsweep/internal/signals"
)

// HistoryMatch is one killed-history entry surfaced by a /killed query.
type HistoryMatch struct {
	Event      signals.Event
	Score      int
	Highlights []Span
}

// FilterHistory answers a /killed query from the dispatch history. Only
// successful deliveries count as killed. The sub-filter is a
// case-insensitive substring test against the process name or the signal
// name, so "/killed:term" and "/killed vim" both narrow as expected.
// Events arrive newest-first and scores preserve that order.
func FilterHistory(events []signals.Event, sub string) []HistoryMatch {
	needle := strings.ToLower(strings.TrimSpace(sub))

	var out []HistoryMatch
	for i, e := range events {
		if !e.Succeeded() {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.ProcessName), needle) &&
			!strings.Contains(strings.ToLower(e.Signal.String()), needle) {
			continue
		}
		out = append(out, HistoryMatch{
			Event: e,
			Score: len(events) - i,
			Highlights: []Span{
				{Start: 0, End: utf8.RuneCountInString(e.ProcessName)},
			},
		})
	}
	return out
}
