package signals

import "time"

// HistoryCap bounds the dispatch history; the oldest event is evicted once
// the buffer is full. History lives only for the session.
const HistoryCap = 10

// Event records one dispatch attempt, successful or not.
type Event struct {
	Time        time.Time
	PID         int32
	ProcessName string
	Signal      Signal
	Err         error
}

func (e Event) Succeeded() bool { return e.Err == nil }

// History is an append-only ring of the most recent dispatch attempts.
type History struct {
	events []Event
}

func NewHistory() *History {
	return &History{events: make([]Event, 0, HistoryCap)}
}

func (h *History) Record(e Event) {
	if len(h.events) == HistoryCap {
		copy(h.events, h.events[1:])
		h.events = h.events[:HistoryCap-1]
	}
	h.events = append(h.events, e)
}

// Events returns a newest-first copy.
func (h *History) Events() []Event {
	out := make([]Event, len(h.events))
	for i, e := range h.events {
		out[len(h.events)-1-i] = e
	}
	return out
}

func (h *History) Len() int { return len(h.events) }
