package app

import "fmt"

// LogEntry is one line of the match's recent-events feed.
type LogEntry struct {
	Time    float64 `json:"time"`
	Message string  `json:"message"`
}

// eventLog keeps the most recent entries in a fixed-size ring.
type eventLog struct {
	entries []LogEntry
	next    int
	full    bool
}

func newEventLog(size int) *eventLog {
	if size <= 0 {
		size = 1
	}
	return &eventLog{entries: make([]LogEntry, size)}
}

func (l *eventLog) add(at float64, format string, args ...any) {
	l.entries[l.next] = LogEntry{Time: at, Message: fmt.Sprintf(format, args...)}
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Tail returns the retained entries, oldest first.
func (l *eventLog) Tail() []LogEntry {
	if !l.full {
		out := make([]LogEntry, 0, l.next)
		return append(out, l.entries[:l.next]...)
	}
	out := make([]LogEntry, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	return append(out, l.entries[:l.next]...)
}
