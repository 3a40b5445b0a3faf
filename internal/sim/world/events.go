package world

import "fmt"

const eventLogCap = 12

func (w *World) logEvent(format string, args ...any) {
	w.eventLog = append(w.eventLog, fmt.Sprintf(format, args...))
	if len(w.eventLog) > eventLogCap {
		w.eventLog = w.eventLog[len(w.eventLog)-eventLogCap:]
	}
}

// EventLog returns a copy of the rolling in-sim event feed, oldest first.
func (w *World) EventLog() []string {
	out := make([]string, len(w.eventLog))
	copy(out, w.eventLog)
	return out
}
