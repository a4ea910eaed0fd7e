package log

import (
	"testing"
	"time"
)

// recordingLogger records events for testing.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{})
	l.Log(Event{Chunk: &ChunkEvent{Data: make([]byte, 10)}})
}

func TestMultiLoggerCallsAll(t *testing.T) {
	r1, r2 := &recordingLogger{}, &recordingLogger{}
	multi := NewMultiLogger(r1, nil, r2)

	multi.Log(Event{Timestamp: time.Now(), StreamID: "s-123"})

	for i, r := range []*recordingLogger{r1, r2} {
		if len(r.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(r.events))
			continue
		}
		if r.events[0].StreamID != "s-123" {
			t.Errorf("logger %d: StreamID = %q", i, r.events[0].StreamID)
		}
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	NewMultiLogger().Log(Event{})
	NewMultiLogger(nil, nil).Log(Event{})
}
