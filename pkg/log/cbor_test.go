package log

import (
	"bytes"
	"testing"
	"time"
)

func roundTrip(t *testing.T, event Event) Event {
	t.Helper()
	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	return decoded
}

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		StreamID:  "abc12345-def6-7890-abcd-ef1234567890",
		Layer:     LayerClient,
		Category:  CategoryState,
		Source:    "/data/pmu.bin",
	}

	decoded := roundTrip(t, original)

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.StreamID != original.StreamID {
		t.Errorf("StreamID: got %q, want %q", decoded.StreamID, original.StreamID)
	}
	if decoded.Layer != original.Layer || decoded.Category != original.Category {
		t.Errorf("Layer/Category: got %v/%v", decoded.Layer, decoded.Category)
	}
	if decoded.Source != original.Source {
		t.Errorf("Source: got %q, want %q", decoded.Source, original.Source)
	}
}

func TestChunkEventCBORRoundTrip(t *testing.T) {
	decoded := roundTrip(t, Event{
		Timestamp: time.Now(),
		StreamID:  "s-1",
		Layer:     LayerTransport,
		Category:  CategoryData,
		Chunk: &ChunkEvent{
			Sequence:  7,
			Offset:    4096 * 6,
			Size:      5000,
			Data:      []byte{0xAA, 0x01, 0x00, 0x16},
			Truncated: true,
		},
	})

	c := decoded.Chunk
	if c == nil {
		t.Fatal("Chunk is nil")
	}
	if c.Sequence != 7 || c.Offset != 4096*6 || c.Size != 5000 || !c.Truncated {
		t.Errorf("Chunk = %+v", c)
	}
	if !bytes.Equal(c.Data, []byte{0xAA, 0x01, 0x00, 0x16}) {
		t.Errorf("Chunk.Data = %v", c.Data)
	}
}

func TestFrameEventCBORRoundTrip(t *testing.T) {
	frameTime := time.Date(2024, 3, 1, 12, 0, 0, 250_000_000, time.UTC)
	decoded := roundTrip(t, Event{
		Timestamp: time.Now(),
		StreamID:  "s-1",
		Layer:     LayerCodec,
		Category:  CategoryData,
		Frame: &FrameEvent{
			Type:         0,
			IDCode:       7,
			Size:         22,
			Cells:        2,
			Measurements: 2,
			FrameTime:    frameTime,
			NominalHz:    50,
		},
	})

	f := decoded.Frame
	if f == nil {
		t.Fatal("Frame is nil")
	}
	if f.IDCode != 7 || f.Size != 22 || f.Cells != 2 || f.Measurements != 2 || f.NominalHz != 50 {
		t.Errorf("Frame = %+v", f)
	}
	if !f.FrameTime.Equal(frameTime) {
		t.Errorf("FrameTime: got %v, want %v", f.FrameTime, frameTime)
	}
}

func TestStateAndControlCBORRoundTrip(t *testing.T) {
	decoded := roundTrip(t, Event{
		Timestamp:   time.Now(),
		Layer:       LayerClient,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{OldState: "CONNECTING", NewState: "CONNECTED", Reason: "opened"},
	})
	if sc := decoded.StateChange; sc == nil || sc.OldState != "CONNECTING" || sc.NewState != "CONNECTED" || sc.Reason != "opened" {
		t.Errorf("StateChange = %+v", decoded.StateChange)
	}

	decoded = roundTrip(t, Event{
		Timestamp: time.Now(),
		Layer:     LayerClient,
		Category:  CategoryControl,
		Control:   &ControlEvent{Type: ControlAttempt, Attempt: 3},
	})
	if c := decoded.Control; c == nil || c.Type != ControlAttempt || c.Attempt != 3 {
		t.Errorf("Control = %+v", decoded.Control)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	decoded := roundTrip(t, Event{
		Timestamp: time.Now(),
		Layer:     LayerClient,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerTransport,
			Message: "open /data/pmu.bin: permission denied",
			Attempt: 2,
			Context: "connect",
		},
	})

	e := decoded.Error
	if e == nil {
		t.Fatal("Error is nil")
	}
	if e.Layer != LayerTransport || e.Attempt != 2 || e.Context != "connect" {
		t.Errorf("Error = %+v", e)
	}
	if e.Message != "open /data/pmu.bin: permission denied" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{
		Timestamp: time.Now(),
		StreamID:  "s-1",
		Layer:     LayerTransport,
		Category:  CategoryData,
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var rawMap map[uint64]any
	if err := decMode.Unmarshal(data, &rawMap); err != nil {
		t.Fatalf("failed to decode as map: %v", err)
	}
	for _, key := range []uint64{1, 2, 3, 4} {
		if _, ok := rawMap[key]; !ok {
			t.Errorf("expected integer key %d not found in encoded data", key)
		}
	}
	if _, ok := rawMap[5]; ok {
		t.Error("empty Source should be omitted")
	}

	var stringMap map[string]any
	if err := decMode.Unmarshal(data, &stringMap); err == nil && len(stringMap) > 0 {
		t.Error("encoded data contains string keys, expected integer keys only")
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xFF, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}
