package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gridstream/synchro-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.slog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sessionEvents is a short capture of one client reading two chunks.
func sessionEvents() []log.Event {
	base := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	const id = "6f1c2d3e-aaaa-bbbb-cccc-0123456789ab"
	const src = "/data/shelby.bin"
	return []log.Event{
		{
			Timestamp: base, StreamID: id, Source: src,
			Layer: log.LayerClient, Category: log.CategoryControl,
			Control: &log.ControlEvent{Type: log.ControlAttempt, Attempt: 1},
		},
		{
			Timestamp: base.Add(time.Millisecond), StreamID: id, Source: src,
			Layer: log.LayerClient, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{OldState: "CONNECTING", NewState: "CONNECTED", Reason: "opened"},
		},
		{
			Timestamp: base.Add(2 * time.Millisecond), StreamID: id, Source: src,
			Layer: log.LayerTransport, Category: log.CategoryData,
			Chunk: log.NewChunkEvent(1, 0, []byte{0xAA, 0x01, 0x00, 0x16}),
		},
		{
			Timestamp: base.Add(3 * time.Millisecond), StreamID: id, Source: src,
			Layer: log.LayerCodec, Category: log.CategoryData,
			Frame: &log.FrameEvent{Type: 0, IDCode: 7, Size: 22, Cells: 2, Measurements: 1, NominalHz: 60},
		},
		{
			Timestamp: base.Add(4 * time.Millisecond), StreamID: id, Source: src,
			Layer: log.LayerClient, Category: log.CategoryControl,
			Control: &log.ControlEvent{Type: log.ControlEndOfStream},
		},
		{
			Timestamp: base.Add(2 * time.Second), StreamID: id, Source: src,
			Layer: log.LayerTransport, Category: log.CategoryError,
			Error: &log.ErrorEventData{Layer: log.LayerTransport, Message: "read failed", Context: "receive"},
		},
	}
}
