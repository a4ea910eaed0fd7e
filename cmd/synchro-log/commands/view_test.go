package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gridstream/synchro-go/pkg/log"
)

func TestFormatChunkEvent(t *testing.T) {
	event := sessionEvents()[2]

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "2026-01-28T10:15:32.125456Z") {
		t.Errorf("expected timestamp in output, got:\n%s", output)
	}
	if !strings.Contains(output, "[stream:6f1c2d3e]") {
		t.Errorf("expected shortened stream id in output, got:\n%s", output)
	}
	if !strings.Contains(output, "TRANSPORT") || !strings.Contains(output, "Chunk") {
		t.Errorf("expected layer and type label in output, got:\n%s", output)
	}
	if !strings.Contains(output, "Seq: 1  Offset: 0  Size: 4 bytes") {
		t.Errorf("expected chunk details in output, got:\n%s", output)
	}
	if !strings.Contains(output, "Data: aa010016") {
		t.Errorf("expected hex data in output, got:\n%s", output)
	}
}

func TestFormatTruncatedChunk(t *testing.T) {
	event := log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerTransport,
		Chunk:     log.NewChunkEvent(3, 8192, make([]byte, log.MaxChunkDataSize+1)),
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)

	if !strings.Contains(buf.String(), "(truncated)") {
		t.Errorf("expected truncation marker, got:\n%s", buf.String())
	}
}

func TestFormatFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sessionEvents()[3])
	output := buf.String()

	if !strings.Contains(output, "CODEC") || !strings.Contains(output, "Frame") {
		t.Errorf("expected codec frame header, got:\n%s", output)
	}
	if !strings.Contains(output, "IDCode: 7") {
		t.Errorf("expected id code, got:\n%s", output)
	}
	if !strings.Contains(output, "Cells: 2  Measurements: 1") {
		t.Errorf("expected cell counts, got:\n%s", output)
	}
	if !strings.Contains(output, "Nominal: 60Hz") {
		t.Errorf("expected nominal frequency, got:\n%s", output)
	}
}

func TestFormatStateChange(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sessionEvents()[1])
	output := buf.String()

	if !strings.Contains(output, "CONNECTING -> CONNECTED") {
		t.Errorf("expected transition, got:\n%s", output)
	}
	if !strings.Contains(output, "Reason: opened") {
		t.Errorf("expected reason, got:\n%s", output)
	}
}

func TestFormatControlAndError(t *testing.T) {
	events := sessionEvents()

	var buf bytes.Buffer
	formatEvent(&buf, events[0])
	if !strings.Contains(buf.String(), "ATTEMPT") || !strings.Contains(buf.String(), "Attempt: 1") {
		t.Errorf("expected attempt control, got:\n%s", buf.String())
	}

	buf.Reset()
	formatEvent(&buf, events[5])
	output := buf.String()
	if !strings.Contains(output, "Message: read failed") || !strings.Contains(output, "Context: receive") {
		t.Errorf("expected error details, got:\n%s", output)
	}
}

func TestParseLayerFlag(t *testing.T) {
	tests := []struct {
		in   string
		want log.Layer
	}{
		{"transport", log.LayerTransport},
		{"CODEC", log.LayerCodec},
		{"Client", log.LayerClient},
	}
	for _, tt := range tests {
		got, err := ParseLayerFlag(tt.in)
		if err != nil {
			t.Fatalf("ParseLayerFlag(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLayerFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLayerFlag("wire"); err == nil {
		t.Error("expected error for unknown layer")
	}
}

func TestParseCategoryFlag(t *testing.T) {
	got, err := ParseCategoryFlag("Data")
	if err != nil || got != log.CategoryData {
		t.Errorf("ParseCategoryFlag(Data) = %v, %v", got, err)
	}
	if _, err := ParseCategoryFlag("message"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRunViewWithFilter(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	layer := log.LayerCodec
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Layer: &layer}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Count(output, "[stream:") != 1 {
		t.Errorf("expected exactly one event, got:\n%s", output)
	}
	if !strings.Contains(output, "Frame") {
		t.Errorf("expected frame event, got:\n%s", output)
	}
}

func TestRunViewBySource(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Source: "/elsewhere"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got:\n%s", buf.String())
	}
}

func TestRunViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/capture.slog", ViewFilter{}, &buf); err == nil {
		t.Error("expected error for missing file")
	}
}
