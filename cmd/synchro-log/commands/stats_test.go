package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestStatsSummary(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	expected := []string{
		"Total Events: 6",
		"TRANSPORT:",
		"CODEC:",
		"CLIENT:",
		"DATA:",
		"CONTROL:",
		"STATE:",
		"ERROR:",
		"Streams: 1",
		"[6f1c2d3e] 6 events",
		"Source: /data/shelby.bin",
		"Bytes: 4",
		"Frames: 1",
		"Attempts: 1",
		"End of stream: 1",
		"Errors: 1",
		"Duration:   2s",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Total Events: 0") {
		t.Errorf("expected zero events, got:\n%s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Errorf("expected no time range for empty file, got:\n%s", output)
	}
}
