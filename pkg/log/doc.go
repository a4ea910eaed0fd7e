// Package log provides protocol capture for synchrophasor streams.
//
// This package defines the Logger interface and Event types for recording
// what a stream client read and what the frame decoder made of it. It is
// separate from operational logging (slog): a capture is a complete
// machine-readable trace that can be replayed and inspected later.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	client.SetCapture(log.NewSlogAdapter(slog.Default()))
//
//	// For later analysis: write to a capture file
//	capture, _ := log.NewFileLogger("/var/log/synchro/pmu.slog")
//	client.SetCapture(capture)
//
//	// Both: use MultiLogger
//	client.SetCapture(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    capture,
//	))
//
// # Event Types
//
// Events are captured at three layers:
//   - Transport: raw chunks read from the resource (ChunkEvent)
//   - Codec: decoded frame summaries (FrameEvent)
//   - Client: state changes and control actions (StateChangeEvent, ControlEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files are a sequence of CBOR-encoded events with a .slog
// extension. The synchro-log tool views, summarizes and exports them.
package log
