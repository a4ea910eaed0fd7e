package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. A nil logger uses slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("stream_id", event.StreamID),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}

	switch {
	case event.Chunk != nil:
		attrs = append(attrs,
			slog.Uint64("seq", event.Chunk.Sequence),
			slog.Int64("offset", event.Chunk.Offset),
			slog.Int("chunk_size", event.Chunk.Size),
		)
		if event.Chunk.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_type", int(event.Frame.Type)),
			slog.Int("id_code", int(event.Frame.IDCode)),
			slog.Int("frame_size", event.Frame.Size),
			slog.Int("cells", event.Frame.Cells),
			slog.Time("frame_time", event.Frame.FrameTime),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Control != nil:
		attrs = append(attrs, slog.String("control", event.Control.Type.String()))
		if event.Control.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", event.Control.Attempt))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
		if event.Error.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", event.Error.Attempt))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
