package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gridstream/synchro-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	Streams          map[string]*StreamStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// StreamStats holds statistics for a single client instance.
type StreamStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	Source      string
	Bytes       int64
	Frames      int
	Attempts    int
	EndOfStream int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:    make(map[log.Layer]int),
		EventsByCategory: make(map[log.Category]int),
		Streams:          make(map[string]*StreamStats),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	st, ok := s.Streams[event.StreamID]
	if !ok {
		st = &StreamStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Streams[event.StreamID] = st
	}
	st.Events++
	if event.Timestamp.After(st.LastSeen) {
		st.LastSeen = event.Timestamp
	}
	if event.Source != "" && st.Source == "" {
		st.Source = event.Source
	}

	switch {
	case event.Chunk != nil:
		st.Bytes += int64(event.Chunk.Size)
	case event.Frame != nil:
		st.Frames++
	case event.Control != nil:
		switch event.Control.Type {
		case log.ControlAttempt:
			st.Attempts++
		case log.ControlEndOfStream:
			st.EndOfStream++
		}
	case event.Error != nil:
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Synchrophasor Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerCodec, log.LayerClient} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryData, log.CategoryControl, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Streams: %d\n", len(stats.Streams))
	if len(stats.Streams) > 0 {
		type streamInfo struct {
			id    string
			stats *StreamStats
		}
		streams := make([]streamInfo, 0, len(stats.Streams))
		for id, st := range stats.Streams {
			streams = append(streams, streamInfo{id, st})
		}
		sort.Slice(streams, func(i, j int) bool {
			return streams[i].stats.FirstSeen.Before(streams[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range streams {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenStreamID(s.id), s.stats.Events, duration)
			if s.stats.Source != "" {
				fmt.Fprintf(w, "           Source: %s\n", s.stats.Source)
			}
			if s.stats.Bytes > 0 {
				fmt.Fprintf(w, "           Bytes: %d\n", s.stats.Bytes)
			}
			if s.stats.Frames > 0 {
				fmt.Fprintf(w, "           Frames: %d\n", s.stats.Frames)
			}
			if s.stats.Attempts > 0 {
				fmt.Fprintf(w, "           Attempts: %d\n", s.stats.Attempts)
			}
			if s.stats.EndOfStream > 0 {
				fmt.Fprintf(w, "           End of stream: %d\n", s.stats.EndOfStream)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
