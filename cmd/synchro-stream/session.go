package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gridstream/synchro-go/pkg/frame"
	"github.com/gridstream/synchro-go/pkg/log"
	"github.com/gridstream/synchro-go/pkg/stream"
)

// Session ties a stream client to a frame parser and prints the decoded
// measurements.
type Session struct {
	client  *stream.Client
	parser  *frame.Parser
	capture log.Logger
	file    *log.FileLogger
	out     io.Writer

	// outMu serializes writes to out from client callbacks.
	outMu sync.Mutex

	endOfStream chan struct{}
	finished    chan struct{}
}

// NewSession builds a configured, unconnected session writing to out.
func NewSession(p Profile, out io.Writer) (*Session, error) {
	s := &Session{
		client:      stream.NewClient(stream.FileOpener{}),
		out:         out,
		capture:     log.NoopLogger{},
		endOfStream: make(chan struct{}, 1),
		finished:    make(chan struct{}, 1),
	}

	if p.ProtocolLog != "" {
		fl, err := log.NewFileLogger(p.ProtocolLog)
		if err != nil {
			return nil, err
		}
		s.file = fl
		if p.LogLevel == "debug" {
			s.capture = log.NewMultiLogger(fl, log.NewSlogAdapter(nil))
		} else {
			s.capture = fl
		}
		s.client.SetCapture(s.capture)
	}

	if err := p.Apply(s.client); err != nil {
		s.closeCapture()
		return nil, err
	}

	s.parser = frame.NewParser(frame.FrequencyLayout(p.Station), s.handleFrame, nil)
	s.client.SetRawSink(s.parser)
	s.register()
	return s, nil
}

// Client returns the underlying stream client.
func (s *Session) Client() *stream.Client { return s.client }

// Parser returns the frame parser fed by the client.
func (s *Session) Parser() *frame.Parser { return s.parser }

// EndOfStream signals each completed pass. Signals are coalesced.
func (s *Session) EndOfStream() <-chan struct{} { return s.endOfStream }

// Finished signals that a connection cycle ended without a pass to wait
// for: attempts ran out or the connection dropped.
func (s *Session) Finished() <-chan struct{} { return s.finished }

// Close closes the client and the capture file.
func (s *Session) Close() error {
	err := s.client.Close()
	s.closeCapture()
	return err
}

func (s *Session) closeCapture() {
	if s.file != nil {
		s.file.Close()
	}
}

func (s *Session) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) register() {
	c := s.client
	c.OnConnecting(func(attempt int) {
		s.printf("connecting (attempt %d)\n", attempt)
	})
	c.OnConnected(func() {
		s.printf("connected to %s\n", c.Source())
	})
	c.OnConnectingFailed(func(attempt int, err error) {
		s.printf("attempt %d failed: %v\n", attempt, err)
	})
	c.OnConnectingCanceled(func() {
		s.printf("connection canceled\n")
	})
	c.OnDisconnected(func() {
		s.printf("disconnected\n")
		notify(s.finished)
	})
	c.OnStateChange(func(oldState, newState stream.State) {
		if oldState == stream.StateConnecting && newState == stream.StateIdle {
			s.printf("gave up after %d attempts\n", c.Attempts())
			notify(s.finished)
		}
	})
	c.OnEndOfStream(func() {
		stats := s.parser.Stats()
		s.printf("end of stream: %d frames, %d parse errors, %d bytes dropped\n",
			stats.Frames, stats.ParseErrors, stats.BytesDropped)
		notify(s.endOfStream)
	})
	c.OnReadFault(func(err error) {
		s.printf("read fault: %v\n", err)
	})
}

// handleFrame prints the measurements of a decoded frame and captures a
// summary of it.
func (s *Session) handleFrame(f *frame.Frame) {
	ms := f.Measurements()
	for _, m := range ms {
		s.printf("%s\n", m)
	}

	s.capture.Log(log.Event{
		Timestamp: time.Now(),
		StreamID:  s.client.ID(),
		Source:    s.client.Source(),
		Layer:     log.LayerCodec,
		Category:  log.CategoryData,
		Frame: &log.FrameEvent{
			Type:         uint8(f.Type()),
			IDCode:       f.IDCode(),
			Size:         f.Size(),
			Cells:        len(f.Cells()),
			Measurements: len(ms),
			FrameTime:    f.Timestamp(),
			NominalHz:    f.NominalFrequency().Hz(),
		},
	})
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
