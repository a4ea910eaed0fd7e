package frame

import (
	"encoding/binary"
	"log/slog"
	"sync"
)

// ParserStats counts parser activity.
type ParserStats struct {
	Frames       uint64
	ParseErrors  uint64
	BytesDropped uint64
}

// Parser reassembles frames from a byte stream delivered in arbitrary
// chunks and decodes them with a layout.
//
// Parser implements io.Writer so it can be used directly as a raw sink.
// Frames are handed to the callback in stream order from within Write.
type Parser struct {
	mu      sync.Mutex
	layout  Layout
	onFrame func(*Frame)
	logger  *slog.Logger
	buf     []byte
	stats   ParserStats
}

// NewParser creates a parser. A nil logger uses slog.Default().
func NewParser(layout Layout, onFrame func(*Frame), logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		layout:  layout,
		onFrame: onFrame,
		logger:  logger,
	}
}

// Write appends data to the stream and decodes every complete frame.
// It never returns an error; undecodable bytes are skipped.
func (p *Parser) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	pos := 0
	for {
		// Resynchronize on the next sync byte.
		skip := 0
		for pos+skip < len(p.buf) && p.buf[pos+skip] != SyncByte {
			skip++
		}
		if skip > 0 {
			p.stats.BytesDropped += uint64(skip)
			pos += skip
		}

		rest := p.buf[pos:]
		if len(rest) < 4 {
			break
		}
		size, ok := candidateSize(rest)
		if !ok {
			p.stats.BytesDropped++
			pos++
			continue
		}
		if len(rest) < size {
			// A false sync byte can announce a frame far larger than what
			// follows. Skip to a later frame that already decodes.
			next := p.nextDecodable(rest)
			if next < 0 {
				break
			}
			p.stats.ParseErrors++
			p.stats.BytesDropped += uint64(next)
			p.logger.Debug("incomplete frame skipped, resynchronizing", "size", size, "skipped", next)
			pos += next
			continue
		}

		f, n, err := DecodeFrame(rest[:size], 0, p.layout)
		if err != nil {
			p.stats.ParseErrors++
			p.stats.BytesDropped++
			p.logger.Debug("frame decode failed, resynchronizing", "error", err)
			pos++
			continue
		}
		pos += n
		p.stats.Frames++
		if p.onFrame != nil {
			p.onFrame(f)
		}
	}

	// Keep only the undecoded tail.
	p.buf = append(p.buf[:0], p.buf[pos:]...)
	return len(data), nil
}

// candidateSize checks the first four bytes of a frame header and returns
// its FRAMESIZE. b[0] must be SyncByte and len(b) at least 4.
func candidateSize(b []byte) (int, bool) {
	if b[1]&0x80 != 0 || FrameType(b[1]>>4&0x07) > TypeConfig3 || b[1]&0x0F == 0 {
		return 0, false
	}
	size := int(binary.BigEndian.Uint16(b[2:4]))
	return size, size >= MinFrameSize
}

// nextDecodable returns the offset of the first sync byte after b[0] that
// starts a complete, valid frame, or -1.
func (p *Parser) nextDecodable(b []byte) int {
	for i := 1; i+4 <= len(b); i++ {
		if b[i] != SyncByte {
			continue
		}
		size, ok := candidateSize(b[i:])
		if !ok || i+size > len(b) {
			continue
		}
		if _, _, err := DecodeFrame(b[i:i+size], 0, p.layout); err == nil {
			return i
		}
	}
	return -1
}

// Buffered returns the number of bytes waiting for more data.
func (p *Parser) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

// Stats returns a snapshot of the parser counters.
func (p *Parser) Stats() ParserStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Reset discards buffered bytes and counters.
func (p *Parser) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = p.buf[:0]
	p.stats = ParserStats{}
}
