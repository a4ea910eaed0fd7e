package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gridstream/synchro-go/pkg/codec"
	"github.com/gridstream/synchro-go/pkg/measurement"
)

// Frame constants.
const (
	// SyncByte is the first byte of every frame.
	SyncByte = 0xAA

	// HeaderLength is the size of the common header.
	HeaderLength = 14

	// MinFrameSize is the size of a frame with an empty body.
	MinFrameSize = HeaderLength + 2

	// MaxFrameSize is the largest size FRAMESIZE can express.
	MaxFrameSize = 0xFFFF

	// DefaultVersion is the protocol version written by NewFrame.
	DefaultVersion = 1

	// DefaultTimeBase is the FRACSEC resolution (microseconds).
	DefaultTimeBase = 1_000_000

	fracSecMask = 0x00FFFFFF
)

// Frame header errors.
var (
	// ErrBadSync indicates a frame that does not start with SyncByte.
	ErrBadSync = errors.New("bad sync byte")

	// ErrBadFrameSize indicates a FRAMESIZE smaller than an empty frame.
	ErrBadFrameSize = errors.New("bad frame size")

	// ErrFrameTooLarge indicates a frame body that FRAMESIZE cannot express.
	ErrFrameTooLarge = errors.New("frame too large")
)

// Frame is a complete protocol message owning an ordered list of cells.
type Frame struct {
	frameType FrameType
	version   uint8
	idCode    uint16
	soc       uint32
	fracSec   uint32
	timeBase  uint32
	nominal   NominalFrequency

	cells  []Cell
	layout Layout

	// bodyLen is the body size declared by a parsed header, or -1 when the
	// body length is computed from the cells.
	bodyLen int
}

// NewFrame creates an empty frame for explicit composition.
func NewFrame(frameType FrameType, idCode uint16) *Frame {
	return &Frame{
		frameType: frameType,
		version:   DefaultVersion,
		idCode:    idCode,
		timeBase:  DefaultTimeBase,
		bodyLen:   -1,
	}
}

// DecodeFrame parses one frame from buf[start:] and returns it with the
// number of bytes consumed. Cells are created from layout in order and
// decoded as their bytes are reached.
func DecodeFrame(buf []byte, start int, layout Layout) (*Frame, int, error) {
	f := &Frame{
		timeBase: DefaultTimeBase,
		layout:   layout,
		bodyLen:  -1,
	}
	n, err := codec.Decode(f, buf, start)
	f.layout = nil
	if err != nil {
		return nil, 0, err
	}
	return f, n, nil
}

// Type returns the frame type.
func (f *Frame) Type() FrameType { return f.frameType }

// Version returns the protocol version.
func (f *Frame) Version() uint8 { return f.version }

// IDCode returns the data stream id.
func (f *Frame) IDCode() uint16 { return f.idCode }

// NominalFrequency returns the frame-level nominal frequency.
func (f *Frame) NominalFrequency() NominalFrequency { return f.nominal }

// SetNominalFrequency sets the frame-level nominal frequency.
func (f *Frame) SetNominalFrequency(n NominalFrequency) { f.nominal = n }

// TimeBase returns the FRACSEC resolution.
func (f *Frame) TimeBase() uint32 { return f.timeBase }

// SetTimeBase sets the FRACSEC resolution. Zero restores the default.
func (f *Frame) SetTimeBase(tb uint32) {
	if tb == 0 {
		tb = DefaultTimeBase
	}
	f.timeBase = tb
}

// TimeQuality returns the quality flags in the top byte of FRACSEC.
func (f *Frame) TimeQuality() uint8 { return uint8(f.fracSec >> 24) }

// Timestamp returns the frame time from SOC and FRACSEC.
func (f *Frame) Timestamp() time.Time {
	frac := uint64(f.fracSec & fracSecMask)
	nanos := frac * uint64(time.Second) / uint64(f.timeBase)
	return time.Unix(int64(f.soc), int64(nanos)).UTC()
}

// SetTimestamp sets SOC and FRACSEC, keeping the time quality flags.
func (f *Frame) SetTimestamp(t time.Time) {
	f.soc = uint32(t.Unix())
	frac := uint64(t.Nanosecond()) * uint64(f.timeBase) / uint64(time.Second)
	f.fracSec = f.fracSec&^fracSecMask | uint32(frac)&fracSecMask
}

// Cells returns the cells in wire order. The slice must not be modified.
func (f *Frame) Cells() []Cell { return f.cells }

// Cell returns the cell at position i, or nil.
func (f *Frame) Cell(i int) Cell {
	if i < 0 || i >= len(f.cells) {
		return nil
	}
	return f.cells[i]
}

// AddCell appends c and makes f its parent.
func (f *Frame) AddCell(c Cell) {
	if p, ok := c.(interface{ setParent(*Frame) }); ok {
		p.setParent(f)
	}
	f.cells = append(f.cells, c)
	f.bodyLen = -1
}

// FrequencyDefinition returns the first frequency definition among the
// cells decoded so far, or nil.
func (f *Frame) FrequencyDefinition() FrequencyDefinitionCell {
	for _, c := range f.cells {
		if d, ok := c.(FrequencyDefinitionCell); ok {
			return d
		}
	}
	return nil
}

// Measurements collects the values of every cell that produces them,
// stamped with the frame time.
func (f *Frame) Measurements() []measurement.Measurement {
	ts := f.Timestamp()
	var out []measurement.Measurement
	for _, c := range f.cells {
		if m, ok := c.(Measurer); ok {
			out = append(out, m.Measurements(ts)...)
		}
	}
	return out
}

// Encode serializes the frame with its CRC.
func (f *Frame) Encode() ([]byte, error) {
	if size := HeaderLength + f.BodyLength() + codec.CRCCCITT.Size(); size > MaxFrameSize {
		return nil, fmt.Errorf("encode frame: %w: %d bytes", ErrFrameTooLarge, size)
	}
	return codec.Encode(f)
}

// Size returns the encoded frame size.
func (f *Frame) Size() int {
	return codec.EncodedLength(f)
}

// Name implements codec.Element.
func (f *Frame) Name() string { return "frame" }

// Checksum implements codec.Checksummer.
func (f *Frame) Checksum() codec.Checksum { return codec.CRCCCITT }

// HeaderLength implements codec.Element.
func (f *Frame) HeaderLength() int { return HeaderLength }

// BodyLength returns the declared body length of a parsed frame, or the
// summed encoded length of the cells.
func (f *Frame) BodyLength() int {
	if f.bodyLen >= 0 {
		return f.bodyLen
	}
	n := 0
	for _, c := range f.cells {
		n += codec.EncodedLength(c)
	}
	return n
}

// HeaderImage encodes the common header.
func (f *Frame) HeaderImage() []byte {
	size := HeaderLength + f.BodyLength() + codec.CRCCCITT.Size()
	buf := make([]byte, HeaderLength)
	buf[0] = SyncByte
	buf[1] = byte(f.frameType&0x07)<<4 | f.version&0x0F
	binary.BigEndian.PutUint16(buf[2:4], uint16(size))
	binary.BigEndian.PutUint16(buf[4:6], f.idCode)
	binary.BigEndian.PutUint32(buf[6:10], f.soc)
	binary.BigEndian.PutUint32(buf[10:14], f.fracSec)
	return buf
}

// BodyImage encodes the cells in order.
func (f *Frame) BodyImage() []byte {
	var buf []byte
	for _, c := range f.cells {
		data, err := codec.Encode(c)
		if err != nil {
			// A cell that cannot encode yields a short body, which Encode
			// reports as a length mismatch.
			return buf
		}
		buf = append(buf, data...)
	}
	return buf
}

// ParseHeaderImage decodes the common header.
func (f *Frame) ParseHeaderImage(buf []byte, start int) (int, error) {
	b := buf[start:]
	if b[0] != SyncByte {
		return 0, codec.NewParseError(f.Name(), start, fmt.Errorf("%w: 0x%02X", ErrBadSync, b[0]))
	}
	size := int(binary.BigEndian.Uint16(b[2:4]))
	if size < MinFrameSize {
		return 0, codec.NewParseError(f.Name(), start, fmt.Errorf("%w: %d", ErrBadFrameSize, size))
	}
	f.frameType = FrameType(b[1] >> 4 & 0x07)
	f.version = b[1] & 0x0F
	f.idCode = binary.BigEndian.Uint16(b[4:6])
	f.soc = binary.BigEndian.Uint32(b[6:10])
	f.fracSec = binary.BigEndian.Uint32(b[10:14])
	f.bodyLen = size - MinFrameSize
	return HeaderLength, nil
}

// ParseBodyImage constructs and decodes cells from the layout.
// The body must be consumed exactly.
func (f *Frame) ParseBodyImage(buf []byte, start int) (int, error) {
	end := start + f.bodyLen
	f.cells = f.cells[:0]
	pos := start
	for i, factory := range f.layout {
		c := factory(f, i)
		n, err := codec.Decode(c, buf[:end], pos)
		if err != nil {
			return 0, fmt.Errorf("cell %d: %w", i, err)
		}
		f.cells = append(f.cells, c)
		pos += n
	}
	if pos != end {
		return 0, codec.NewParseError(f.Name(), start,
			fmt.Errorf("%w: layout consumed %d of %d body bytes", codec.ErrLengthMismatch, pos-start, f.bodyLen))
	}
	return pos - start, nil
}

// Compile-time interface satisfaction checks.
var (
	_ codec.Element     = (*Frame)(nil)
	_ codec.Checksummer = (*Frame)(nil)
)
