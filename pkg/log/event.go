package log

import "time"

// MaxChunkDataSize is the maximum chunk payload kept in a capture event (4 KB).
const MaxChunkDataSize = 4096

// Event represents a capture event recorded by a stream client or a frame
// decoder. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// StreamID identifies the client instance (UUID).
	StreamID string `cbor:"2,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Source is the resource the stream reads from.
	Source string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Chunk       *ChunkEvent       `cbor:"6,keyasint,omitempty"` // Transport layer
	Frame       *FrameEvent       `cbor:"7,keyasint,omitempty"` // Codec layer
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"` // Client state
	Control     *ControlEvent     `cbor:"9,keyasint,omitempty"` // Attempts, cancel, end of stream
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"`
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the byte stream (raw chunks).
	LayerTransport Layer = 0
	// LayerCodec is the frame decoder.
	LayerCodec Layer = 1
	// LayerClient is the connection state machine.
	LayerClient Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCodec:
		return "CODEC"
	case LayerClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryData indicates received bytes or a decoded frame.
	CategoryData Category = 0
	// CategoryControl indicates a connection attempt, cancel or end of stream.
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryData:
		return "DATA"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ChunkEvent captures one chunk read from the resource.
type ChunkEvent struct {
	// Sequence numbers chunks from 1 within a connection.
	Sequence uint64 `cbor:"1,keyasint"`

	// Offset is the resource position of the first byte.
	Offset int64 `cbor:"2,keyasint"`

	// Size is the chunk size in bytes.
	Size int `cbor:"3,keyasint"`

	// Data is the chunk payload (may be truncated for large chunks).
	Data []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// NewChunkEvent builds a ChunkEvent holding a copy of at most
// MaxChunkDataSize bytes of data.
func NewChunkEvent(sequence uint64, offset int64, data []byte) *ChunkEvent {
	kept := data
	truncated := false
	if len(kept) > MaxChunkDataSize {
		kept = kept[:MaxChunkDataSize]
		truncated = true
	}
	return &ChunkEvent{
		Sequence:  sequence,
		Offset:    offset,
		Size:      len(data),
		Data:      append([]byte(nil), kept...),
		Truncated: truncated,
	}
}

// FrameEvent summarizes a decoded frame.
type FrameEvent struct {
	// Type is the frame type number.
	Type uint8 `cbor:"1,keyasint"`

	// IDCode is the data stream id.
	IDCode uint16 `cbor:"2,keyasint"`

	// Size is the encoded frame size in bytes.
	Size int `cbor:"3,keyasint"`

	// Cells is the number of decoded cells.
	Cells int `cbor:"4,keyasint"`

	// Measurements is the number of values the frame produced.
	Measurements int `cbor:"5,keyasint,omitempty"`

	// FrameTime is the timestamp carried in the frame header.
	FrameTime time.Time `cbor:"6,keyasint"`

	// NominalHz is the nominal frequency in effect after decoding.
	NominalHz float64 `cbor:"7,keyasint,omitempty"`
}

// StateChangeEvent captures client lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state.
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ControlEvent captures connection control actions.
type ControlEvent struct {
	// Type of control action.
	Type ControlType `cbor:"1,keyasint"`

	// Attempt is the connection attempt number, if applicable.
	Attempt int `cbor:"2,keyasint,omitempty"`
}

// ControlType indicates the type of control action.
type ControlType uint8

const (
	// ControlAttempt indicates a connection attempt.
	ControlAttempt ControlType = 0
	// ControlCancel indicates a cancelled connection cycle.
	ControlCancel ControlType = 1
	// ControlEndOfStream indicates a completed read pass.
	ControlEndOfStream ControlType = 2
	// ControlReceive indicates an on-demand receive request.
	ControlReceive ControlType = 3
)

// String returns the control type name.
func (c ControlType) String() string {
	switch c {
	case ControlAttempt:
		return "ATTEMPT"
	case ControlCancel:
		return "CANCEL"
	case ControlEndOfStream:
		return "END_OF_STREAM"
	case ControlReceive:
		return "RECEIVE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Attempt is the connection attempt that failed (if applicable).
	Attempt int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
