package stream

import "fmt"

// Chunk is one block of bytes read from a resource.
type Chunk struct {
	// StreamID identifies the client that read the chunk.
	StreamID string

	// Source is the resource the chunk was read from.
	Source string

	// Sequence numbers chunks from 1 within a connection.
	Sequence uint64

	// Offset is the resource position of the first byte.
	Offset int64

	// Data is owned by the receiver.
	Data []byte
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s#%d [%d+%d]", c.Source, c.Sequence, c.Offset, len(c.Data))
}
