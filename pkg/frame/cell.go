package frame

import (
	"errors"
	"time"
	"weak"

	"github.com/gridstream/synchro-go/pkg/codec"
	"github.com/gridstream/synchro-go/pkg/measurement"
)

// ErrNoParent indicates a cell whose parent frame is unset or gone.
var ErrNoParent = errors.New("cell has no parent frame")

// Cell is a protocol element owned by a Frame.
//
// Implementations: *FrequencyDefinition, *FrequencyValue.
type Cell interface {
	codec.Element

	// Index is the identification index of the cell within its frame.
	Index() int

	// Parent returns the owning frame, or nil if it is unset or has been
	// released.
	Parent() *Frame
}

// Measurer is implemented by cells that produce measurement values.
type Measurer interface {
	Measurements(timestamp time.Time) []measurement.Measurement
}

// CellFactory constructs the cell at position index of a frame being
// parsed. The parent header has already been decoded.
type CellFactory func(parent *Frame, index int) Cell

// Layout lists the cells of a frame body in wire order.
type Layout []CellFactory

// cellBase carries the parent link and index shared by all cells.
// Cells have no header and no checksum of their own; the frame CRC
// covers them.
type cellBase struct {
	parent weak.Pointer[Frame]
	index  int
}

func (c *cellBase) setParent(f *Frame) {
	if f == nil {
		c.parent = weak.Pointer[Frame]{}
		return
	}
	c.parent = weak.Make(f)
}

// Index returns the cell index.
func (c *cellBase) Index() int {
	return c.index
}

// SetIndex changes the cell index.
func (c *cellBase) SetIndex(index int) {
	c.index = index
}

// Parent returns the owning frame or nil.
func (c *cellBase) Parent() *Frame {
	return c.parent.Value()
}

// HeaderLength is zero for cells.
func (c *cellBase) HeaderLength() int { return 0 }

// HeaderImage is empty for cells.
func (c *cellBase) HeaderImage() []byte { return nil }

// ParseHeaderImage consumes nothing for cells.
func (c *cellBase) ParseHeaderImage([]byte, int) (int, error) { return 0, nil }
