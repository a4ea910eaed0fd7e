package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/gridstream/synchro-go/pkg/codec"
)

// Frequency definition defaults.
const (
	// DefaultScalingFactor converts FREQ counts to hertz (mHz resolution).
	DefaultScalingFactor = 1000

	// DefaultDfDtScalingFactor converts DFREQ counts to Hz/s.
	DefaultDfDtScalingFactor = 100

	// FrequencyDefinitionLength is the fixed FNOM body size.
	FrequencyDefinitionLength = 2

	// fnom50Hz is bit 0 of FNOM.
	fnom50Hz = 0x0001
)

// Scaling holds the frequency scaling parameters shared by every protocol
// variant of a frequency definition.
type Scaling struct {
	Label             string
	ScalingFactor     uint32
	Offset            float64
	DfDtScalingFactor uint32
	DfDtOffset        float64
}

// DefaultScaling returns the default scaling parameters.
func DefaultScaling() Scaling {
	return Scaling{
		ScalingFactor:     DefaultScalingFactor,
		DfDtScalingFactor: DefaultDfDtScalingFactor,
	}
}

// FrequencyDefinitionCell is implemented by frequency definitions of any
// protocol. It is the source side of cross-protocol conversion.
type FrequencyDefinitionCell interface {
	Cell
	Scaling() Scaling
}

// FrequencyDefinition is the nominal frequency (FNOM) field of a
// configuration frame.
//
// On the wire it is a 2-byte big-endian word whose bit 0 is set for a
// 50 Hz device. The scaling parameters are not part of the word; sibling
// cells use them to convert raw FREQ and DFREQ counts.
//
// Decoding a FrequencyDefinition sets the nominal frequency of its parent
// frame. The zero value is a valid, unattached definition.
type FrequencyDefinition struct {
	cellBase

	Label             string
	ScalingFactor     uint32
	Offset            float64
	DfDtScalingFactor uint32
	DfDtOffset        float64
}

// NewFrequencyDefinition creates a definition with default scaling.
func NewFrequencyDefinition(parent *Frame) *FrequencyDefinition {
	d := &FrequencyDefinition{
		ScalingFactor:     DefaultScalingFactor,
		DfDtScalingFactor: DefaultDfDtScalingFactor,
	}
	d.setParent(parent)
	return d
}

// ParseFrequencyDefinition creates a definition and decodes it from
// buf[start:], updating the parent's nominal frequency.
func ParseFrequencyDefinition(parent *Frame, buf []byte, start int) (*FrequencyDefinition, error) {
	d := NewFrequencyDefinition(parent)
	if _, err := codec.Decode(d, buf, start); err != nil {
		return nil, err
	}
	return d, nil
}

// NewFrequencyDefinitionWithParams creates a definition with explicit
// parameters.
func NewFrequencyDefinitionWithParams(parent *Frame, index int, label string, scale uint32, offset float64, dfdtScale uint32, dfdtOffset float64) *FrequencyDefinition {
	d := &FrequencyDefinition{
		Label:             label,
		ScalingFactor:     scale,
		Offset:            offset,
		DfDtScalingFactor: dfdtScale,
		DfDtOffset:        dfdtOffset,
	}
	d.index = index
	d.setParent(parent)
	return d
}

// NewFrequencyDefinitionFrom converts a definition of another protocol.
// Only the index and scaling parameters are copied.
func NewFrequencyDefinitionFrom(parent *Frame, other FrequencyDefinitionCell) *FrequencyDefinition {
	s := other.Scaling()
	return NewFrequencyDefinitionWithParams(parent, other.Index(), s.Label,
		s.ScalingFactor, s.Offset, s.DfDtScalingFactor, s.DfDtOffset)
}

// Scaling returns the scaling parameters.
func (d *FrequencyDefinition) Scaling() Scaling {
	return Scaling{
		Label:             d.Label,
		ScalingFactor:     d.ScalingFactor,
		Offset:            d.Offset,
		DfDtScalingFactor: d.DfDtScalingFactor,
		DfDtOffset:        d.DfDtOffset,
	}
}

// Name implements codec.Element.
func (d *FrequencyDefinition) Name() string { return "FNOM" }

// BodyLength is always 2.
func (d *FrequencyDefinition) BodyLength() int { return FrequencyDefinitionLength }

// BodyImage encodes the parent's nominal frequency. A definition without a
// parent encodes 60 Hz.
func (d *FrequencyDefinition) BodyImage() []byte {
	var word uint16
	if p := d.Parent(); p != nil && p.NominalFrequency() == Nominal50Hz {
		word |= fnom50Hz
	}
	return binary.BigEndian.AppendUint16(make([]byte, 0, FrequencyDefinitionLength), word)
}

// ParseBodyImage decodes FNOM into the parent's nominal frequency.
func (d *FrequencyDefinition) ParseBodyImage(buf []byte, start int) (int, error) {
	if len(buf)-start < FrequencyDefinitionLength {
		return 0, codec.NewParseError(d.Name(), start, codec.ErrShortBuffer)
	}
	p := d.Parent()
	if p == nil {
		return 0, fmt.Errorf("decode %s: %w", d.Name(), ErrNoParent)
	}
	if binary.BigEndian.Uint16(buf[start:])&fnom50Hz != 0 {
		p.SetNominalFrequency(Nominal50Hz)
	} else {
		p.SetNominalFrequency(Nominal60Hz)
	}
	return FrequencyDefinitionLength, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Cell                    = (*FrequencyDefinition)(nil)
	_ FrequencyDefinitionCell = (*FrequencyDefinition)(nil)
)
