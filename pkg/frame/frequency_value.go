package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gridstream/synchro-go/pkg/codec"
	"github.com/gridstream/synchro-go/pkg/measurement"
)

// FrequencyValueLength is the FREQ + DFREQ body size.
const FrequencyValueLength = 4

// ErrValueOutOfRange indicates a physical value that does not fit the
// 16-bit wire representation under the active scaling.
var ErrValueOutOfRange = errors.New("value out of range for scaling")

// FrequencyValue is the FREQ/DFREQ pair of a data frame.
//
// FREQ is the deviation from nominal and DFREQ the rate of change, both as
// big-endian int16 counts. Converting counts to physical values uses the
// parent's nominal frequency and the scaling of the parent's frequency
// definition, so a FrequencyValue must be decoded after the definition that
// precedes it in the frame.
type FrequencyValue struct {
	cellBase

	RawFrequency int16
	RawDfDt      int16

	// FrequencyKey and DfDtKey name the channels the values belong to.
	FrequencyKey measurement.Key
	DfDtKey      measurement.Key
}

// NewFrequencyValue creates a value cell attached to parent.
func NewFrequencyValue(parent *Frame, index int) *FrequencyValue {
	v := &FrequencyValue{}
	v.index = index
	v.setParent(parent)
	return v
}

// Name implements codec.Element.
func (v *FrequencyValue) Name() string { return "FREQ" }

// BodyLength is always 4.
func (v *FrequencyValue) BodyLength() int { return FrequencyValueLength }

// BodyImage encodes FREQ and DFREQ.
func (v *FrequencyValue) BodyImage() []byte {
	buf := make([]byte, 0, FrequencyValueLength)
	buf = binary.BigEndian.AppendUint16(buf, uint16(v.RawFrequency))
	return binary.BigEndian.AppendUint16(buf, uint16(v.RawDfDt))
}

// ParseBodyImage decodes FREQ and DFREQ.
func (v *FrequencyValue) ParseBodyImage(buf []byte, start int) (int, error) {
	if len(buf)-start < FrequencyValueLength {
		return 0, codec.NewParseError(v.Name(), start, codec.ErrShortBuffer)
	}
	v.RawFrequency = int16(binary.BigEndian.Uint16(buf[start:]))
	v.RawDfDt = int16(binary.BigEndian.Uint16(buf[start+2:]))
	return FrequencyValueLength, nil
}

// scaling returns the parent's definition scaling, or defaults.
func (v *FrequencyValue) scaling() (NominalFrequency, Scaling) {
	p := v.Parent()
	if p == nil {
		return Nominal60Hz, DefaultScaling()
	}
	s := DefaultScaling()
	if def := p.FrequencyDefinition(); def != nil {
		s = def.Scaling()
	}
	if s.ScalingFactor == 0 {
		s.ScalingFactor = DefaultScalingFactor
	}
	if s.DfDtScalingFactor == 0 {
		s.DfDtScalingFactor = DefaultDfDtScalingFactor
	}
	return p.NominalFrequency(), s
}

// Frequency returns the frequency in hertz.
func (v *FrequencyValue) Frequency() float64 {
	nominal, s := v.scaling()
	return nominal.Hz() + (float64(v.RawFrequency)-s.Offset)/float64(s.ScalingFactor)
}

// DfDt returns the rate of change of frequency in Hz/s.
func (v *FrequencyValue) DfDt() float64 {
	_, s := v.scaling()
	return (float64(v.RawDfDt) - s.DfDtOffset) / float64(s.DfDtScalingFactor)
}

// SetFrequency stores hz as a FREQ count under the active scaling.
func (v *FrequencyValue) SetFrequency(hz float64) error {
	nominal, s := v.scaling()
	raw, err := toCount((hz-nominal.Hz())*float64(s.ScalingFactor) + s.Offset)
	if err != nil {
		return fmt.Errorf("frequency %g Hz: %w", hz, err)
	}
	v.RawFrequency = raw
	return nil
}

// SetDfDt stores rate as a DFREQ count under the active scaling.
func (v *FrequencyValue) SetDfDt(rate float64) error {
	_, s := v.scaling()
	raw, err := toCount(rate*float64(s.DfDtScalingFactor) + s.DfDtOffset)
	if err != nil {
		return fmt.Errorf("df/dt %g Hz/s: %w", rate, err)
	}
	v.RawDfDt = raw
	return nil
}

// Measurements returns the frequency and df/dt values.
// Channels whose key is undefined are skipped.
func (v *FrequencyValue) Measurements(timestamp time.Time) []measurement.Measurement {
	var out []measurement.Measurement
	if !v.FrequencyKey.IsUndefined() {
		out = append(out, measurement.Measurement{Key: v.FrequencyKey, Value: v.Frequency(), Timestamp: timestamp})
	}
	if !v.DfDtKey.IsUndefined() {
		out = append(out, measurement.Measurement{Key: v.DfDtKey, Value: v.DfDt(), Timestamp: timestamp})
	}
	return out
}

func toCount(f float64) (int16, error) {
	r := math.Round(f)
	if math.IsNaN(r) || r < math.MinInt16 || r > math.MaxInt16 {
		return 0, ErrValueOutOfRange
	}
	return int16(r), nil
}

// Compile-time interface satisfaction checks.
var (
	_ Cell     = (*FrequencyValue)(nil)
	_ Measurer = (*FrequencyValue)(nil)
)
