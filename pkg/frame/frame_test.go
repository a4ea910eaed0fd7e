package frame

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstream/synchro-go/pkg/codec"
	"github.com/gridstream/synchro-go/pkg/measurement"
)

func newStationFrame(t *testing.T, nominal NominalFrequency, hz, rate float64) *Frame {
	t.Helper()
	f := NewFrame(TypeData, 7)
	f.SetNominalFrequency(nominal)
	f.SetTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 250_000_000, time.UTC))
	f.AddCell(NewFrequencyDefinition(f))
	v := NewFrequencyValue(f, 1)
	f.AddCell(v)
	require.NoError(t, v.SetFrequency(hz))
	require.NoError(t, v.SetDfDt(rate))
	return f
}

func TestFrameEncodeLayout(t *testing.T) {
	f := newStationFrame(t, Nominal50Hz, 50.012, -0.25)
	data, err := f.Encode()
	require.NoError(t, err)

	require.Len(t, data, HeaderLength+2+4+2)
	assert.Equal(t, byte(SyncByte), data[0])
	assert.Equal(t, byte(0x01), data[1], "type DATA, version 1")
	assert.Equal(t, []byte{0x00, 22}, data[2:4], "FRAMESIZE")
	assert.Equal(t, []byte{0x00, 0x07}, data[4:6], "IDCODE")
	assert.Equal(t, []byte{0x00, 0x01}, data[14:16], "FNOM 50Hz")
	assert.Equal(t, []byte{0x00, 12}, data[16:18], "FREQ +12 mHz")
	assert.Equal(t, []byte{0xFF, 0xE7}, data[18:20], "DFREQ -25")
	assert.Equal(t, f.Size(), len(data))
}

func TestFrameRoundTrip(t *testing.T) {
	for _, nominal := range []NominalFrequency{Nominal50Hz, Nominal60Hz} {
		t.Run(nominal.String(), func(t *testing.T) {
			hz := nominal.Hz() - 0.021
			src := newStationFrame(t, nominal, hz, 0.5)
			data, err := src.Encode()
			require.NoError(t, err)

			got, n, err := DecodeFrame(data, 0, FrequencyLayout("ppa"))
			require.NoError(t, err)
			assert.Equal(t, len(data), n)
			assert.Equal(t, TypeData, got.Type())
			assert.Equal(t, uint16(7), got.IDCode())
			assert.Equal(t, nominal, got.NominalFrequency())
			assert.Equal(t, src.Timestamp(), got.Timestamp())
			require.Len(t, got.Cells(), 2)

			v, ok := got.Cell(1).(*FrequencyValue)
			require.True(t, ok)
			assert.InDelta(t, hz, v.Frequency(), 1e-9)
			assert.InDelta(t, 0.5, v.DfDt(), 1e-9)
			assert.Same(t, got, v.Parent())
			assert.Same(t, got, got.Cell(0).Parent())
		})
	}
}

func TestFrameDecodeOrderDependency(t *testing.T) {
	// The same FREQ count decodes to different hertz depending on the FNOM
	// cell decoded before it.
	f60 := newStationFrame(t, Nominal60Hz, 60.1, 0)
	data, err := f60.Encode()
	require.NoError(t, err)

	got, _, err := DecodeFrame(data, 0, FrequencyLayout("ppa"))
	require.NoError(t, err)
	assert.InDelta(t, 60.1, got.Cell(1).(*FrequencyValue).Frequency(), 1e-9)

	// Flip FNOM to 50 Hz and fix the CRC.
	data[15] = 0x01
	data = append(data[:len(data)-2], codec.CRCCCITT.Append(nil, data[:len(data)-2])...)
	got, _, err = DecodeFrame(data, 0, FrequencyLayout("ppa"))
	require.NoError(t, err)
	assert.InDelta(t, 50.1, got.Cell(1).(*FrequencyValue).Frequency(), 1e-9)
}

func TestFrameDecodeErrors(t *testing.T) {
	src := newStationFrame(t, Nominal60Hz, 60, 0)
	data, err := src.Encode()
	require.NoError(t, err)

	t.Run("ChecksumMismatch", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[17] ^= 0xFF
		_, _, err := DecodeFrame(bad, 0, FrequencyLayout("ppa"))
		assert.ErrorIs(t, err, codec.ErrChecksumMismatch)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, _, err := DecodeFrame(data[:len(data)-1], 0, FrequencyLayout("ppa"))
		assert.ErrorIs(t, err, codec.ErrShortBuffer)
	})

	t.Run("BadSync", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = 0x55
		_, _, err := DecodeFrame(bad, 0, FrequencyLayout("ppa"))
		assert.ErrorIs(t, err, ErrBadSync)
		assert.ErrorIs(t, err, codec.ErrParse)
	})

	t.Run("BadFrameSize", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[2], bad[3] = 0, 4
		_, _, err := DecodeFrame(bad, 0, FrequencyLayout("ppa"))
		assert.ErrorIs(t, err, ErrBadFrameSize)
	})

	t.Run("LayoutTooShort", func(t *testing.T) {
		_, _, err := DecodeFrame(data, 0, Layout{FrequencyDefinitionFactory})
		assert.ErrorIs(t, err, codec.ErrLengthMismatch)
	})

	t.Run("LayoutTooLong", func(t *testing.T) {
		layout := append(FrequencyLayout("ppa"), FrequencyDefinitionFactory)
		_, _, err := DecodeFrame(data, 0, layout)
		assert.ErrorIs(t, err, codec.ErrShortBuffer)
	})
}

func TestFrameMeasurements(t *testing.T) {
	src := newStationFrame(t, Nominal60Hz, 59.95, 0.1)
	data, err := src.Encode()
	require.NoError(t, err)

	got, _, err := DecodeFrame(data, 0, FrequencyLayout("shelby"))
	require.NoError(t, err)

	ms := got.Measurements()
	require.Len(t, ms, 2)
	freqKey, dfdtKey := ChannelKeys("SHELBY", 7, 1)
	assert.True(t, ms[0].Key.Equal(freqKey))
	assert.True(t, ms[1].Key.Equal(dfdtKey))
	assert.InDelta(t, 59.95, ms[0].Value, 1e-9)
	assert.InDelta(t, 0.1, ms[1].Value, 1e-9)
	assert.Equal(t, got.Timestamp(), ms[0].Timestamp)
}

func TestChannelKeysHighIDCode(t *testing.T) {
	freq, dfdt := ChannelKeys("SHELBY", 0x8001, 1)
	assert.Equal(t, int32(-0x7FFEFFFE), freq.ID(), "0x80010002 as int32")
	assert.Equal(t, int32(-0x7FFEFFFD), dfdt.ID())

	parsed, err := measurement.ParseKey(freq.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(freq))

	seen := make(map[int32][2]int)
	for _, idCode := range []uint16{0, 1, 0x7FFF, 0x8000, 0x8001, 0xFFFF} {
		for _, index := range []int{0, 1, 2, 0x7FFF} {
			f, d := ChannelKeys("SHELBY", idCode, index)
			for _, id := range []int32{f.ID(), d.ID()} {
				prev, dup := seen[id]
				require.False(t, dup, "id %d from (%#x, %d) collides with (%#x, %d)", id, idCode, index, prev[0], prev[1])
				seen[id] = [2]int{int(idCode), index}
			}
		}
	}
}

func TestFrameTimestamp(t *testing.T) {
	f := NewFrame(TypeData, 1)
	f.fracSec = 0x0F000000
	ts := time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)
	f.SetTimestamp(ts)
	assert.Equal(t, ts, f.Timestamp())
	assert.Equal(t, uint8(0x0F), f.TimeQuality(), "quality flags preserved")

	f.SetTimeBase(1000)
	f.SetTimestamp(ts)
	assert.Equal(t, ts.Truncate(time.Millisecond), f.Timestamp())
}

func TestFrequencyValueOutOfRange(t *testing.T) {
	f := NewFrame(TypeData, 1)
	v := NewFrequencyValue(f, 0)
	f.AddCell(v)
	err := v.SetFrequency(100)
	assert.True(t, errors.Is(err, ErrValueOutOfRange))
	assert.ErrorIs(t, v.SetDfDt(math.NaN()), ErrValueOutOfRange)
}

func TestCellParentIsWeak(t *testing.T) {
	d := NewFrequencyDefinition(nil)
	assert.Nil(t, d.Parent())

	f := NewFrame(TypeConfig2, 1)
	f.AddCell(d)
	assert.Same(t, f, d.Parent())
}
