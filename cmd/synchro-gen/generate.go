package main

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gridstream/synchro-go/pkg/frame"
	"github.com/gridstream/synchro-go/pkg/measurement"
)

// Options controls the generated signal.
type Options struct {
	Count     int
	Rate      int
	IDCode    uint
	Nominal   float64
	Amplitude float64
	Jitter    float64
	Seed      uint64
	Station   string
	Start     time.Time
}

// DefaultOptions returns one second of 60 Hz frames at 30 frames/s.
func DefaultOptions() Options {
	return Options{
		Count:     30,
		Rate:      30,
		IDCode:    1,
		Nominal:   60,
		Amplitude: 0.05,
		Jitter:    0.002,
		Seed:      1,
		Station:   "pmu",
	}
}

// Channels returns the keys a parser with this station name assigns to the
// generated values.
func (o Options) Channels() (freq, dfdt measurement.Key) {
	return frame.ChannelKeys(o.Station, uint16(o.IDCode), 1)
}

func (o Options) validate() (frame.NominalFrequency, error) {
	if o.Count < 0 {
		return 0, fmt.Errorf("count must not be negative, got %d", o.Count)
	}
	if o.Rate <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %d", o.Rate)
	}
	if o.IDCode > math.MaxUint16 {
		return 0, fmt.Errorf("id code must fit 16 bits, got %d", o.IDCode)
	}
	switch o.Nominal {
	case 50:
		return frame.Nominal50Hz, nil
	case 60:
		return frame.Nominal60Hz, nil
	default:
		return 0, fmt.Errorf("nominal frequency must be 50 or 60, got %g", o.Nominal)
	}
}

// Generate writes o.Count frames to w and returns the number of bytes
// written.
func Generate(w io.Writer, o Options) (int, error) {
	nominal, err := o.validate()
	if err != nil {
		return 0, err
	}
	start := o.Start
	if start.IsZero() {
		start = time.Now().Truncate(time.Second)
	}

	rng := rand.New(rand.NewPCG(o.Seed, uint64(o.IDCode)))
	period := time.Second / time.Duration(o.Rate)
	dt := period.Seconds()

	total := 0
	prev := o.Nominal
	for i := 0; i < o.Count; i++ {
		hz := o.Nominal + o.Amplitude*math.Sin(2*math.Pi*float64(i)*dt/10)
		if o.Jitter > 0 {
			hz += (rng.Float64()*2 - 1) * o.Jitter
		}
		rate := 0.0
		if i > 0 {
			rate = (hz - prev) / dt
		}
		prev = hz

		data, err := encodeFrame(uint16(o.IDCode), nominal, start.Add(time.Duration(i)*period), hz, rate)
		if err != nil {
			return total, fmt.Errorf("frame %d: %w", i, err)
		}
		n, err := w.Write(data)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func encodeFrame(idCode uint16, nominal frame.NominalFrequency, ts time.Time, hz, rate float64) ([]byte, error) {
	f := frame.NewFrame(frame.TypeData, idCode)
	f.SetNominalFrequency(nominal)
	f.SetTimestamp(ts)
	f.AddCell(frame.NewFrequencyDefinition(f))

	v := frame.NewFrequencyValue(f, 1)
	f.AddCell(v)
	if err := v.SetFrequency(hz); err != nil {
		return nil, err
	}
	if err := v.SetDfDt(rate); err != nil {
		return nil, err
	}
	return f.Encode()
}
