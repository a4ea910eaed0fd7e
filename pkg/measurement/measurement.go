package measurement

import (
	"strconv"
	"time"
)

// Measurement is one decoded scalar value bound to its channel.
type Measurement struct {
	Key       Key
	Value     float64
	Timestamp time.Time
}

// String returns a compact human-readable form.
func (m Measurement) String() string {
	return m.Key.String() + "=" + strconv.FormatFloat(m.Value, 'g', -1, 64) + " @" + m.Timestamp.UTC().Format(time.RFC3339Nano)
}
