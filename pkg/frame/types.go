package frame

// FrameType is the frame type carried in bits 6-4 of the SYNC word.
type FrameType uint8

const (
	// TypeData is a data frame.
	TypeData FrameType = 0

	// TypeHeader is a human-readable header frame.
	TypeHeader FrameType = 1

	// TypeConfig1 is a configuration frame describing device capability.
	TypeConfig1 FrameType = 2

	// TypeConfig2 is a configuration frame describing the active setup.
	TypeConfig2 FrameType = 3

	// TypeCommand is a command frame.
	TypeCommand FrameType = 4

	// TypeConfig3 is an extended configuration frame.
	TypeConfig3 FrameType = 5
)

// String returns the frame type name.
func (t FrameType) String() string {
	switch t {
	case TypeData:
		return "DATA"
	case TypeHeader:
		return "HEADER"
	case TypeConfig1:
		return "CONFIG1"
	case TypeConfig2:
		return "CONFIG2"
	case TypeCommand:
		return "COMMAND"
	case TypeConfig3:
		return "CONFIG3"
	default:
		return "UNKNOWN"
	}
}

// NominalFrequency is the nominal line frequency of a device.
type NominalFrequency uint8

const (
	// Nominal60Hz is the default nominal frequency.
	Nominal60Hz NominalFrequency = iota

	// Nominal50Hz is the 50 Hz variant.
	Nominal50Hz
)

// Hz returns the frequency in hertz.
func (n NominalFrequency) Hz() float64 {
	if n == Nominal50Hz {
		return 50
	}
	return 60
}

// String returns the frequency name.
func (n NominalFrequency) String() string {
	switch n {
	case Nominal60Hz:
		return "60Hz"
	case Nominal50Hz:
		return "50Hz"
	default:
		return "UNKNOWN"
	}
}
