package frame

import (
	"errors"
	"runtime"
	"testing"

	"github.com/gridstream/synchro-go/pkg/codec"
)

func TestFrequencyDefinitionRoundTrip(t *testing.T) {
	tests := []struct {
		nominal NominalFrequency
		want    []byte
	}{
		{Nominal50Hz, []byte{0x00, 0x01}},
		{Nominal60Hz, []byte{0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.nominal.String(), func(t *testing.T) {
			src := NewFrame(TypeConfig2, 1)
			src.SetNominalFrequency(tt.nominal)
			def := NewFrequencyDefinition(src)

			data, err := codec.Encode(def)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			runtime.KeepAlive(src)
			if string(data) != string(tt.want) {
				t.Fatalf("Encode() = % X, want % X", data, tt.want)
			}

			// Start from the opposite state so the decode must change it.
			dst := NewFrame(TypeConfig2, 1)
			if tt.nominal == Nominal60Hz {
				dst.SetNominalFrequency(Nominal50Hz)
			}
			if _, err := ParseFrequencyDefinition(dst, data, 0); err != nil {
				t.Fatalf("ParseFrequencyDefinition() error = %v", err)
			}
			if dst.NominalFrequency() != tt.nominal {
				t.Errorf("NominalFrequency() = %v, want %v", dst.NominalFrequency(), tt.nominal)
			}
		})
	}
}

func TestFrequencyDefinitionIgnoresReservedBits(t *testing.T) {
	f := NewFrame(TypeConfig2, 1)
	if _, err := ParseFrequencyDefinition(f, []byte{0xFF, 0xFE}, 0); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.NominalFrequency() != Nominal60Hz {
		t.Errorf("reserved bits must not select 50Hz")
	}
}

func TestFrequencyDefinitionShortBuffer(t *testing.T) {
	f := NewFrame(TypeConfig2, 1)
	_, err := ParseFrequencyDefinition(f, []byte{0x00, 0x01, 0x02}, 2)
	if !errors.Is(err, codec.ErrShortBuffer) || !errors.Is(err, codec.ErrParse) {
		t.Fatalf("error = %v, want short buffer parse error", err)
	}
}

func TestFrequencyDefinitionWithoutParent(t *testing.T) {
	var def FrequencyDefinition
	_, err := codec.Decode(&def, []byte{0x00, 0x01}, 0)
	if !errors.Is(err, ErrNoParent) {
		t.Fatalf("error = %v, want ErrNoParent", err)
	}
	data, err := codec.Encode(&def)
	if err != nil || data[1] != 0 {
		t.Errorf("unattached definition should encode 60Hz, got % X (%v)", data, err)
	}
}

func TestFrequencyDefinitionConstructors(t *testing.T) {
	parent := NewFrame(TypeConfig2, 9)

	t.Run("Zero", func(t *testing.T) {
		var d FrequencyDefinition
		if d.Parent() != nil || d.ScalingFactor != 0 {
			t.Errorf("zero value should be unpopulated: %+v", d)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		d := NewFrequencyDefinition(parent)
		if d.Parent() != parent {
			t.Error("Parent() mismatch")
		}
		if d.ScalingFactor != 1000 || d.DfDtScalingFactor != 100 {
			t.Errorf("scaling = %d/%d, want 1000/100", d.ScalingFactor, d.DfDtScalingFactor)
		}
		if d.BodyLength() != 2 {
			t.Errorf("BodyLength() = %d, want 2", d.BodyLength())
		}
	})

	t.Run("Params", func(t *testing.T) {
		d := NewFrequencyDefinitionWithParams(parent, 3, "STATION A", 500, 1.5, 50, -2)
		want := Scaling{Label: "STATION A", ScalingFactor: 500, Offset: 1.5, DfDtScalingFactor: 50, DfDtOffset: -2}
		if d.Index() != 3 || d.Scaling() != want {
			t.Errorf("got index %d scaling %+v", d.Index(), d.Scaling())
		}
	})

	t.Run("CrossProtocolCopy", func(t *testing.T) {
		other := &foreignDefinition{scaling: Scaling{Label: "BPA", ScalingFactor: 10, DfDtScalingFactor: 20}}
		other.index = 4
		d := NewFrequencyDefinitionFrom(parent, other)
		if d.Index() != 4 || d.Scaling() != other.scaling {
			t.Errorf("copied index %d scaling %+v", d.Index(), d.Scaling())
		}
		if d.Parent() != parent {
			t.Error("copy must attach to the new parent")
		}
	})
}

// foreignDefinition stands in for a frequency definition of another
// protocol with a different wire form.
type foreignDefinition struct {
	cellBase
	scaling Scaling
}

func (d *foreignDefinition) Name() string                            { return "foreign" }
func (d *foreignDefinition) BodyLength() int                         { return 1 }
func (d *foreignDefinition) BodyImage() []byte                       { return []byte{0} }
func (d *foreignDefinition) ParseBodyImage([]byte, int) (int, error) { return 1, nil }
func (d *foreignDefinition) Scaling() Scaling                        { return d.scaling }
