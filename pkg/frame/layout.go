package frame

import "github.com/gridstream/synchro-go/pkg/measurement"

// FrequencyDefinitionFactory creates default frequency definitions.
func FrequencyDefinitionFactory(parent *Frame, index int) Cell {
	d := NewFrequencyDefinition(parent)
	d.index = index
	return d
}

// FrequencyValueFactory returns a factory that creates value cells whose
// keys are derived from source with ChannelKeys.
func FrequencyValueFactory(source string) CellFactory {
	return func(parent *Frame, index int) Cell {
		v := NewFrequencyValue(parent, index)
		v.FrequencyKey, v.DfDtKey = ChannelKeys(source, parent.IDCode(), index)
		return v
	}
}

// FrequencyLayout is a definition followed by a value cell: the minimal
// self-describing station frame.
func FrequencyLayout(source string) Layout {
	return Layout{FrequencyDefinitionFactory, FrequencyValueFactory(source)}
}

// ChannelKeys derives the frequency and df/dt keys of the value cell at
// index in the stream idCode. The id packs idCode in the upper 16 bits and
// 2*index (+1 for df/dt) in the lower bits, read as a two's complement
// int32: idCodes from 0x8000 up give negative ids. Every (idCode, index)
// pair with index below 0x8000 maps to a distinct id.
func ChannelKeys(source string, idCode uint16, index int) (freq, dfdt measurement.Key) {
	base := int32(uint32(idCode)<<16 | uint32(index&0x7FFF)<<1)
	return measurement.NewKey(source, base), measurement.NewKey(source, base|1)
}
