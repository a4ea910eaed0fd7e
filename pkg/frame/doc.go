// Package frame implements synchrophasor-style protocol frames and the
// cells they own.
//
// A Frame is the root protocol element. It carries the IEEE C37.118 common
// header (SYNC, FRAMESIZE, IDCODE, SOC, FRACSEC), a body made of an ordered
// list of cells, and a CRC-CCITT trailer. Cell order is the device
// definition order on the wire and is always preserved.
//
// Cells hold a weak, non-owning link to their Frame. A Frame keeps its cells
// alive; a cell never keeps its Frame alive. Some cells read or write
// frame-level state while they are decoded: FrequencyDefinition sets the
// frame's nominal frequency and FrequencyValue reads it. Frames therefore
// decode their cells strictly in wire order.
//
// # Building frames
//
//	f := frame.NewFrame(frame.TypeConfig2, 7)
//	f.SetNominalFrequency(frame.Nominal50Hz)
//	f.AddCell(frame.NewFrequencyDefinition(f))
//	data, err := f.Encode()
//
// # Parsing frames
//
// DecodeFrame parses one frame from a buffer, constructing cells in
// lock-step from a Layout. Parser accepts arbitrary chunks of a byte stream
// (it is an io.Writer), finds frame boundaries and hands complete frames to
// a callback in stream order.
package frame
